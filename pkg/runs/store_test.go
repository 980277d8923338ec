package runs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewRun(t *testing.T) {
	run := NewRun("lint skill", "success", "automate-python-linting", "/tmp/out")
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "lint skill", run.Request)
	assert.Equal(t, "success", run.Status)
	assert.False(t, run.CreatedAt.IsZero())

	other := NewRun("lint skill", "success", "", "")
	assert.NotEqual(t, run.ID, other.ID)
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := NewRun("lint skill", "success", "automate-python-linting", "/tmp/out")
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "automate-python-linting", got.SkillName)
	assert.Equal(t, "/tmp/out", got.ArtifactDir)
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, status := range []string{"success", "failed_validation", "error"} {
		run := NewRun("request", status, "", "")
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(ctx, run))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "error", all[0].Status)
	assert.Equal(t, "success", all[2].Status)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := NewRun("request", "success", "", "")
	require.NoError(t, store.Save(ctx, run))
	require.NoError(t, store.Delete(ctx, run.ID))

	_, err := store.Get(ctx, run.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, run.ID), ErrNotFound)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewStore(ctx, path)
	require.NoError(t, err)
	run := NewRun("request", "success", "", "")
	require.NoError(t, store.Save(ctx, run))
	require.NoError(t, store.Close())

	reopened, err := NewStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}
