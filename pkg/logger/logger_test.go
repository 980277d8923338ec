package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallback(t *testing.T) {
	ctx := context.Background()
	entry := GetLogger(ctx)
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	custom := logrus.NewEntry(logrus.New()).WithField("run_id", "abc123")

	ctx = WithLogger(ctx, custom)
	entry := GetLogger(ctx)

	require.NotNil(t, entry)
	assert.Equal(t, "abc123", entry.Data["run_id"])
}

func TestSetLogLevel(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, SetLogLevel("debug"))
		assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
		require.NoError(t, SetLogLevel("info"))
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, SetLogLevel("not-a-level"))
	})
}

func TestSetLogFormat(t *testing.T) {
	defer SetLogFormat("fmt")

	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	SetLogFormat("json")
	L.Info("hello")

	out := buf.String()
	assert.True(t, strings.Contains(out, `"message":"hello"`), "expected JSON output, got %q", out)
}
