package canon

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillforge/pkg/scope"
)

// fakeSource is a scriptable KnowledgeSource for tests.
type fakeSource struct {
	sessionID  string
	sessionErr error
	answers    map[string]string
	queryErr   error
	queries    []string
}

func (f *fakeSource) CreateSession(_ context.Context, _ string) (string, error) {
	return f.sessionID, f.sessionErr
}

func (f *fakeSource) Query(_ context.Context, _, question string) (string, error) {
	f.queries = append(f.queries, question)
	if f.queryErr != nil {
		return "", f.queryErr
	}
	return f.answers[question], nil
}

func testCard() *scope.Card {
	return &scope.Card{
		Goal:            "Automate Python linting for PRs",
		TriggerWords:    []string{"a", "b", "c", "d", "e"},
		MustCover:       []string{"ruff config", "CI wiring", "autofix"},
		MustNotCover:    []string{"type checking", "formatting", "security scanning"},
		OutputForm:      "template",
		SuccessCriteria: []string{"lint passes"},
		CreatedAt:       time.Now(),
	}
}

func TestCollectNilSourceGoesOffline(t *testing.T) {
	c := NewCollector(nil).Collect(context.Background(), testCard())
	assert.True(t, c.Offline())
	assert.Empty(t, c.NotebookID)
	assert.Contains(t, c.Quickstart, "Automate Python linting for PRs")
}

func TestCollectSessionFailureGoesOffline(t *testing.T) {
	t.Run("error from create session", func(t *testing.T) {
		src := &fakeSource{sessionErr: errors.New("connection refused")}
		c := NewCollector(src).Collect(context.Background(), testCard())
		assert.True(t, c.Offline())
		assert.Empty(t, src.queries, "no queries after session failure")
	})

	t.Run("blank session id", func(t *testing.T) {
		src := &fakeSource{sessionID: "   "}
		c := NewCollector(src).Collect(context.Background(), testCard())
		assert.True(t, c.Offline())
	})
}

func TestCollectOnline(t *testing.T) {
	src := &fakeSource{
		sessionID: "notebook-42",
		answers: map[string]string{
			"Provide a 3-step quickstart for this skill":                 "Install ruff\nAdd config\nRun on PR\nExtra ignored line",
			"What are the key decision points when using this skill?":    "Monorepo?\nExisting config?\nAutofix allowed?",
			"Provide 2-3 practical templates or command examples":        "ruff check .\nruff check --fix .",
			"What are the most common failure modes and how to fix them?": "Timeout: split the run\nBad config - validate the toml",
			"What are important edge cases to consider?":                 "Generated code\nVendored deps",
		},
	}

	c := NewCollector(src).Collect(context.Background(), testCard())

	require.False(t, c.Offline())
	assert.Equal(t, "notebook-42", c.NotebookID)
	assert.Len(t, src.queries, 5)

	assert.Equal(t, "Install ruff\nAdd config\nRun on PR", c.Quickstart)
	assert.Equal(t, []string{"Monorepo?", "Existing config?", "Autofix allowed?"}, c.DecisionPoints)

	require.Len(t, c.Templates, 2)
	assert.Equal(t, Template{Name: "Template 1", Content: "ruff check ."}, c.Templates[0])

	require.Len(t, c.FailureModes, 2)
	assert.Equal(t, FailureMode{Symptom: "Timeout", Fix: "split the run"}, c.FailureModes[0])
	assert.Equal(t, FailureMode{Symptom: "Bad config", Fix: "validate the toml"}, c.FailureModes[1])

	assert.Equal(t, []string{"Generated code", "Vendored deps"}, c.EdgeCases)

	require.Len(t, c.Sources, 2)
	assert.Equal(t, "Skill Goal", c.Sources[0].Title)
}

func TestCollectQueryFailuresUseFallbacks(t *testing.T) {
	src := &fakeSource{sessionID: "notebook-42", queryErr: errors.New("timeout")}

	c := NewCollector(src).Collect(context.Background(), testCard())

	require.False(t, c.Offline())
	assert.Equal(t, "Step 1\nStep 2\nStep 3", c.Quickstart)
	assert.Equal(t, []string{"Decision 1", "Decision 2"}, c.DecisionPoints)
	assert.Equal(t, []Template{{Name: "Default", Content: "[Template]"}}, c.Templates)
	assert.Equal(t, []FailureMode{{Symptom: "Error", Fix: "Fix"}}, c.FailureModes)
	assert.Equal(t, []string{"Edge case 1", "Edge case 2"}, c.EdgeCases)
}

func TestScopeDocument(t *testing.T) {
	doc := scopeDocument(testCard())
	assert.Contains(t, doc, "# Skill Scope Card")
	assert.Contains(t, doc, "## Goal\nAutomate Python linting for PRs")
	assert.Contains(t, doc, "- ruff config")
	assert.Contains(t, doc, "- type checking")
	assert.Contains(t, doc, "- lint passes")
}

func TestParseFailureModes(t *testing.T) {
	t.Run("colon separator", func(t *testing.T) {
		modes := parseFailureModes("OOM: lower batch size")
		require.Len(t, modes, 1)
		assert.Equal(t, FailureMode{Symptom: "OOM", Fix: "lower batch size"}, modes[0])
	})

	t.Run("dash separator", func(t *testing.T) {
		modes := parseFailureModes("flaky test - retry once")
		require.Len(t, modes, 1)
		assert.Equal(t, FailureMode{Symptom: "flaky test", Fix: "retry once"}, modes[0])
	})

	t.Run("no separator", func(t *testing.T) {
		modes := parseFailureModes("something broke")
		require.Len(t, modes, 1)
		assert.Equal(t, "something broke", modes[0].Symptom)
		assert.Equal(t, "See documentation", modes[0].Fix)
	})

	t.Run("blank answer falls back", func(t *testing.T) {
		modes := parseFailureModes("\n\n")
		assert.Equal(t, []FailureMode{{Symptom: "Error", Fix: "Fix"}}, modes)
	})
}

func TestExtractContract(t *testing.T) {
	c := GenerateOffline(testCard())
	contract := ExtractContract(c)

	assert.Equal(t, c.Quickstart, contract.Quickstart)
	assert.Equal(t, c.DecisionPoints, contract.DecisionPoints)
	assert.Equal(t, c.Templates, contract.Templates)
	assert.Equal(t, c.FailureModes, contract.FailureModes)
	assert.Equal(t, c.EdgeCases, contract.EdgeCases)
}
