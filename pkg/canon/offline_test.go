package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOfflineDeterministic(t *testing.T) {
	card := testCard()

	first := GenerateOffline(card)
	second := GenerateOffline(card)

	assert.Equal(t, first.Quickstart, second.Quickstart)
	assert.Equal(t, first.DecisionPoints, second.DecisionPoints)
	assert.Equal(t, first.Templates, second.Templates)
	assert.Equal(t, first.FailureModes, second.FailureModes)
	assert.Equal(t, first.EdgeCases, second.EdgeCases)
	assert.Equal(t, first.Sources, second.Sources)
}

func TestGenerateOfflineContent(t *testing.T) {
	c := GenerateOffline(testCard())

	t.Run("quickstart references goal and first two cover items", func(t *testing.T) {
		assert.Equal(t, "1. Understand Automate Python linting for PRs\n2. Apply to: ruff config, CI wiring\n3. Validate results", c.Quickstart)
	})

	t.Run("decision points per cover item", func(t *testing.T) {
		assert.Equal(t, []string{
			"Is ruff config applicable to your case?",
			"Is CI wiring applicable to your case?",
			"Is autofix applicable to your case?",
		}, c.DecisionPoints)
	})

	t.Run("templates for up to three cover items", func(t *testing.T) {
		require.Len(t, c.Templates, 3)
		assert.Equal(t, "Template for ruff config", c.Templates[0].Name)
		assert.Equal(t, "[Example implementation for ruff config]", c.Templates[0].Content)
	})

	t.Run("five fixed failure modes", func(t *testing.T) {
		require.Len(t, c.FailureModes, 5)
		assert.Equal(t, "Expected behavior not achieved", c.FailureModes[0].Symptom)
		assert.Equal(t, "Verify compatibility with dependent systems", c.FailureModes[4].Fix)
	})

	t.Run("edge cases derived from must-not-cover", func(t *testing.T) {
		assert.Equal(t, []string{
			"Handling type checking (explicitly excluded)",
			"Empty or malformed inputs",
			"Boundary conditions and limits",
			"When type checking is required",
			"When formatting is required",
		}, c.EdgeCases)
	})

	t.Run("offline sources", func(t *testing.T) {
		require.Len(t, c.Sources, 2)
		assert.Equal(t, Source{Title: "Best Practices", URL: "N/A", Relevance: "primary"}, c.Sources[0])
	})

	t.Run("marked offline", func(t *testing.T) {
		assert.True(t, c.Offline())
	})
}

func TestGenerateOfflineEmptyLists(t *testing.T) {
	card := testCard()
	card.MustCover = nil
	card.MustNotCover = nil

	c := GenerateOffline(card)

	assert.Contains(t, c.Quickstart, "2. Apply to: your use case")
	assert.Empty(t, c.DecisionPoints)
	assert.Empty(t, c.Templates)
	assert.Equal(t, []string{"Empty or malformed inputs", "Boundary conditions and limits"}, c.EdgeCases)
}
