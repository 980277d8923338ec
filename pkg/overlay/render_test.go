package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUserOverridesDefault(t *testing.T) {
	content, err := RenderUserOverrides(Default())
	require.NoError(t, err)

	assert.Contains(t, content, "# User Overrides and Local Constraints")
	assert.Contains(t, content, "None specified")
	assert.Contains(t, content, "- No specific requirements")
	assert.Contains(t, content, "- No restrictions")
	assert.Contains(t, content, "Not specified")
	assert.Contains(t, content, "Balanced")
	assert.Contains(t, content, "- None documented yet")
	assert.Contains(t, content, "these local constraints take precedence")
}

func TestRenderUserOverridesPopulated(t *testing.T) {
	o := Default()
	o.ComplianceConstraints = "Cannot use cloud services"
	o.RequiredTools = []string{"PostgreSQL", "Python"}
	o.ForbiddenTools = []string{"AWS"}
	o.OutputFormat = &OutputFormat{Description: "JSON output", Example: "{}"}
	o.Priority = PriorityAccuracy
	o.FailureHistory = []string{"Timeouts with large files"}

	content, err := RenderUserOverrides(o)
	require.NoError(t, err)

	assert.Contains(t, content, "Cannot use cloud services")
	assert.Contains(t, content, "- PostgreSQL")
	assert.Contains(t, content, "- Python")
	assert.Contains(t, content, "- AWS")
	assert.Contains(t, content, "JSON output")
	assert.Contains(t, content, "Accuracy")
	assert.Contains(t, content, "- Timeouts with large files")
	assert.NotContains(t, content, "None specified")
}

func TestSaveUserOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_overrides.md")
	require.NoError(t, SaveUserOverrides(Default(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# User Overrides")
}
