package overlay

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/scope"
)

func scriptedInterviewer(answers ...string) *Interviewer {
	var out bytes.Buffer
	input := strings.NewReader(strings.Join(answers, "\n") + "\n")
	pres := presenter.NewWithOptions(&out, &out, input, presenter.ColorNever)
	return NewInterviewer(pres)
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

func TestInterviewNonInteractive(t *testing.T) {
	o := scriptedInterviewer().Interview(context.Background(), testCard(), false)

	assert.True(t, o.IsDefault())
	assert.Empty(t, o.ComplianceConstraints)
	assert.Empty(t, o.RequiredTools)
	assert.Empty(t, o.ForbiddenTools)
	assert.Nil(t, o.OutputFormat)
	assert.Equal(t, PriorityBalanced, o.Priority)
	assert.Empty(t, o.FailureHistory)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestInterviewAllBlankEqualsDefault(t *testing.T) {
	iv := scriptedInterviewer("", "", "", "", "", "")

	o := iv.Interview(context.Background(), testCard(), true)

	assert.True(t, o.IsDefault())
	assert.Equal(t, PriorityBalanced, o.Priority)
}

func TestInterviewInteractive(t *testing.T) {
	iv := scriptedInterviewer(
		"Cannot use cloud services",
		"PostgreSQL, Python",
		"AWS, JavaScript",
		"Must be JSON with keys: id, name, value",
		"Accuracy",
		"Timeouts with large files, Encoding issues, Memory leaks, One too many",
	)

	o := iv.Interview(context.Background(), testCard(), true)

	assert.Equal(t, "Cannot use cloud services", o.ComplianceConstraints)
	assert.Equal(t, []string{"PostgreSQL", "Python"}, o.RequiredTools)
	assert.Equal(t, []string{"AWS", "JavaScript"}, o.ForbiddenTools)
	require.NotNil(t, o.OutputFormat)
	assert.Equal(t, "Must be JSON with keys: id, name, value", o.OutputFormat.Description)
	assert.Equal(t, PriorityAccuracy, o.Priority)
	assert.Equal(t, []string{"Timeouts with large files", "Encoding issues", "Memory leaks"}, o.FailureHistory)
	assert.False(t, o.IsDefault())
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		answer string
		want   Priority
	}{
		{"speed", PrioritySpeed},
		{"  Accuracy ", PriorityAccuracy},
		{"EXPLAINABILITY", PriorityExplainability},
		{"consistency", PriorityConsistency},
		{"", PriorityBalanced},
		{"fast please", PriorityBalanced},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePriority(tt.answer), "answer %q", tt.answer)
	}
}

func TestSplitTools(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTools(" a , b ,, "))
	assert.Empty(t, splitTools(""))
}
