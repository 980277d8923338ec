// Package overlay collects user and organizational constraints that are
// layered on top of the external canon during compilation.
package overlay

import "time"

// Priority is the user's stated optimization preference.
type Priority string

const (
	PrioritySpeed          Priority = "speed"
	PriorityAccuracy       Priority = "accuracy"
	PriorityExplainability Priority = "explainability"
	PriorityConsistency    Priority = "consistency"
	PriorityBalanced       Priority = "balanced"
)

// ValidPriority reports whether p is one of the known priority values.
func ValidPriority(p Priority) bool {
	switch p {
	case PrioritySpeed, PriorityAccuracy, PriorityExplainability, PriorityConsistency, PriorityBalanced:
		return true
	}
	return false
}

// OutputFormat is a user-specified output format requirement.
type OutputFormat struct {
	Description string `json:"description" yaml:"description"`
	Example     string `json:"example" yaml:"example"`
}

// Overlay holds the local constraints collected from the user interview.
// It overrides canon content when the two conflict.
type Overlay struct {
	ComplianceConstraints string        `json:"compliance_constraints,omitempty" yaml:"compliance_constraints,omitempty"`
	RequiredTools         []string      `json:"required_tools" yaml:"required_tools"`
	ForbiddenTools        []string      `json:"forbidden_tools" yaml:"forbidden_tools"`
	OutputFormat          *OutputFormat `json:"output_format,omitempty" yaml:"output_format,omitempty"`
	Priority              Priority      `json:"priority" yaml:"priority"`
	FailureHistory        []string      `json:"failure_history" yaml:"failure_history"`
	CreatedAt             time.Time     `json:"created_at" yaml:"created_at"`
}

// Default returns the overlay used when no interview answers are given:
// no constraints, no tool requirements, balanced priority.
func Default() *Overlay {
	return &Overlay{
		RequiredTools:  []string{},
		ForbiddenTools: []string{},
		Priority:       PriorityBalanced,
		FailureHistory: []string{},
		CreatedAt:      time.Now(),
	}
}

// IsDefault reports whether the overlay carries no user-supplied content.
func (o *Overlay) IsDefault() bool {
	return o.ComplianceConstraints == "" &&
		len(o.RequiredTools) == 0 &&
		len(o.ForbiddenTools) == 0 &&
		o.OutputFormat == nil &&
		o.Priority == PriorityBalanced &&
		len(o.FailureHistory) == 0
}
