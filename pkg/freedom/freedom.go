// Package freedom classifies a scope card into a freedom tier: a coarse
// low/medium/high measure of how much structural variation the generated
// skill document should allow, with per-tier guidance and suggested
// reference docs.
package freedom

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/skillforge/pkg/scope"
)

// Level is a freedom tier.
type Level string

const (
	// Low means a simple, well-defined scope served by fixed steps.
	Low Level = "low"
	// Medium means moderate complexity served by parametric guidance.
	Medium Level = "medium"
	// High means complex, context-dependent scope needing the full framework.
	High Level = "high"
)

// Tier thresholds over the combined must-cover/must-not-cover item count.
const (
	lowItemThreshold    = 6
	mediumItemThreshold = 12
	lowTriggerThreshold = 5
)

// Resources describes what supporting material a tier calls for.
type Resources struct {
	Guidance      string   `json:"skill_md_guidance"`
	ScriptCount   int      `json:"script_count"`
	ReferenceDocs []string `json:"reference_docs"`
}

// Decision is the step 2 output: the tier plus the rationale behind it.
type Decision struct {
	Level     Level     `json:"freedom_level"`
	Rationale string    `json:"rationale"`
	Resources Resources `json:"suggested_resources"`
}

// Classify is a pure function of the card's item counts. The tier is
// monotonic in total item count with thresholds at 6 and 12.
func Classify(card *scope.Card) Decision {
	total := len(card.MustCover) + len(card.MustNotCover)

	var level Level
	var rationale string
	switch {
	case total <= lowItemThreshold && len(card.TriggerWords) <= lowTriggerThreshold:
		level = Low
		rationale = "Simple, well-defined scope: use scripts with fixed steps"
	case total <= mediumItemThreshold:
		level = Medium
		rationale = "Moderate complexity: use parametric scripts plus references"
	default:
		level = High
		rationale = "Complex, context-dependent: use the full SKILL.md framework plus examples"
	}

	return Decision{
		Level:     level,
		Rationale: rationale,
		Resources: Resources{
			Guidance:      guidance(level),
			ScriptCount:   scriptCount(level),
			ReferenceDocs: referenceDocs(card),
		},
	}
}

func guidance(level Level) string {
	switch level {
	case Low:
		return "Minimal: just Quickstart + Guardrails + Failure modes"
	case Medium:
		return "Standard: Quickstart + Workflow + Guardrails + Templates + Failure modes"
	default:
		return "Comprehensive: all sections plus decision trees and extensive examples"
	}
}

func scriptCount(level Level) int {
	if level == Low {
		return 1
	}
	return 0
}

// referenceDocs determines which reference docs the compiled skill should
// point at. failure_modes.md is always suggested.
func referenceDocs(card *scope.Card) []string {
	var docs []string
	if strings.Contains(strings.ToLower(card.OutputForm), "template") {
		docs = append(docs, "templates.md")
	}
	if len(card.MustNotCover) > 0 {
		docs = append(docs, "edge_cases.md")
	}
	return append(docs, "failure_modes.md")
}

// String implements fmt.Stringer.
func (d Decision) String() string {
	return fmt.Sprintf("%s (%s)", d.Level, d.Rationale)
}
