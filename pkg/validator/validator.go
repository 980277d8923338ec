// Package validator runs the quality gates over a compiled SKILL.md
// document. Five gates are mandatory, two are recommended; mandatory
// failures fail the run while recommended failures only warn.
package validator

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/jingkaihe/skillforge/pkg/canon"
	"github.com/jingkaihe/skillforge/pkg/scope"
)

const (
	minDescriptionLength = 50
	maxQuickstartLines   = 5
	minFailureModes      = 5
	minEdgeCases         = 3
	targetLines          = 500
	hardMaxLines         = 600
)

// GateResult is the outcome of one quality gate.
type GateResult struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Passed         bool   `json:"passed"`
	Required       bool   `json:"required"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Report aggregates the results of all quality gates.
type Report struct {
	Passed          bool         `json:"passed"`
	Gates           []GateResult `json:"gates"`
	Errors          []string     `json:"errors"`
	Warnings        []string     `json:"warnings"`
	Recommendations []string     `json:"recommendations"`
}

// Err returns the mandatory gate failures as a single aggregated error,
// or nil when every mandatory gate passed.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, msg := range r.Errors {
		result = multierror.Append(result, errors.New(msg))
	}
	return result.ErrorOrNil()
}

type gate struct {
	name     string
	category string
	required bool
	check    func(doc string, card *scope.Card, cn *canon.Canon) (bool, string, string)
}

var gates = []gate{
	{"Description Clarity", "mandatory", true, checkDescription},
	{"Quickstart (30s)", "mandatory", true, checkQuickstart},
	{"Templates (>=1 complete)", "mandatory", true, checkTemplates},
	{"Failure Modes (>=5)", "mandatory", true, checkFailureModes},
	{"Edge Cases (>=3)", "mandatory", true, checkEdgeCases},
	{"Brittle Tasks Scripted", "recommended", false, checkBrittleness},
	{"File Size (<500 lines)", "recommended", false, checkSize},
}

// Validate runs every quality gate over the document. Gates are
// independent; all of them run regardless of earlier failures.
func Validate(doc string, card *scope.Card, cn *canon.Canon) *Report {
	report := &Report{
		Passed:          true,
		Errors:          []string{},
		Warnings:        []string{},
		Recommendations: []string{},
	}

	for _, g := range gates {
		passed, message, recommendation := g.check(doc, card, cn)

		report.Gates = append(report.Gates, GateResult{
			Name:           g.name,
			Category:       g.category,
			Passed:         passed,
			Required:       g.required,
			Message:        message,
			Recommendation: recommendation,
		})

		if !passed {
			if g.required {
				report.Errors = append(report.Errors, message)
				report.Passed = false
			} else {
				report.Warnings = append(report.Warnings, message)
			}
		}
		if recommendation != "" {
			report.Recommendations = append(report.Recommendations, recommendation)
		}
	}

	return report
}

// checkDescription verifies the frontmatter parses and carries a name
// and a sufficiently long description.
func checkDescription(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert([]byte(doc), &buf, parser.WithContext(pctx)); err != nil {
		return false, fmt.Sprintf("Frontmatter does not parse: %v", err), ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return false, "Missing YAML frontmatter", ""
	}

	var issues []string
	if name, _ := metaData["name"].(string); name == "" {
		issues = append(issues, "No name field in frontmatter")
	}
	description, _ := metaData["description"].(string)
	switch {
	case description == "":
		issues = append(issues, "No description field in frontmatter")
	case len(description) < minDescriptionLength:
		issues = append(issues, fmt.Sprintf("Description too short (< %d chars)", minDescriptionLength))
	}

	if len(issues) > 0 {
		return false, strings.Join(issues, ", "), ""
	}
	return true, "Clear frontmatter with name and description", ""
}

var quickstartSection = regexp.MustCompile(`(?s)## Quick ?[Ss]tart\n+(.*?)(\n## |\z)`)

func checkQuickstart(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	match := quickstartSection.FindStringSubmatch(doc)
	if match == nil {
		return false, "No Quickstart section found", ""
	}

	count := 0
	for _, line := range strings.Split(match[1], "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}

	if count == 0 {
		return false, "Quickstart section empty", ""
	}
	if count > maxQuickstartLines {
		return false, fmt.Sprintf("Quickstart too long (%d items, max 3-4)", count), "Simplify to 3 clear steps"
	}
	return true, "Concise 30-second quickstart", ""
}

// checkTemplates requires a Templates section plus at least one complete
// fenced example, counted as paired fence markers.
func checkTemplates(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	if !strings.Contains(doc, "## Templates") {
		return false, "No Templates section found", ""
	}

	fences := strings.Count(doc, "```")
	if fences/2 < 1 {
		return false, fmt.Sprintf("Found %d fence markers, need ≥2 for a complete example", fences),
			"Add template examples and code samples"
	}
	return true, fmt.Sprintf("%d complete fenced examples found", fences/2), ""
}

var failureMarker = regexp.MustCompile(`\*\*(?:Symptom|Failure|Issue)`)

func checkFailureModes(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	if !strings.Contains(doc, "## Failure") {
		return false, "No Failure Modes section found", ""
	}

	failures := len(failureMarker.FindAllString(doc, -1))
	if failures < minFailureModes {
		return false, fmt.Sprintf("Only %d failure modes found, need ≥%d", failures, minFailureModes),
			"Add more comprehensive failure mode documentation"
	}

	if !strings.Contains(doc, "**Fix") && !strings.Contains(strings.ToLower(doc), "fix:") {
		return false, "Failure modes lack fix/solution descriptions", ""
	}
	return true, fmt.Sprintf("%d failure modes with solutions", failures), ""
}

var (
	edgeCasesSection = regexp.MustCompile(`(?s)## Edge Cases\n+(.*?)(\n## |\z)`)
	bulletLine       = regexp.MustCompile(`(?m)^-\s+`)
)

func checkEdgeCases(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	match := edgeCasesSection.FindStringSubmatch(doc)
	if match == nil {
		return false, "No Edge Cases section found", ""
	}

	count := len(bulletLine.FindAllString(match[1], -1))
	if count < minEdgeCases {
		return false, fmt.Sprintf("Only %d edge cases found, need ≥%d", count, minEdgeCases),
			"Document boundary conditions and unusual scenarios"
	}
	return true, fmt.Sprintf("%d edge cases documented", count), ""
}

func checkBrittleness(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	switch {
	case strings.Contains(doc, "scripts/"):
		return true, "Scripts provided for brittle operations", ""
	case strings.Contains(doc, "## Guardrails"):
		return true, "Guardrails clearly documented", ""
	default:
		return false, "No explicit guardrails or scripts for brittle tasks",
			"Add scripts or strict guardrails for error-prone steps"
	}
}

func checkSize(doc string, _ *scope.Card, _ *canon.Canon) (bool, string, string) {
	lines := strings.Count(doc, "\n") + 1

	switch {
	case lines > hardMaxLines:
		return false, fmt.Sprintf("SKILL.md is %d lines, should be <%d", lines, targetLines),
			"Move detailed content to references/ directory"
	case lines > targetLines:
		return false, fmt.Sprintf("SKILL.md is %d lines, aim for <%d", lines, targetLines),
			"Consider moving some content to references/"
	}
	return true, fmt.Sprintf("Concise at %d lines", lines), ""
}
