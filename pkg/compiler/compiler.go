// Package compiler merges the scope card, external canon, and local
// overlay into a rendered SKILL.md document. Conflicts resolve by the
// fixed priority order: compliance constraints, then user preference,
// then external canon.
package compiler

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skillforge/pkg/canon"
	"github.com/jingkaihe/skillforge/pkg/overlay"
	"github.com/jingkaihe/skillforge/pkg/scope"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// targetMaxLines is the soft cap on the rendered document; exceeding it
// records a warning but still returns the document.
const targetMaxLines = 500

// maxDescriptionLength bounds the frontmatter description.
const maxDescriptionLength = 200

// sectionOrder fixes the order section templates are rendered in.
var sectionOrder = []string{
	"templates/overview.tmpl",
	"templates/when_to_use.tmpl",
	"templates/quickstart.tmpl",
	"templates/workflow.tmpl",
	"templates/guardrails.tmpl",
	"templates/examples.tmpl",
	"templates/failure_modes.tmpl",
	"templates/edge_cases.tmpl",
	"templates/references.tmpl",
}

var sectionTemplates = template.Must(template.New("sections").Funcs(template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

var blankLines = regexp.MustCompile(`\n{3,}`)

// stopWords are dropped when deriving the skill name from the goal.
var stopWords = map[string]bool{
	"a": true, "the": true, "for": true,
	"skill": true, "create": true, "make": true, "build": true,
}

// Metadata is the YAML frontmatter of a compiled skill.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Conflict records a disagreement between canon content and overlay
// constraints, with the resolution applied.
type Conflict struct {
	Area        string `json:"area"`
	CanonSays   string `json:"canon_says"`
	OverlaySays string `json:"overlay_says"`
	Resolution  string `json:"resolution"`
}

// Result is the output of a compilation.
type Result struct {
	SkillMD   string     `json:"-"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// Compile renders the SKILL.md document from the three inputs. Rendering
// the same inputs twice yields identical section content and ordering.
func Compile(card *scope.Card, cn *canon.Canon, ov *overlay.Overlay) (*Result, error) {
	frontmatter, err := renderFrontmatter(card, ov)
	if err != nil {
		return nil, err
	}

	parts := []string{frontmatter}
	for _, name := range sectionOrder {
		section, err := renderSection(name, card, cn, ov)
		if err != nil {
			return nil, err
		}
		parts = append(parts, section)
	}

	doc := blankLines.ReplaceAllString(strings.Join(parts, "\n"), "\n\n")

	result := &Result{
		SkillMD:   doc,
		Conflicts: detectConflicts(cn, ov),
	}

	if lines := strings.Count(doc, "\n") + 1; lines > targetMaxLines {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("SKILL.md is %d lines (target: <%d). Consider moving content to references/", lines, targetMaxLines))
	}

	return result, nil
}

// SkillName derives a filesystem-safe skill name from the goal: lower
// case, stop words removed, first three alphanumeric tokens joined with
// hyphens.
func SkillName(goal string) string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(goal)) {
		if stopWords[word] || !isAlnum(word) {
			continue
		}
		tokens = append(tokens, word)
		if len(tokens) == 3 {
			break
		}
	}
	if len(tokens) == 0 {
		return "unnamed-skill"
	}
	return strings.Join(tokens, "-")
}

func isAlnum(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return word != ""
}

// shortDescription builds the frontmatter description from the goal, the
// first three triggers, and the first two required tools.
func shortDescription(card *scope.Card, ov *overlay.Overlay) string {
	desc := fmt.Sprintf("%s. Triggers: %s.", card.Goal, strings.Join(head(card.TriggerWords, 3), ", "))
	if len(ov.RequiredTools) > 0 {
		desc += fmt.Sprintf(" Uses: %s.", strings.Join(head(ov.RequiredTools, 2), ", "))
	}
	if runes := []rune(desc); len(runes) > maxDescriptionLength {
		desc = string(runes[:maxDescriptionLength])
	}
	return desc
}

func renderFrontmatter(card *scope.Card, ov *overlay.Overlay) (string, error) {
	meta, err := yaml.Marshal(Metadata{
		Name:        SkillName(card.Goal),
		Description: shortDescription(card, ov),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal frontmatter")
	}
	return "---\n" + string(meta) + "---\n", nil
}

func renderSection(name string, card *scope.Card, cn *canon.Canon, ov *overlay.Overlay) (string, error) {
	var b strings.Builder
	if err := sectionTemplates.ExecuteTemplate(&b, path.Base(name), sectionData(name, card, cn, ov)); err != nil {
		return "", errors.Wrapf(err, "failed to render section %s", name)
	}
	return b.String(), nil
}

// sectionData builds the view model for one section template.
func sectionData(name string, card *scope.Card, cn *canon.Canon, ov *overlay.Overlay) any {
	switch name {
	case "templates/overview.tmpl":
		return struct {
			Goal      string
			MustCover []string
			Triggers  []string
			MustNot   []string
		}{card.Goal, head(card.MustCover, 3), head(card.TriggerWords, 3), head(card.MustNotCover, 2)}

	case "templates/when_to_use.tmpl":
		return struct {
			RequiredTools  []string
			ForbiddenTools []string
			PriorityLine   string
		}{ov.RequiredTools, ov.ForbiddenTools, priorityLine(ov.Priority)}

	case "templates/quickstart.tmpl":
		return struct{ Steps []string }{quickstartSteps(cn.Quickstart)}

	case "templates/workflow.tmpl":
		return struct {
			DecisionPoints []string
			OutputFormat   *overlay.OutputFormat
		}{head(cn.DecisionPoints, 5), ov.OutputFormat}

	case "templates/guardrails.tmpl":
		return struct {
			MustCover  []string
			MustNot    []string
			Compliance string
		}{head(card.MustCover, 3), head(card.MustNotCover, 3), ov.ComplianceConstraints}

	case "templates/examples.tmpl":
		templates := cn.Templates
		if len(templates) > 5 {
			templates = templates[:5]
		}
		return struct{ Templates []canon.Template }{templates}

	case "templates/failure_modes.tmpl":
		modes := cn.FailureModes
		if len(modes) > 5 {
			modes = modes[:5]
		}
		return struct {
			Modes         []canon.FailureMode
			LocalFailures []string
		}{modes, head(ov.FailureHistory, 3)}

	case "templates/edge_cases.tmpl":
		return struct {
			Cases      []string
			OutOfScope []string
		}{edgeCases(cn.EdgeCases), head(card.MustNotCover, 3)}

	default:
		return nil
	}
}

func priorityLine(p overlay.Priority) string {
	switch p {
	case overlay.PrioritySpeed:
		return "Speed is most important - get fast results even if imperfect"
	case overlay.PriorityAccuracy:
		return "Accuracy is critical - must be verified and precise"
	case overlay.PriorityExplainability:
		return "Explainability matters - must be transparent and clear"
	case overlay.PriorityConsistency:
		return "Consistency is key - must produce uniform results"
	default:
		return "Balanced"
	}
}

// stepNumber strips an existing "1." or "2)" prefix so steps are not
// numbered twice when the canon already numbered them.
var stepNumber = regexp.MustCompile(`^\d+[.)]\s*`)

func quickstartSteps(quickstart string) []string {
	var steps []string
	for _, line := range strings.Split(quickstart, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			steps = append(steps, stepNumber.ReplaceAllString(trimmed, ""))
		}
		if len(steps) == 3 {
			break
		}
	}
	if len(steps) == 0 {
		return []string{"Step 1: Start", "Step 2: Configure", "Step 3: Execute"}
	}
	return steps
}

func edgeCases(cases []string) []string {
	if len(cases) == 0 {
		return []string{"Empty input", "Boundary conditions", "Unusual combinations"}
	}
	return head(cases, 5)
}

// detectConflicts reports forbidden tools that appear in canon template
// content. User preference overrides canon, so the conflicting templates
// still render but the conflict surfaces in the result metadata.
func detectConflicts(cn *canon.Canon, ov *overlay.Overlay) []Conflict {
	var conflicts []Conflict
	for _, tool := range ov.ForbiddenTools {
		needle := strings.ToLower(tool)
		for _, tmpl := range cn.Templates {
			if strings.Contains(strings.ToLower(tmpl.Content), needle) {
				conflicts = append(conflicts, Conflict{
					Area:        "templates",
					CanonSays:   fmt.Sprintf("template %q uses %s", tmpl.Name, tool),
					OverlaySays: fmt.Sprintf("%s is forbidden", tool),
					Resolution:  "user preference overrides canon",
				})
			}
		}
	}
	return conflicts
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
