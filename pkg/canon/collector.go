package canon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jingkaihe/skillforge/pkg/logger"
	"github.com/jingkaihe/skillforge/pkg/scope"
)

// question is one structured query against the knowledge source, with a
// category-specific parser for the free-text answer.
type question struct {
	text     string
	category string
	parse    func(c *Canon, answer string)
}

// questions is the fixed canon question set, asked in order.
var questions = []question{
	{
		text:     "Provide a 3-step quickstart for this skill",
		category: "quickstart",
		parse: func(c *Canon, answer string) {
			c.Quickstart = strings.Join(firstLines(answer, 3), "\n")
		},
	},
	{
		text:     "What are the key decision points when using this skill?",
		category: "decision_points",
		parse: func(c *Canon, answer string) {
			c.DecisionPoints = firstLines(answer, 5)
		},
	},
	{
		text:     "Provide 2-3 practical templates or command examples",
		category: "templates",
		parse: func(c *Canon, answer string) {
			for i, line := range firstLines(answer, 3) {
				c.Templates = append(c.Templates, Template{
					Name:    fmt.Sprintf("Template %d", i+1),
					Content: line,
				})
			}
		},
	},
	{
		text:     "What are the most common failure modes and how to fix them?",
		category: "failure_modes",
		parse: func(c *Canon, answer string) {
			c.FailureModes = parseFailureModes(answer)
		},
	},
	{
		text:     "What are important edge cases to consider?",
		category: "edge_cases",
		parse: func(c *Canon, answer string) {
			c.EdgeCases = firstLines(answer, 5)
		},
	},
}

// Collector gathers external canon for a scope card. A nil source means
// offline-only operation.
type Collector struct {
	source KnowledgeSource
}

// NewCollector creates a Collector backed by the given knowledge source.
// Pass nil to force offline generation.
func NewCollector(source KnowledgeSource) *Collector {
	return &Collector{source: source}
}

// Collect gathers the canon for the scope card. Collection never fails:
// session or query errors fall back to offline generation or per-category
// defaults.
func (c *Collector) Collect(ctx context.Context, card *scope.Card) *Canon {
	log := logger.G(ctx)

	if c.source == nil {
		log.Info("no knowledge source configured, generating canon offline")
		return GenerateOffline(card)
	}

	sessionID, err := c.source.CreateSession(ctx, scopeDocument(card))
	if err != nil || strings.TrimSpace(sessionID) == "" {
		log.WithError(err).Warn("could not create knowledge session, falling back to offline canon")
		return GenerateOffline(card)
	}

	log.WithField("session_id", sessionID).Info("collecting canon from knowledge source")

	canon := &Canon{
		NotebookID: sessionID,
		Sources: []Source{
			{Title: "Skill Goal", URL: "internal", Relevance: "primary"},
			{Title: "Coverage Requirements", URL: "internal", Relevance: "primary"},
		},
		CreatedAt: time.Now(),
	}

	for _, q := range questions {
		answer, err := c.source.Query(ctx, sessionID, q.text)
		if err != nil || strings.TrimSpace(answer) == "" {
			log.WithError(err).WithField("category", q.category).Warn("no answer from knowledge source, using fallback")
			applyFallback(canon, q.category)
			continue
		}
		q.parse(canon, answer)
	}

	return canon
}

// scopeDocument renders the scope card as the document uploaded when
// creating a knowledge session.
func scopeDocument(card *scope.Card) string {
	var b strings.Builder
	b.WriteString("# Skill Scope Card\n\n")
	b.WriteString("## Goal\n")
	b.WriteString(card.Goal + "\n\n")

	b.WriteString("## Must Cover\n")
	for _, item := range card.MustCover {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n## Must Not Cover\n")
	for _, item := range card.MustNotCover {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n## Success Criteria\n")
	for _, item := range card.SuccessCriteria {
		b.WriteString("- " + item + "\n")
	}
	return b.String()
}

// applyFallback fills a category with its static default when the
// knowledge source gave no usable answer.
func applyFallback(c *Canon, category string) {
	switch category {
	case "quickstart":
		c.Quickstart = "Step 1\nStep 2\nStep 3"
	case "decision_points":
		c.DecisionPoints = []string{"Decision 1", "Decision 2"}
	case "templates":
		c.Templates = []Template{{Name: "Default", Content: "[Template]"}}
	case "failure_modes":
		c.FailureModes = []FailureMode{{Symptom: "Error", Fix: "Fix"}}
	case "edge_cases":
		c.EdgeCases = []string{"Edge case 1", "Edge case 2"}
	}
}

// firstLines returns up to n trimmed, non-empty lines of the answer.
func firstLines(answer string, n int) []string {
	lines := make([]string, 0, n)
	for _, line := range strings.Split(answer, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == n {
			break
		}
	}
	return lines
}

// parseFailureModes splits answer lines into symptom/fix pairs on the
// first ":" or " - " separator. Lines without a separator become a
// symptom with a generic fix.
func parseFailureModes(answer string) []FailureMode {
	var modes []FailureMode
	for _, line := range firstLines(answer, 5) {
		symptom, fix := line, "See documentation"
		if idx := strings.Index(line, ":"); idx > 0 {
			symptom, fix = line[:idx], line[idx+1:]
		} else if idx := strings.Index(line, " - "); idx > 0 {
			symptom, fix = line[:idx], line[idx+3:]
		}
		modes = append(modes, FailureMode{
			Symptom: strings.TrimSpace(symptom),
			Fix:     strings.TrimSpace(fix),
		})
	}
	if len(modes) == 0 {
		return []FailureMode{{Symptom: "Error", Fix: "Fix"}}
	}
	return modes
}
