package canon

import (
	"fmt"
	"strings"
	"time"

	"github.com/jingkaihe/skillforge/pkg/scope"
)

// GenerateOffline synthesizes a canon deterministically from the scope
// card. Given the same card, repeated calls yield identical content
// except for the timestamp.
func GenerateOffline(card *scope.Card) *Canon {
	return &Canon{
		Sources: []Source{
			{Title: "Best Practices", URL: "N/A", Relevance: "primary"},
			{Title: "Common Patterns", URL: "N/A", Relevance: "secondary"},
		},
		Quickstart:     offlineQuickstart(card.Goal, card.MustCover),
		DecisionPoints: offlineDecisionPoints(card.MustCover),
		Templates:      offlineTemplates(card.MustCover),
		FailureModes:   offlineFailureModes(),
		EdgeCases:      offlineEdgeCases(card.MustNotCover),
		CreatedAt:      time.Now(),
	}
}

func offlineQuickstart(goal string, mustCover []string) string {
	target := "your use case"
	if len(mustCover) > 0 {
		target = strings.Join(head(mustCover, 2), ", ")
	}
	return strings.Join([]string{
		fmt.Sprintf("1. Understand %s", goal),
		fmt.Sprintf("2. Apply to: %s", target),
		"3. Validate results",
	}, "\n")
}

func offlineDecisionPoints(mustCover []string) []string {
	points := make([]string, 0, 5)
	for _, item := range head(mustCover, 5) {
		points = append(points, fmt.Sprintf("Is %s applicable to your case?", item))
	}
	return points
}

func offlineTemplates(mustCover []string) []Template {
	templates := make([]Template, 0, 3)
	for _, item := range head(mustCover, 3) {
		templates = append(templates, Template{
			Name:    fmt.Sprintf("Template for %s", item),
			Content: fmt.Sprintf("[Example implementation for %s]", item),
		})
	}
	return templates
}

// offlineFailureModes returns the five fixed failure modes every offline
// canon carries.
func offlineFailureModes() []FailureMode {
	return []FailureMode{
		{Symptom: "Expected behavior not achieved", Fix: "Verify prerequisites and inputs"},
		{Symptom: "Output format unexpected", Fix: "Check output specification"},
		{Symptom: "Process fails silently", Fix: "Enable verbose logging for debugging"},
		{Symptom: "Performance issues", Fix: "Optimize configuration or split large inputs"},
		{Symptom: "Integration errors", Fix: "Verify compatibility with dependent systems"},
	}
}

func offlineEdgeCases(mustNotCover []string) []string {
	cases := make([]string, 0, 6)
	if len(mustNotCover) > 0 {
		cases = append(cases, fmt.Sprintf("Handling %s (explicitly excluded)", mustNotCover[0]))
	}
	cases = append(cases,
		"Empty or malformed inputs",
		"Boundary conditions and limits",
	)
	for _, item := range head(mustNotCover, 2) {
		cases = append(cases, fmt.Sprintf("When %s is required", item))
	}
	return cases
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
