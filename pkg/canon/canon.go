// Package canon collects the external canon: best-practice knowledge
// pulled from a notebook-style knowledge service and merged into the
// compiled skill. The knowledge service is an opaque collaborator behind
// the KnowledgeSource interface; every failure path degrades to
// deterministic offline generation, so collection itself never fails.
package canon

import (
	"context"
	"time"
)

// Source describes where a piece of canon knowledge came from.
type Source struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Relevance string `json:"relevance"`
}

// Template is a reusable example carried in the canon.
type Template struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FailureMode pairs a symptom with its fix.
type FailureMode struct {
	Symptom string `json:"symptom"`
	Fix     string `json:"fix"`
}

// Canon is the step 3 output: externally sourced knowledge, either from
// the notebook service or generated offline. Immutable after collection.
type Canon struct {
	NotebookID     string        `json:"notebook_id,omitempty"`
	Sources        []Source      `json:"sources"`
	Quickstart     string        `json:"quickstart"`
	DecisionPoints []string      `json:"decision_points"`
	Templates      []Template    `json:"templates"`
	FailureModes   []FailureMode `json:"failure_modes"`
	EdgeCases      []string      `json:"edge_cases"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Offline reports whether this canon was generated without the knowledge
// service.
func (c *Canon) Offline() bool {
	return c.NotebookID == ""
}

// KnowledgeSource is the request/response contract with the external
// knowledge collaborator. Implementations may use any transport; errors
// are recovered by the collector, never surfaced to the pipeline.
type KnowledgeSource interface {
	// CreateSession uploads a document and returns a session identifier.
	CreateSession(ctx context.Context, document string) (string, error)
	// Query asks a question within an existing session.
	Query(ctx context.Context, sessionID, question string) (string, error)
}

// Contract is the step 4 output: the executable subset of the canon.
type Contract struct {
	Quickstart     string        `json:"quickstart"`
	DecisionPoints []string      `json:"decision_points"`
	Templates      []Template    `json:"templates"`
	FailureModes   []FailureMode `json:"failure_modes"`
	EdgeCases      []string      `json:"edge_cases"`
}

// ExtractContract reshapes a canon into its contract. Pure field copy, no
// failure modes.
func ExtractContract(c *Canon) Contract {
	return Contract{
		Quickstart:     c.Quickstart,
		DecisionPoints: c.DecisionPoints,
		Templates:      c.Templates,
		FailureModes:   c.FailureModes,
		EdgeCases:      c.EdgeCases,
	}
}
