package scope

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skillforge/pkg/logger"
	"github.com/jingkaihe/skillforge/pkg/presenter"
)

// maxFixRounds bounds the number of re-prompt passes over invalid fields
// before the builder gives up and returns the partial card with an error.
const maxFixRounds = 3

// Builder collects scope cards interactively or synthesizes them from the
// request string.
type Builder struct {
	pres presenter.Presenter
}

// NewBuilder creates a Builder that prompts through the given presenter.
func NewBuilder(pres presenter.Presenter) *Builder {
	return &Builder{pres: pres}
}

// Build produces a validated scope card for the request. In interactive
// mode the user is walked through the questionnaire and offending fields
// are re-prompted on validation failure; in non-interactive mode the card
// is fabricated from the request with placeholder list items.
//
// The returned card is always non-nil so already-entered answers survive a
// validation error.
func (b *Builder) Build(ctx context.Context, request string, interactive bool) (*Card, error) {
	logger.G(ctx).WithField("request", request).Info("building scope card")

	if interactive {
		return b.buildInteractive(ctx, request)
	}
	return b.buildFromRequest(request), nil
}

func (b *Builder) buildInteractive(ctx context.Context, request string) (*Card, error) {
	b.pres.Separator()
	b.pres.Section("Scope Card (Step 1)")
	b.pres.Info("Let's define the scope of your skill.")

	card := &Card{CreatedAt: time.Now()}

	b.pres.Info(fmt.Sprintf("Initial request: %s", request))
	if goal := b.pres.Prompt("1. One-sentence goal (Enter to use the request as-is)"); goal != "" {
		card.Goal = goal
	} else {
		card.Goal = request
	}

	b.pres.Info("When would a user ask for this skill? e.g. 'make a skill for X', 'turn X into a reusable method'")
	card.TriggerWords = splitList(b.pres.Prompt("2. Trigger phrases, 5+, comma-separated"))

	b.pres.Info("What scenarios or features MUST this skill handle?")
	card.MustCover = splitList(b.pres.Prompt("3. Must cover, 3+, comma-separated"))

	b.pres.Info("What should this skill explicitly NOT do?")
	card.MustNotCover = splitList(b.pres.Prompt("4. Must not cover, 3+, comma-separated"))

	if form := b.pres.Prompt("5. Output format", "template", "script", "decision_tree", "troubleshooting_table", "mixed"); form != "" {
		card.OutputForm = form
	} else {
		card.OutputForm = "template"
	}

	b.pres.Info("How will you know this skill worked?")
	card.SuccessCriteria = splitList(b.pres.Prompt("6. Success criteria, comma-separated"))

	fieldErrs := card.Validate()
	for round := 0; len(fieldErrs) > 0 && round < maxFixRounds; round++ {
		b.pres.Warning("Validation issues found, let's fix them:")
		for _, fe := range fieldErrs {
			b.fixField(card, fe)
		}
		fieldErrs = card.Validate()
	}

	if len(fieldErrs) > 0 {
		logger.G(ctx).WithField("remaining_errors", len(fieldErrs)).Warn("scope card still invalid after fix rounds")
		return card, errors.Errorf("scope card still invalid after %d fix rounds: %v", maxFixRounds, fieldErrs)
	}

	b.printSummary(card)
	return card, nil
}

// fixField re-prompts a single offending field, routed by field code.
func (b *Builder) fixField(card *Card, fe FieldError) {
	b.pres.Info(fmt.Sprintf("Issue: %s", fe.Message))

	switch fe.Field {
	case FieldGoal:
		card.Goal = b.pres.Prompt("Enter a clear, concise goal")
	case FieldTriggerWords:
		card.TriggerWords = splitList(b.pres.Prompt("Enter 5+ trigger phrases, comma-separated"))
	case FieldMustCover:
		card.MustCover = splitList(b.pres.Prompt("Enter 3+ must-cover items, comma-separated"))
	case FieldMustNotCover:
		card.MustNotCover = splitList(b.pres.Prompt("Enter 3+ must-not-cover items, comma-separated"))
	case FieldOutputForm:
		card.OutputForm = b.pres.Prompt("Choose an output format", "template", "script", "decision_tree")
	case FieldSuccessCriteria:
		card.SuccessCriteria = splitList(b.pres.Prompt("Enter measurable success criteria, comma-separated"))
	}
}

// buildFromRequest fabricates a card directly from the request string with
// placeholder list items. Used in non-interactive mode.
func (b *Builder) buildFromRequest(request string) *Card {
	return &Card{
		Goal: request,
		TriggerWords: []string{
			request,
			fmt.Sprintf("make a skill for %s", request),
			fmt.Sprintf("create a %s", request),
			fmt.Sprintf("turn %s into a skill", request),
			fmt.Sprintf("automate %s", request),
		},
		MustCover:       []string{"default scenario 1", "default scenario 2", "default scenario 3"},
		MustNotCover:    []string{"out of scope 1", "out of scope 2", "out of scope 3"},
		OutputForm:      "template",
		SuccessCriteria: []string{"achieves stated goal"},
		CreatedAt:       time.Now(),
	}
}

func (b *Builder) printSummary(card *Card) {
	b.pres.Separator()
	b.pres.Section("Scope Card Summary")
	b.pres.Info(fmt.Sprintf("Goal: %s", card.Goal))

	b.pres.Info(fmt.Sprintf("Trigger phrases (%d):", len(card.TriggerWords)))
	for _, trigger := range card.TriggerWords {
		b.pres.Info(fmt.Sprintf("  • %s", trigger))
	}

	b.pres.Info(fmt.Sprintf("Must cover (%d):", len(card.MustCover)))
	for _, item := range card.MustCover {
		b.pres.Info(fmt.Sprintf("  ✓ %s", item))
	}

	b.pres.Info(fmt.Sprintf("Must NOT cover (%d):", len(card.MustNotCover)))
	for _, item := range card.MustNotCover {
		b.pres.Info(fmt.Sprintf("  ✗ %s", item))
	}

	b.pres.Info(fmt.Sprintf("Output format: %s", card.OutputForm))

	b.pres.Info("Success criteria:")
	for _, criterion := range card.SuccessCriteria {
		b.pres.Info(fmt.Sprintf("  • %s", criterion))
	}
	b.pres.Separator()
}
