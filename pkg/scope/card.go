// Package scope builds and validates skill scope cards, the signed-off
// definition of what a generated skill must and must not address. A card
// is collected once per run, either through an interactive questionnaire
// or synthesized directly from the request string, and is immutable after
// validation.
package scope

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// MinGoalLength is the minimum number of characters for a usable goal.
	MinGoalLength = 10
	// MinTriggerWords is the minimum number of trigger phrases.
	MinTriggerWords = 5
	// MinCoverItems is the minimum number of must-cover and must-not-cover items.
	MinCoverItems = 3
	// MaxItemsPerField caps list answers per questionnaire field.
	MaxItemsPerField = 10
)

// Field identifies a scope card field for validation and re-prompt routing.
type Field string

const (
	FieldGoal            Field = "goal"
	FieldTriggerWords    Field = "trigger_words"
	FieldMustCover       Field = "must_cover"
	FieldMustNotCover    Field = "must_not_cover"
	FieldOutputForm      Field = "output_form"
	FieldSuccessCriteria Field = "success_criteria"
)

// FieldError is a validation failure tied to a specific card field.
// Re-prompting routes on Field, never on the message text.
type FieldError struct {
	Field   Field
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Card is the scope definition collected in step 1.
type Card struct {
	Goal            string    `json:"goal" yaml:"goal"`
	TriggerWords    []string  `json:"trigger_words" yaml:"trigger_words"`
	MustCover       []string  `json:"must_cover" yaml:"must_cover"`
	MustNotCover    []string  `json:"must_not_cover" yaml:"must_not_cover"`
	OutputForm      string    `json:"output_form" yaml:"output_form"`
	SuccessCriteria []string  `json:"success_criteria" yaml:"success_criteria"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks card completeness. Rules run in a fixed order and all
// failures are reported, one FieldError per offending field.
func (c *Card) Validate() []FieldError {
	var errs []FieldError

	if len(strings.TrimSpace(c.Goal)) < MinGoalLength {
		errs = append(errs, FieldError{FieldGoal, fmt.Sprintf("goal must be at least %d characters", MinGoalLength)})
	}
	if len(c.TriggerWords) < MinTriggerWords {
		errs = append(errs, FieldError{FieldTriggerWords, fmt.Sprintf("need %d+ trigger phrases, have %d", MinTriggerWords, len(c.TriggerWords))})
	}
	if len(c.MustCover) < MinCoverItems {
		errs = append(errs, FieldError{FieldMustCover, fmt.Sprintf("need %d+ must-cover items, have %d", MinCoverItems, len(c.MustCover))})
	}
	if len(c.MustNotCover) < MinCoverItems {
		errs = append(errs, FieldError{FieldMustNotCover, fmt.Sprintf("need %d+ must-not-cover items, have %d", MinCoverItems, len(c.MustNotCover))})
	}
	if strings.TrimSpace(c.OutputForm) == "" {
		errs = append(errs, FieldError{FieldOutputForm, "output form must be specified"})
	}
	if len(c.SuccessCriteria) < 1 {
		errs = append(errs, FieldError{FieldSuccessCriteria, "need at least 1 success criterion"})
	}

	return errs
}

// Valid reports whether the card passes all validation rules.
func (c *Card) Valid() bool {
	return len(c.Validate()) == 0
}

// SaveFile writes the card as indented JSON.
func (c *Card) SaveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scope card")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scope card")
	}
	return nil
}

// LoadFile reads a card previously written by SaveFile.
func LoadFile(path string) (*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scope card")
	}
	var card Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, errors.Wrap(err, "failed to parse scope card")
	}
	return &card, nil
}

// splitList turns a comma-separated answer into trimmed items, capped at
// MaxItemsPerField.
func splitList(answer string) []string {
	items := make([]string, 0, MaxItemsPerField)
	for _, part := range strings.Split(answer, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
		if len(items) == MaxItemsPerField {
			break
		}
	}
	return items
}
