package overlay

import (
	"context"
	"fmt"
	"strings"

	"github.com/jingkaihe/skillforge/pkg/logger"
	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/scope"
)

const maxFailureHistory = 3

// Interviewer collects the local overlay through a short questionnaire.
type Interviewer struct {
	pres presenter.Presenter
}

// NewInterviewer creates an Interviewer that prompts through the given
// presenter.
func NewInterviewer(pres presenter.Presenter) *Interviewer {
	return &Interviewer{pres: pres}
}

// Interview collects the overlay. Non-interactive mode returns the
// default overlay; interactive mode asks the questionnaire, and leaving
// every question blank yields the same default.
func (iv *Interviewer) Interview(ctx context.Context, card *scope.Card, interactive bool) *Overlay {
	if !interactive {
		logger.G(ctx).Info("using default overlay (non-interactive mode)")
		return Default()
	}
	return iv.interviewInteractive(ctx, card)
}

func (iv *Interviewer) interviewInteractive(ctx context.Context, card *scope.Card) *Overlay {
	logger.G(ctx).WithField("goal", card.Goal).Info("starting user interview")

	iv.pres.Separator()
	iv.pres.Section("User Interview (Step 5)")
	iv.pres.Info("We need to understand your local constraints and preferences.")
	iv.pres.Info("These questions should take ~5 minutes.")

	o := Default()

	iv.pres.Info("What must NOT happen? e.g. 'Cannot use cloud services', 'Must be GDPR compliant'")
	o.ComplianceConstraints = iv.pres.Prompt("1. Organizational compliance requirements or red lines (Enter to skip)")

	iv.pres.Info("e.g. 'PostgreSQL, Python'")
	o.RequiredTools = splitTools(iv.pres.Prompt("2a. Tools you MUST use, comma-separated (Enter to skip)"))

	iv.pres.Info("e.g. 'AWS, JavaScript'")
	o.ForbiddenTools = splitTools(iv.pres.Prompt("2b. Tools that are FORBIDDEN, comma-separated (Enter to skip)"))

	iv.pres.Info("e.g. 'Must be JSON with keys: id, name, value'")
	if format := iv.pres.Prompt("3. Fixed output format or naming requirements (Enter to skip)"); format != "" {
		o.OutputFormat = &OutputFormat{
			Description: format,
			Example:     "[Will be provided by external canon]",
		}
	}

	iv.pres.Info("speed (fast, may be imperfect), accuracy (thorough), explainability (clear reasoning), consistency (uniform results)")
	o.Priority = parsePriority(iv.pres.Prompt("4. Top priority", "speed", "accuracy", "explainability", "consistency"))

	iv.pres.Info("e.g. 'Timeouts with large files', 'Encoding issues with special characters'")
	o.FailureHistory = parseFailures(iv.pres.Prompt("5. Up to 3 common failure points in your context, comma-separated (Enter to skip)"))

	iv.printSummary(o)
	return o
}

// splitTools splits a comma-separated tool list, dropping blanks.
func splitTools(answer string) []string {
	tools := []string{}
	for _, part := range strings.Split(answer, ",") {
		if tool := strings.TrimSpace(part); tool != "" {
			tools = append(tools, tool)
		}
	}
	return tools
}

// parsePriority lower-cases the answer and validates it against the known
// priorities, defaulting to balanced.
func parsePriority(answer string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(answer)))
	if p == "" || !ValidPriority(p) {
		return PriorityBalanced
	}
	return p
}

// parseFailures splits the answer on commas and keeps at most three items.
func parseFailures(answer string) []string {
	failures := splitTools(answer)
	if len(failures) > maxFailureHistory {
		failures = failures[:maxFailureHistory]
	}
	return failures
}

func (iv *Interviewer) printSummary(o *Overlay) {
	iv.pres.Separator()
	iv.pres.Section("Interview Summary")

	if o.ComplianceConstraints != "" {
		iv.pres.Info(fmt.Sprintf("Compliance: %s", o.ComplianceConstraints))
	}
	if len(o.RequiredTools) > 0 {
		iv.pres.Info(fmt.Sprintf("Required tools: %s", strings.Join(o.RequiredTools, ", ")))
	}
	if len(o.ForbiddenTools) > 0 {
		iv.pres.Info(fmt.Sprintf("Forbidden tools: %s", strings.Join(o.ForbiddenTools, ", ")))
	}
	if o.OutputFormat != nil {
		iv.pres.Info(fmt.Sprintf("Output format: %s", o.OutputFormat.Description))
	}
	iv.pres.Info(fmt.Sprintf("Priority: %s", o.Priority))
	if len(o.FailureHistory) > 0 {
		iv.pres.Info("Common failures:")
		for _, failure := range o.FailureHistory {
			iv.pres.Info(fmt.Sprintf("  • %s", failure))
		}
	}
	iv.pres.Separator()
}
