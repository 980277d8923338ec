package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <SKILL.md>",
	Short: "Run the quality gates against an existing SKILL.md",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := os.ReadFile(args[0])
		if err != nil {
			presenter.Error(err, "Failed to read skill file")
			os.Exit(1)
		}

		report := validator.Validate(string(content), nil, nil)
		printReport(report)

		if !report.Passed {
			os.Exit(1)
		}
	},
}

func printReport(report *validator.Report) {
	presenter.Section("Quality Gates Validation Report")

	if report.Passed {
		presenter.Success("ALL GATES PASSED")
	} else {
		presenter.Warning("SOME GATES FAILED")
	}

	for _, gate := range report.Gates {
		status := "✓"
		if !gate.Passed {
			status = "✗"
		}
		requirement := "[Optional]"
		if gate.Required {
			requirement = "[REQUIRED]"
		}
		presenter.Info(fmt.Sprintf("%s %s %s", status, gate.Name, requirement))
		presenter.Info(fmt.Sprintf("   %s", gate.Message))
	}

	if len(report.Errors) > 0 {
		presenter.Section("Errors (must fix)")
		for _, msg := range report.Errors {
			presenter.Warning(fmt.Sprintf("✗ %s", msg))
		}
	}

	if len(report.Warnings) > 0 {
		presenter.Section("Warnings (should fix)")
		for _, msg := range report.Warnings {
			presenter.Warning(fmt.Sprintf("⚠ %s", msg))
		}
	}

	if len(report.Recommendations) > 0 {
		presenter.Section("Recommendations")
		for _, rec := range report.Recommendations {
			presenter.Info(fmt.Sprintf("→ %s", rec))
		}
	}
}
