package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillforge/pkg/output"
	"github.com/jingkaihe/skillforge/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List previously generated skills",
	Run: func(cmd *cobra.Command, args []string) {
		artifacts, err := output.Discover(outputDir(cmd))
		if err != nil {
			presenter.Error(err, "Failed to scan output directory")
			os.Exit(1)
		}

		if len(artifacts) == 0 {
			presenter.Info("No generated skills found")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tGENERATED\tDIR\tDESCRIPTION")
		for _, a := range artifacts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				a.Name,
				a.GeneratedAt.Format("2006-01-02 15:04:05"),
				a.Dir,
				truncate(a.Description, 60))
		}
		w.Flush()
	},
}

func init() {
	addOutputDirFlag(listCmd.Flags(), "Directory to scan for generated artifacts")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
