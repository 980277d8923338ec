package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/runs"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect generation run history",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenRunStore(cmd)
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		recorded, err := store.List(cmd.Context(), limit)
		if err != nil {
			presenter.Error(err, "Failed to list runs")
			os.Exit(1)
		}

		if len(recorded) == 0 {
			presenter.Info("No runs recorded")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tSKILL\tCREATED\tREQUEST")
		for _, run := range recorded {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				run.ID,
				run.Status,
				run.SkillName,
				run.CreatedAt.Format("2006-01-02 15:04:05"),
				truncate(run.Request, 50))
		}
		w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenRunStore(cmd)
		defer store.Close()

		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			presenter.Error(err, "Failed to load run")
			os.Exit(1)
		}

		out, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode run")
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := mustOpenRunStore(cmd)
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			presenter.Error(err, "Failed to delete run")
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Run %s deleted", args[0]))
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsRmCmd)
}

func mustOpenRunStore(cmd *cobra.Command) *runs.Store {
	store := openRunStore(cmd.Context())
	if store == nil {
		presenter.Error(errors.New("run history store unavailable"), "Failed to open run store")
		os.Exit(1)
	}
	return store
}
