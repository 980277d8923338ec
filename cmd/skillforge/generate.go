package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillforge/pkg/canon"
	"github.com/jingkaihe/skillforge/pkg/canon/notebook"
	"github.com/jingkaihe/skillforge/pkg/engine"
	"github.com/jingkaihe/skillforge/pkg/logger"
	"github.com/jingkaihe/skillforge/pkg/presenter"
	"github.com/jingkaihe/skillforge/pkg/runs"
	"github.com/jingkaihe/skillforge/pkg/scope"
)

var generateCmd = &cobra.Command{
	Use:   "generate <request>",
	Short: "Generate a skill from a request",
	Long: `Runs the full generation pipeline for the given request and prints the
JSON result to stdout. Artifacts are written to the output directory.

In interactive mode (the default) the scope questionnaire and the user
interview prompt on the terminal; --non-interactive fills both from
defaults.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		request := strings.Join(args, " ")

		nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
		scopeFile, _ := cmd.Flags().GetString("scope-file")

		var card *scope.Card
		if scopeFile != "" {
			loaded, err := scope.LoadFile(scopeFile)
			if err != nil {
				presenter.Error(err, "Failed to load scope card")
				os.Exit(1)
			}
			card = loaded
		}

		store := openRunStore(ctx)
		if store != nil {
			defer store.Close()
		}

		e := engine.New(engine.Config{
			Presenter: presenter.Default(),
			Source:    knowledgeSource(ctx),
			Store:     store,
			OutputDir: outputDir(cmd),
		})

		result := e.Generate(ctx, engine.Request{
			Text:        request,
			Interactive: !nonInteractive,
			Card:        card,
		})

		if saveScope, _ := cmd.Flags().GetString("save-scope"); saveScope != "" && result.Steps.ScopeCard != nil {
			if err := result.Steps.ScopeCard.SaveFile(saveScope); err != nil {
				presenter.Warning(fmt.Sprintf("Could not save scope card: %v", err))
			}
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode result")
			os.Exit(1)
		}
		fmt.Println(string(out))

		if result.Status == engine.StatusError {
			os.Exit(1)
		}
	},
}

func init() {
	generateCmd.Flags().Bool("non-interactive", false, "Skip all prompts and use defaults")
	generateCmd.Flags().Bool("offline", false, "Skip the knowledge service and generate canon offline")
	addOutputDirFlag(generateCmd.Flags(), "Directory for generated artifacts")
	generateCmd.Flags().String("notebook-url", "", "Base URL of the notebook knowledge service")
	generateCmd.Flags().String("scope-file", "", "Load a pre-approved scope card from a JSON file")
	generateCmd.Flags().String("save-scope", "", "Write the collected scope card to a JSON file for reuse")

	viper.BindPFlag("offline", generateCmd.Flags().Lookup("offline"))
	viper.BindPFlag("notebook.base_url", generateCmd.Flags().Lookup("notebook-url"))
}

// knowledgeSource builds the notebook client from configuration. Offline
// mode or a missing base URL yields nil, which means offline canon
// generation.
func knowledgeSource(ctx context.Context) canon.KnowledgeSource {
	if viper.GetBool("offline") {
		return nil
	}
	baseURL := viper.GetString("notebook.base_url")
	if baseURL == "" {
		return nil
	}

	client, err := notebook.NewClient(baseURL,
		notebook.WithTimeout(viper.GetDuration("notebook.timeout")),
		notebook.WithAttempts(viper.GetUint("notebook.retry_attempts")),
	)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("invalid notebook configuration, falling back to offline canon")
		return nil
	}
	return client
}

// openRunStore opens the run history store, best effort.
func openRunStore(ctx context.Context) *runs.Store {
	dbPath := viper.GetString("runs.db_path")
	if dbPath == "" {
		var err error
		dbPath, err = runs.DefaultDBPath()
		if err != nil {
			logger.G(ctx).WithError(err).Warn("run history disabled")
			return nil
		}
	}

	store, err := runs.NewStore(ctx, dbPath)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("run history disabled")
		return nil
	}
	return store
}
