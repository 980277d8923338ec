package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillforge/pkg/logger"
)

func init() {
	viper.SetEnvPrefix("SKILLFORGE")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillforge")
	viper.AddConfigPath(".")

	viper.SetDefault("output_dir", "skillforge_output")
	viper.SetDefault("notebook.timeout", "30s")
	viper.SetDefault("notebook.retry_attempts", 3)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Generate SKILL.md documents from a scoped request",
	Long: `SkillForge turns a one-line skill request into a validated SKILL.md
through a six-step pipeline: scope card, degrees of freedom, external
canon, contract extraction, user overlay, and compilation, followed by
seven quality gates.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		}
		logger.SetLogFormat(viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// addOutputDirFlag registers the shared --output-dir flag.
func addOutputDirFlag(fs *pflag.FlagSet, usage string) {
	fs.String("output-dir", "", usage)
}

// outputDir resolves the artifact directory: an explicitly set
// --output-dir flag wins over config and environment.
func outputDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("output-dir") {
		dir, _ := cmd.Flags().GetString("output-dir")
		return dir
	}
	return viper.GetString("output_dir")
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
