package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/versebench/versebench/internal/config"
)

func NewRootCmd() *cobra.Command {
	var verbose bool
	closeLog := func() error { return nil }

	cmd := &cobra.Command{
		Use:   "versebench",
		Short: "Scripture recitation benchmark for LLMs",
		Long: `Versebench measures how faithfully language models recite scripture.

It prompts a model for whole chapters, normalizes and parses the output into
verses, and scores each verse against a canonical corpus by hash and by
character-level fidelity. Results can be exported, reported on the command
line or browsed through a small JSON API.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg := config.Load()
			level := cfg.LogLevel
			if verbose {
				level = slog.LevelDebug
			}
			var logger *slog.Logger
			logger, closeLog = config.SetupLogger(cfg.LogFile, level)
			slog.SetDefault(logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := closeLog(); err != nil {
				slog.Error("Unable to close log file", "err", err)
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
