package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"risk-predictor/internal/common/logger"
)

// NewRootCommand builds the offline tooling around the prediction service.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "riskctl",
		Short: "Bankruptcy risk model tooling",
		Long: `riskctl prepares dataset splits, writes placeholder model artifacts,
evaluates a model against a labelled split and publishes artifacts to PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewSplitCommand())
	rootCmd.AddCommand(NewStubModelCommand())
	rootCmd.AddCommand(NewEvaluateCommand())
	rootCmd.AddCommand(NewPublishCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func commandLogger(cmd *cobra.Command) logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewStructured(level, "console", "stderr")
}
