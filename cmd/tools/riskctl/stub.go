package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"risk-predictor/internal/artifact"
)

func NewStubModelCommand() *cobra.Command {
	var out string
	var features int

	cmd := &cobra.Command{
		Use:   "stub-model",
		Short: "Write a constant placeholder classifier that always predicts healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := artifact.StubClassifierDocument(features)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote placeholder classifier to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "model.json", "Output path")
	cmd.Flags().IntVar(&features, "features", 18, "Number of input features")

	return cmd
}
