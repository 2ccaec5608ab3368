package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"risk-predictor/internal/dataset"
)

func NewSplitCommand() *cobra.Command {
	var input, out string
	var seed int64

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a labelled CSV into train, validation and test sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dataset.ReadCSVFile(input)
			if err != nil {
				return err
			}
			splits, err := dataset.Split(d, seed)
			if err != nil {
				return err
			}
			if err := dataset.WriteSplits(out, splits); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "train: %d rows\nvalidation: %d rows\ntest: %d rows\n",
				splits.Train.Len(), splits.Validation.Len(), splits.Test.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "american_bankruptcy.csv", "Labelled dataset")
	cmd.Flags().StringVar(&out, "out", ".", "Directory for train.csv, validation.csv and test.csv")
	cmd.Flags().Int64Var(&seed, "seed", dataset.DefaultSeed, "Shuffle seed")

	return cmd
}
