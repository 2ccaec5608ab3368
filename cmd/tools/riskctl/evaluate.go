package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"risk-predictor/internal/artifact"
	"risk-predictor/internal/common/config"
	"risk-predictor/internal/dataset"
	"risk-predictor/internal/evaluation"
	"risk-predictor/internal/prediction"
)

func NewEvaluateCommand() *cobra.Command {
	var modelPath, encoderPath, testPath, target, configPath string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a model against a labelled test split",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := commandLogger(cmd)

			schema := prediction.DefaultSchema()
			if configPath != "" {
				cfg, err := config.LoadFromFile(configPath)
				if err != nil {
					return err
				}
				if schema, err = prediction.NewFeatureSchema(cfg.Features.Names, cfg.Features.Categorical); err != nil {
					return err
				}
			}

			source := &artifact.FileSource{ModelPath: modelPath, EncoderPath: encoderPath}
			set := artifact.NewLoader(source, log).Load(context.Background(), schema.HasCategorical())
			pipeline := set.Pipeline(schema, log)
			if err := pipeline.Available(); err != nil {
				return fmt.Errorf("model not usable: %w", err)
			}

			d, err := dataset.ReadCSVFile(testPath)
			if err != nil {
				return err
			}

			report, err := evaluation.Evaluate(pipeline, d, evaluation.Options{
				Target:      target,
				Drop:        evaluation.DefaultDrop,
				Importances: set.FeatureImportances(),
			}, log)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Classifier artifact")
	cmd.Flags().StringVar(&encoderPath, "encoder", "", "Encoder artifact, when the schema has categorical features")
	cmd.Flags().StringVar(&testPath, "test", "test.csv", "Labelled test split")
	cmd.Flags().StringVar(&target, "target", evaluation.DefaultTarget, "Target column")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file declaring the feature schema")

	return cmd
}
