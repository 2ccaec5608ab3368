package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"risk-predictor/internal/artifact"
	"risk-predictor/internal/common/config"
	"risk-predictor/internal/common/database"
)

func NewPublishCommand() *cobra.Command {
	var kind, file, configPath string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Validate an artifact and store it as the next version in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readArtifact(kind, file)
			if err != nil {
				return err
			}

			cfg, err := config.LoadFromFile(configPath)
			if err != nil {
				return err
			}

			db, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			source := artifact.NewPostgresSource(db, cfg.Model.ModelName, cfg.Model.EncoderName)
			if err := source.EnsureTable(ctx); err != nil {
				return err
			}
			version, err := source.Publish(ctx, kind, doc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %s version %d (%s)\n", kind, version, artifact.Fingerprint(doc))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", artifact.KindClassifier, "Artifact kind: classifier or encoder")
	cmd.Flags().StringVar(&file, "file", "model.json", "Artifact document")
	cmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "Config file with database settings")

	return cmd
}

// readArtifact loads file and refuses documents the server would reject.
func readArtifact(kind, file string) ([]byte, error) {
	doc, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	switch kind {
	case artifact.KindClassifier:
		_, err = artifact.DecodeClassifier(doc)
	case artifact.KindEncoder:
		_, err = artifact.DecodeEncoder(doc)
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
