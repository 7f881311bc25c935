package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meko-christian/mail-sweeper/internal/config"
	"github.com/meko-christian/mail-sweeper/internal/dataset"
	"github.com/meko-christian/mail-sweeper/internal/spammodel"
	"github.com/meko-christian/mail-sweeper/internal/textnorm"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the spam model from the prepared dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		opts := spammodel.DefaultOptions
		opts.TestSize, _ = cmd.Flags().GetFloat64("test-size")
		opts.Seed, _ = cmd.Flags().GetInt64("seed")

		samples, err := dataset.ReadFile(cfg.Model.Dataset)
		if err != nil {
			return fmt.Errorf("failed to read dataset (run `mail-sweeper dataset` first): %w", err)
		}

		detector, eval, err := spammodel.Train(samples, textnorm.New(), opts)
		if err != nil {
			return err
		}

		fmt.Printf("Model Accuracy: %.4f\n\nClassification Report:\n%s\n", eval.Accuracy(), eval)

		if err := detector.Save(cfg.Model.Path, cfg.Model.VectorizerPath); err != nil {
			return err
		}
		fmt.Printf("Model saved to %s, vectorizer saved to %s\n", cfg.Model.Path, cfg.Model.VectorizerPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().Float64("test-size", spammodel.DefaultOptions.TestSize, "Share of samples held out for evaluation")
	trainCmd.Flags().Int64("seed", spammodel.DefaultOptions.Seed, "Seed for the train/test split")
}
