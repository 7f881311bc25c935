package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meko-christian/mail-sweeper/internal/config"
	"github.com/meko-christian/mail-sweeper/internal/dataset"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Download the SMS spam collection and prepare it for training",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		url, _ := cmd.Flags().GetString("url")
		raw, _ := cmd.Flags().GetString("raw")
		offline, _ := cmd.Flags().GetBool("offline")

		if !offline {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := &http.Client{Timeout: 2 * time.Minute}
			if err := dataset.Download(ctx, client, url, raw); err != nil {
				return err
			}
		}

		n, err := dataset.PrepareFile(raw, cfg.Model.Dataset)
		if err != nil {
			return err
		}

		fmt.Printf("Prepared %d samples into %s\n", n, cfg.Model.Dataset)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetCmd)

	datasetCmd.Flags().String("url", dataset.DefaultURL, "Where to download the raw collection")
	datasetCmd.Flags().String("raw", "spam.csv", "Path of the raw collection")
	datasetCmd.Flags().Bool("offline", false, "Prepare an already downloaded raw file")
}
