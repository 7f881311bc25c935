package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the one-time rule based sweep over the whole folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// the sweep is rule based, no model needed
		svc, err := newService(cfg, false)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if sum := svc.BulkSweep(ctx); sum.Err != nil {
			return fmt.Errorf("sweep failed: %w", sum.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
