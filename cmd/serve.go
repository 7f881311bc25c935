package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sweep the mailbox once, then keep polling it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		skip, _ := cmd.Flags().GetBool("skip-sweep")
		if skip {
			cfg.Sweep.Enabled = false
		}

		svc, err := newService(cfg, true)
		if err != nil {
			return err
		}

		slog.Info("Starting serve mode", "server", cfg.IMAP.Address(), "folder", cfg.IMAP.Folder,
			"sweep", cfg.Sweep.Enabled, "interval", cfg.Poll.Interval)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return svc.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("skip-sweep", false, "Start polling without the initial bulk sweep")
}
