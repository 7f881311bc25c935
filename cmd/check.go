package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify the mailbox without unsubscribing or deleting anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rulesOnly, _ := cmd.Flags().GetBool("rules-only")
		svc, err := newService(cfg, !rulesOnly)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Connecting to IMAP...")
		verdicts, err := svc.DryRun(ctx)
		if err != nil {
			return err
		}

		unwanted := 0
		for _, v := range verdicts {
			if !v.Result.Unwanted {
				continue
			}
			unwanted++
			fmt.Printf("Unwanted: %s from %s (%s)\n", v.Content.Subject, v.Content.Sender, v.Result.Reason())
			if v.Link != "" {
				fmt.Printf("  unsubscribe link: %s\n", v.Link)
			}
		}

		fmt.Printf("%d of %d messages would be removed.\n", unwanted, len(verdicts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("rules-only", false, "Skip the trained model")
}
