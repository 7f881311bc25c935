package main

import (
	"log/slog"
	"os"

	"github.com/meko-christian/mail-sweeper/cmd"
)

func main() {
	// Use a JSON handler until the root command has parsed its logging flags
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	// Fatal pipeline errors exit non-zero so a process supervisor can restart us
	if err := cmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
