package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meko-christian/mail-sweeper/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mail-sweeper",
	Short: "Classify, unsubscribe from and delete unwanted mail",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Setup logger after flag parsing
		setupLogger()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	// .env is optional; it feeds EMAIL, PASSWORD and IMAP_SERVER
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("No config.yaml found in current directory, using environment only",
				"hint", "Run `mail-sweeper init` to create one interactively.")
		} else {
			slog.Error("Failed to read config", "error", err)
		}
	}
}

// loadConfig decodes and validates the configuration for commands that talk
// to the mailbox.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}

	if problems := config.NewValidator().Validate(cfg); len(problems) > 0 {
		for _, p := range problems {
			slog.Error("Invalid configuration", "problem", p)
		}
		return config.Config{}, fmt.Errorf(`configuration incomplete:
  - %s

Create a config.yaml file by running:
  mail-sweeper init
or set EMAIL, PASSWORD and IMAP_SERVER in the environment or a .env file`, strings.Join(problems, "\n  - "))
	}

	return cfg, nil
}

func setupLogger() {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		level = slog.LevelInfo
	}
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
