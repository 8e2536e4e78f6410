// Package root contains the root command for the application
package root

import (
	"fjacquet/spendsense/internal/config"
	"fjacquet/spendsense/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Batch string
	User  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the loaded configuration, populated before any command runs
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "spendsense",
		Short: "Categorize, deduplicate, and reconcile bank transactions.",
		Long: `spendsense enriches raw bank transactions with merchant identities and
categories, collapses duplicate extractions, infers the source bank, and
computes the effective record that merges enrichment with user overrides.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to spendsense!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Error loading configuration: %v", err)
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Batch, "batch", "b", "", "Limit the operation to one upload batch")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.User, "user", "u", "", "Limit the operation to one user")
}

// Logger returns the shared logger wrapped in the engine's Logger interface.
func Logger() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
