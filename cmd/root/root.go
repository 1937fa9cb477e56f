// Package root contains the root command for the application.
package root

import (
	"strings"

	"fjacquet/ledger-import/internal/config"
	"fjacquet/ledger-import/internal/csvparser"
	"fjacquet/ledger-import/internal/formats"
	"fjacquet/ledger-import/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cfg is the loaded application configuration.
	Cfg = &config.Config{}

	// DBPath overrides the configured database path when set via --db.
	DBPath string

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "ledger-import",
		Short: "Import bank CSV exports into a local transaction ledger.",
		Long: `ledger-import ingests bank-exported CSV transaction files, normalizes
them and persists them into a local SQLite database with duplicate
detection and account-type-aware summaries.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to ledger-import!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Log = config.ConfigureLogging()

			cfg, err := config.Load()
			if err != nil {
				Log.Fatalf("Error loading configuration: %v", err)
			}
			Cfg = cfg
			applyConfiguredLogLevel()

			// Propagate the configured logger to the internal packages.
			formats.SetLogger(Log)
			csvparser.SetLogger(Log)
			storage.SetLogger(Log)
		},
	}
)

// Init initializes the root command flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&DBPath, "db", "", "Database file (overrides configuration)")
}

// applyConfiguredLogLevel applies the config-file log level when the
// LOG_LEVEL environment variable did not already pin one.
func applyConfiguredLogLevel() {
	if Cfg.Log.Level == "" || config.GetEnv("LOG_LEVEL", "") != "" {
		return
	}
	level, err := logrus.ParseLevel(strings.ToLower(Cfg.Log.Level))
	if err != nil {
		Log.Warnf("Invalid configured log level '%s', keeping '%s'", Cfg.Log.Level, Log.GetLevel())
		return
	}
	Log.SetLevel(level)
}

// Database returns the database path, honoring the --db override.
func Database() string {
	if DBPath != "" {
		return DBPath
	}
	return Cfg.Data.Database
}

// OpenStore opens the configured database, exiting on failure.
func OpenStore() *storage.Store {
	store, err := storage.Open(Database())
	if err != nil {
		Log.Fatalf("Error opening database: %v", err)
	}
	return store
}

// NewRegistry builds the format registry, merging user-defined specs
// from the configured formats file.
func NewRegistry() *formats.Registry {
	registry := formats.NewRegistry()
	if err := registry.LoadFile(Cfg.Formats.File); err != nil {
		Log.Fatalf("Error loading formats file: %v", err)
	}
	return registry
}
