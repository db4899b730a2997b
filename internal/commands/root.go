// Package commands wires the flashledger CLI.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shuhna-net/flashledger/internal/buildinfo"
	"github.com/shuhna-net/flashledger/internal/config"
	"github.com/shuhna-net/flashledger/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "flashledger",
		Short:   "Wallet ledger maintenance for Flash Express",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newAuditCommand())

	return rootCmd
}

// loadProject reads the project configuration, honoring a .env file in the
// project directory and environment overrides.
func loadProject(dir string) (*config.Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured ledger database, resolving a relative
// sqlite path against the project directory.
func openStore(dir string, cfg *config.Config) (*store.Store, error) {
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == store.DriverSQLite && !filepath.IsAbs(dsn) {
		dsn = filepath.Join(dir, dsn)
	}
	return store.Open(cfg.Database.Driver, dsn)
}
