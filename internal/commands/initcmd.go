package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shuhna-net/flashledger/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string
	var driver string
	var dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a flashledger project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, driver, dsn)
		},
	}

	cmd.Flags().StringVar(&name, "name", "Flash Express", "business name")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (sqlite3 or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN")

	return cmd
}

func runInit(dir, name, driver, dsn string) error {
	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	if driver != "" {
		cfg.Database.Driver = driver
	}
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Opening the store creates the schema.
	s, err := openStore(dir, cfg)
	if err != nil {
		return fmt.Errorf("initializing ledger database: %w", err)
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing ledger database: %w", err)
	}

	fmt.Printf("Initialized flashledger project in %s\n", dir)
	return nil
}
