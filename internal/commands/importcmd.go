package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shuhna-net/flashledger/internal/importer"
)

func newImportCommand() *cobra.Command {
	var projectDir string
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import wallet ledger CSV exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runImport(cmd.Context(), absDir, format)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory")
	cmd.Flags().StringVar(&format, "format", "wallet", "export format")

	return cmd
}

func runImport(ctx context.Context, dir, format string) error {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown import format %q", format)
	}

	cfg, err := loadProject(dir)
	if err != nil {
		return err
	}

	s, err := openStore(dir, cfg)
	if err != nil {
		return fmt.Errorf("opening ledger database: %w", err)
	}
	defer s.Close()

	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No CSV files to import")
		return nil
	}

	for _, file := range files {
		f, err := os.Open(file.Path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", file.Name, err)
		}
		txns, err := parser.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parsing %s: %w", file.Name, err)
		}

		// One transaction per file: a bad row rejects the whole file.
		if err := s.InsertEntries(ctx, txns); err != nil {
			return fmt.Errorf("importing %s: %w", file.Name, err)
		}
		if err := importer.MarkProcessed(dir, file.Name); err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d entries\n", file.Name, len(txns))
	}
	return nil
}
