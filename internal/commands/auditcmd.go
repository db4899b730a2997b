package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shuhna-net/flashledger/internal/reconcile"
)

func newAuditCommand() *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check stored balances against the ledger",
		Long: `Re-derives every account balance from the ledger and reports accounts
whose stored balance has drifted. Read-only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runAudit(cmd.Context(), absDir)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory")

	return cmd
}

func runAudit(ctx context.Context, dir string) error {
	cfg, err := loadProject(dir)
	if err != nil {
		return err
	}

	s, err := openStore(dir, cfg)
	if err != nil {
		return fmt.Errorf("opening ledger database: %w", err)
	}
	defer s.Close()

	drifts, err := reconcile.New(s).Audit(ctx)
	if err != nil {
		return fmt.Errorf("auditing balances: %w", err)
	}

	if len(drifts) == 0 {
		fmt.Println("All account balances match the ledger")
		return nil
	}

	for _, d := range drifts {
		fmt.Printf("%s: stored %s, ledger %s (diff %s)\n", d.OwnerID, d.Stored, d.Derived, d.Diff())
	}
	return fmt.Errorf("%d account balance(s) drifted from the ledger", len(drifts))
}
