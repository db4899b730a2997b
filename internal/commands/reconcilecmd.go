package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shuhna-net/flashledger/internal/id"
	"github.com/shuhna-net/flashledger/internal/reconcile"
	"github.com/shuhna-net/flashledger/internal/runlog"
)

func newReconcileCommand() *cobra.Command {
	var projectDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair erroneous shipping-fee deductions",
		Long: `Finds the known class of erroneous shipping-fee deductions, appends
compensating deposits, and rematerializes affected account balances.
Safe to re-run: already-compensated entries are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(projectDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runReconcile(cmd.Context(), absDir, dryRun)
		},
	}

	cmd.Flags().StringVar(&projectDir, "project", ".", "project directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	return cmd
}

func runReconcile(ctx context.Context, dir string, dryRun bool) error {
	cfg, err := loadProject(dir)
	if err != nil {
		return err
	}

	s, err := openStore(dir, cfg)
	if err != nil {
		return fmt.Errorf("opening ledger database: %w", err)
	}
	defer s.Close()

	job := reconcile.New(s)
	job.DryRun = dryRun

	startedAt := time.Now().UTC()
	report, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation failed, nothing committed: %w", err)
	}
	finishedAt := time.Now().UTC()

	entry := runlog.Entry{
		RunID:           id.NewRunID(),
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
		DryRun:          dryRun,
		Discovered:      report.Discovered,
		Inserted:        report.Inserted,
		Skipped:         report.Skipped,
		AccountsUpdated: report.AccountsUpdated,
	}
	if err := runlog.Append(filepath.Join(dir, cfg.RunLog.Dir), []runlog.Entry{entry}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write run log: %v\n", err)
	}

	label := ""
	if dryRun {
		label = " (dry run)"
	}
	fmt.Printf("Reconciliation complete%s: %d faulty deductions discovered, %d compensations inserted, %d skipped as already handled, %d account balances updated\n",
		label, report.Discovered, report.Inserted, report.Skipped, report.AccountsUpdated)
	return nil
}
