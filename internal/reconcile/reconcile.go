// Package reconcile repairs a known class of erroneous shipping-fee
// deductions in the wallet ledger. For every faulty deduction it appends
// a compensating deposit of the same magnitude, then rematerializes the
// balance of every touched account from the full ledger. The job is
// idempotent: refund ids are derived deterministically from the entries
// they reverse, so a re-run (or a concurrent run) converges to the same
// ledger instead of double-crediting anyone.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shuhna-net/flashledger/internal/id"
	"github.com/shuhna-net/flashledger/internal/model"
	"github.com/shuhna-net/flashledger/internal/store"
)

// FaultyDescriptionPrefix selects the deductions the dashboard wrote for
// shipments that had already been charged. Matching on description text is
// brittle, but it is the only marker those rows carry.
const FaultyDescriptionPrefix = "Shipping fee for delivered shipment "

// refundMarker prefixes the description of every compensating deposit.
const refundMarker = "Refund of erroneous shipping fee for shipment "

// errDryRun forces a rollback after a dry run has gathered its report.
var errDryRun = errors.New("dry run")

// Report summarizes one reconciliation run.
type Report struct {
	Discovered      int // faulty deductions found
	Inserted        int // compensations newly appended
	Skipped         int // compensations already present from a prior run
	AccountsUpdated int // distinct owners whose balance was rematerialized
}

// Job executes the repair as one all-or-nothing unit of work.
type Job struct {
	store *store.Store

	// DryRun computes the full report and then rolls everything back.
	DryRun bool

	now func() time.Time
}

// New creates a reconciliation Job backed by the given store.
func New(s *store.Store) *Job {
	return &Job{store: s, now: time.Now}
}

// Run finds faulty deductions, appends missing compensations, and
// rematerializes affected balances, all inside a single database
// transaction. On any failure nothing is committed; the caller may retry
// the whole job and rely on idempotency. A run that discovers nothing
// performs no writes at all.
func (j *Job) Run(ctx context.Context) (Report, error) {
	var report Report

	err := j.store.Transaction(ctx, func(tx *sql.Tx) error {
		faulty, err := j.selectFaulty(ctx, tx)
		if err != nil {
			return err
		}
		report.Discovered = len(faulty)
		if len(faulty) == 0 {
			return nil
		}

		// Owners are collected from every match up front: balances are
		// rematerialized even where the compensation turns out to be a
		// duplicate, because re-deriving a sum is harmless.
		owners := distinctOwners(faulty)
		occurredAt := j.now().UTC()

		for _, e := range faulty {
			refundID := id.RefundID(e.ID)
			exists, err := j.store.EntryExists(ctx, tx, refundID)
			if err != nil {
				return err
			}
			if exists {
				report.Skipped++
				continue
			}
			refund := model.Transaction{
				ID:          refundID,
				OwnerID:     e.OwnerID,
				Kind:        model.KindDeposit,
				Amount:      e.Amount.Abs(),
				Description: refundMarker + strings.TrimPrefix(e.Description, FaultyDescriptionPrefix),
				OccurredAt:  occurredAt,
				Status:      model.StatusProcessed,
			}
			if err := j.store.InsertEntry(ctx, tx, refund); err != nil {
				return err
			}
			report.Inserted++
		}

		for _, owner := range owners {
			balance, err := j.sumOwner(ctx, tx, owner)
			if err != nil {
				return err
			}
			if err := j.store.SetBalance(ctx, tx, model.Account{OwnerID: owner, Balance: balance}); err != nil {
				return err
			}
			report.AccountsUpdated++
		}

		if j.DryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return report, nil
	}
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// selectFaulty returns deductions matching the faulty pattern: the fixed
// description prefix plus a strictly negative amount. The store's LIKE is
// only a candidate filter (sqlite matches ASCII case-insensitively), so
// the exact prefix check is repeated here. Amounts that fail to parse
// were coerced to zero at the store boundary and therefore never qualify.
func (j *Job) selectFaulty(ctx context.Context, tx *sql.Tx) ([]model.Transaction, error) {
	matches, err := j.store.EntriesWithDescriptionPrefix(ctx, tx, FaultyDescriptionPrefix)
	if err != nil {
		return nil, err
	}
	var faulty []model.Transaction
	for _, m := range matches {
		if strings.HasPrefix(m.Description, FaultyDescriptionPrefix) && m.Amount.IsNegative() {
			faulty = append(faulty, m)
		}
	}
	return faulty, nil
}

// sumOwner re-derives an owner's balance from the full ledger. Always a
// fresh sum, never an incremental update.
func (j *Job) sumOwner(ctx context.Context, tx *sql.Tx, ownerID string) (decimal.Decimal, error) {
	entries, err := j.store.EntriesByOwner(ctx, tx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Amount)
	}
	return balance, nil
}

func distinctOwners(entries []model.Transaction) []string {
	seen := make(map[string]bool, len(entries))
	var owners []string
	for _, e := range entries {
		if !seen[e.OwnerID] {
			seen[e.OwnerID] = true
			owners = append(owners, e.OwnerID)
		}
	}
	return owners
}
