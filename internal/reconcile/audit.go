package reconcile

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// Drift is a materialized balance that no longer matches the sum of its
// owner's ledger entries.
type Drift struct {
	OwnerID string
	Stored  decimal.Decimal
	Derived decimal.Decimal
}

// Diff returns derived minus stored.
func (d Drift) Diff() decimal.Decimal {
	return d.Derived.Sub(d.Stored)
}

// Audit compares every materialized balance against a fresh re-sum of the
// owner's ledger entries and returns the accounts that drifted. Read-only:
// the transaction exists only to give all reads one consistent snapshot.
func (j *Job) Audit(ctx context.Context) ([]Drift, error) {
	var drifts []Drift

	err := j.store.Transaction(ctx, func(tx *sql.Tx) error {
		accounts, err := j.store.AccountsTx(ctx, tx)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			derived, err := j.sumOwner(ctx, tx, a.OwnerID)
			if err != nil {
				return err
			}
			if !derived.Equal(a.Balance) {
				drifts = append(drifts, Drift{OwnerID: a.OwnerID, Stored: a.Balance, Derived: derived})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drifts, nil
}
