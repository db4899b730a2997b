package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuhna-net/flashledger/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id, owner, amount, desc string) model.Transaction {
	return model.Transaction{
		ID:          id,
		OwnerID:     owner,
		Kind:        model.KindFee,
		Amount:      dec(amount),
		Description: desc,
		OccurredAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Status:      model.StatusProcessed,
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestInsertEntry_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := entry("T1", "U1", "-12.50", "Shipping fee for delivered shipment S1")
	require.NoError(t, s.InsertEntries(ctx, []model.Transaction{want}))

	got, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T1", got[0].ID)
	assert.Equal(t, "U1", got[0].OwnerID)
	assert.Equal(t, model.KindFee, got[0].Kind)
	assert.True(t, got[0].Amount.Equal(dec("-12.50")))
	assert.Equal(t, want.Description, got[0].Description)
	assert.True(t, got[0].OccurredAt.Equal(want.OccurredAt))
	assert.Equal(t, model.StatusProcessed, got[0].Status)
}

func TestInsertEntry_DuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertEntries(ctx, []model.Transaction{entry("T1", "U1", "-5", "fee")}))
	err := s.InsertEntries(ctx, []model.Transaction{entry("T1", "U2", "3", "other")})
	require.Error(t, err)

	// The failed batch must not have touched the original row.
	got, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "U1", got[0].OwnerID)
}

func TestEntryExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertEntries(ctx, []model.Transaction{entry("T1", "U1", "-5", "fee")}))

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		exists, err := s.EntryExists(ctx, tx, "T1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.EntryExists(ctx, tx, "refund-T1")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})
	require.NoError(t, err)
}

func TestEntriesWithDescriptionPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertEntries(ctx, []model.Transaction{
		entry("T1", "U1", "-10", "Shipping fee for delivered shipment S1"),
		entry("T2", "U1", "25", "Wallet top-up"),
		entry("T3", "U2", "-4", "Shipping fee for delivered shipment S2"),
	}))

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		got, err := s.EntriesWithDescriptionPrefix(ctx, tx, "Shipping fee for delivered shipment ")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "T1", got[0].ID)
		assert.Equal(t, "T3", got[1].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestSetBalance_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		return s.SetBalance(ctx, tx, model.Account{OwnerID: "U1", Balance: dec("-10")})
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(tx *sql.Tx) error {
		return s.SetBalance(ctx, tx, model.Account{OwnerID: "U1", Balance: dec("2.50")})
	})
	require.NoError(t, err)

	got, found, err := s.Balance(ctx, "U1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Balance.Equal(dec("2.50")))

	_, found, err = s.Balance(ctx, "U2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTransaction_RollbackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx *sql.Tx) error {
		if err := s.InsertEntry(ctx, tx, entry("T1", "U1", "-10", "fee")); err != nil {
			return err
		}
		if err := s.SetBalance(ctx, tx, model.Account{OwnerID: "U1", Balance: dec("-10")}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestScan_CoercesMalformedAmount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Simulate a legacy row written with a non-numeric amount.
	_, err := s.db.ExecContext(ctx, `INSERT INTO transactions
		(id, owner_id, kind, amount, description, occurred_at, status)
		VALUES ('T1', 'U1', 'Fee', 'not-a-number', 'fee', ?, 'Processed')`,
		time.Now().UTC())
	require.NoError(t, err)

	got, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.IsZero())
}
