// Package store persists the wallet ledger and its materialized account
// balances behind a single transactional unit of work.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/shuhna-net/flashledger/internal/model"
)

// Supported driver names for Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store wraps the ledger database. Writes go through Transaction; reads
// outside a transaction never observe a partially applied run.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the ledger database and ensures the schema exists.
// For sqlite the DSN is a file path; WAL, foreign keys, a busy timeout,
// and immediate transactions are enabled so concurrent maintenance runs
// serialize instead of failing mid-write.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", dsn)
		}
	case DriverPostgres:
		// DSN used as-is.
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for queries the Store does not cover.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Transaction executes fn inside a database transaction. The transaction
// is rolled back on error or panic and committed otherwise, so a failing
// fn leaves the store exactly as it found it.
func (s *Store) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// rebind converts ?-style placeholders to the driver's notation.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// EntriesWithDescriptionPrefix returns ledger entries whose description
// starts with prefix, ordered by id for deterministic processing.
func (s *Store) EntriesWithDescriptionPrefix(ctx context.Context, tx *sql.Tx, prefix string) ([]model.Transaction, error) {
	const query = `SELECT id, owner_id, kind, amount, description, occurred_at, status
		FROM transactions WHERE description LIKE ? || '%' ORDER BY id`

	rows, err := tx.QueryContext(ctx, s.rebind(query), prefix)
	if err != nil {
		return nil, fmt.Errorf("selecting entries by description: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// EntryExists reports whether a ledger entry with the given id exists.
func (s *Store) EntryExists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	const query = `SELECT 1 FROM transactions WHERE id = ? LIMIT 1`

	var one int
	err := tx.QueryRowContext(ctx, s.rebind(query), id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking entry %s: %w", id, err)
	}
	return true, nil
}

// InsertEntry appends one ledger entry. Inserting an id that already
// exists fails on the primary key; the append-only log never overwrites.
func (s *Store) InsertEntry(ctx context.Context, tx *sql.Tx, t model.Transaction) error {
	const query = `INSERT INTO transactions (id, owner_id, kind, amount, description, occurred_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, s.rebind(query),
		t.ID, t.OwnerID, string(t.Kind), t.Amount.String(), t.Description, t.OccurredAt.UTC(), string(t.Status))
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", t.ID, err)
	}
	return nil
}

// EntriesByOwner returns all ledger entries for one owner.
func (s *Store) EntriesByOwner(ctx context.Context, tx *sql.Tx, ownerID string) ([]model.Transaction, error) {
	const query = `SELECT id, owner_id, kind, amount, description, occurred_at, status
		FROM transactions WHERE owner_id = ? ORDER BY id`

	rows, err := tx.QueryContext(ctx, s.rebind(query), ownerID)
	if err != nil {
		return nil, fmt.Errorf("selecting entries for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SetBalance overwrites (or creates) the materialized balance for an owner.
func (s *Store) SetBalance(ctx context.Context, tx *sql.Tx, account model.Account) error {
	const query = `INSERT INTO accounts (owner_id, balance) VALUES (?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET balance = excluded.balance`

	_, err := tx.ExecContext(ctx, s.rebind(query), account.OwnerID, account.Balance.String())
	if err != nil {
		return fmt.Errorf("setting balance for owner %s: %w", account.OwnerID, err)
	}
	return nil
}

// Entries returns the full ledger outside any transaction.
func (s *Store) Entries(ctx context.Context) ([]model.Transaction, error) {
	const query = `SELECT id, owner_id, kind, amount, description, occurred_at, status
		FROM transactions ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("selecting entries: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Accounts returns all materialized balances.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, selectAccounts)
	if err != nil {
		return nil, fmt.Errorf("selecting accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// AccountsTx returns all materialized balances inside a transaction.
func (s *Store) AccountsTx(ctx context.Context, tx *sql.Tx) ([]model.Account, error) {
	rows, err := tx.QueryContext(ctx, selectAccounts)
	if err != nil {
		return nil, fmt.Errorf("selecting accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// Balance returns the stored balance for one owner. found is false when
// the owner has no account row yet.
func (s *Store) Balance(ctx context.Context, ownerID string) (balance model.Account, found bool, err error) {
	const query = `SELECT owner_id, balance FROM accounts WHERE owner_id = ?`

	var raw string
	err = s.db.QueryRowContext(ctx, s.rebind(query), ownerID).Scan(&balance.OwnerID, &raw)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("selecting balance for owner %s: %w", ownerID, err)
	}
	balance.Balance = model.AmountOrZero(raw)
	return balance, true, nil
}

// InsertEntries appends a batch of entries in a single transaction.
func (s *Store) InsertEntries(ctx context.Context, entries []model.Transaction) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		for _, t := range entries {
			if err := s.InsertEntry(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

const selectAccounts = `SELECT owner_id, balance FROM accounts ORDER BY owner_id`

func scanAccounts(rows *sql.Rows) ([]model.Account, error) {
	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var balance string
		if err := rows.Scan(&a.OwnerID, &balance); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Balance = model.AmountOrZero(balance)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return accounts, nil
}

// scanTransactions drains rows into Transactions, applying the
// zero-on-unparsable amount coercion at the boundary.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var entries []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind, amount, status string
		if err := rows.Scan(&t.ID, &t.OwnerID, &kind, &amount, &t.Description, &t.OccurredAt, &status); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		t.Kind = model.TransactionKind(kind)
		t.Status = model.TransactionStatus(status)
		t.Amount = model.AmountOrZero(amount)
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return entries, nil
}
