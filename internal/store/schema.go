package store

// schemaSQLite creates the ledger tables for the embedded database.
// transactions.id is the primary key: the uniqueness constraint is what
// makes a concurrent check-then-insert of the same refund id safe, since
// at most one writer can win.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	amount TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	occurred_at DATETIME NOT NULL,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions(owner_id);

CREATE TABLE IF NOT EXISTS accounts (
	owner_id TEXT PRIMARY KEY,
	balance TEXT NOT NULL
);
`

// schemaPostgres is the same layout for the dashboard's production database.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	amount TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions(owner_id);

CREATE TABLE IF NOT EXISTS accounts (
	owner_id TEXT PRIMARY KEY,
	balance TEXT NOT NULL
);
`
