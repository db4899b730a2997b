package model

import "github.com/shopspring/decimal"

// Account is the materialized balance for one wallet owner. Balance is a
// cached sum of the owner's ledger entries, never a source of truth in
// its own right.
type Account struct {
	OwnerID string
	Balance decimal.Decimal
}
