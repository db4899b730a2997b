package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind categorizes a ledger entry. The set is open-ended:
// consumers query by value rather than enumerating kinds.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "Deposit"
	KindWithdrawal TransactionKind = "Withdrawal"
	KindFee        TransactionKind = "Fee"
	KindPayment    TransactionKind = "Payment"
)

// TransactionStatus represents the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "Pending"
	StatusProcessed TransactionStatus = "Processed"
	StatusFailed    TransactionStatus = "Failed"
)

// Transaction is one row in the wallet ledger. The ledger is append-only:
// rows are inserted once and never updated or deleted.
type Transaction struct {
	ID          string
	OwnerID     string
	Kind        TransactionKind
	Amount      decimal.Decimal // negative = deduction, positive = credit
	Description string
	OccurredAt  time.Time
	Status      TransactionStatus
}

// AmountOrZero parses a stored amount string, coercing anything
// unparsable to zero. A single bad row degrades to a zero amount
// instead of aborting the batch that reads it.
func AmountOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
