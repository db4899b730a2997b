package id

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// RefundPrefix marks compensating entries. A refund id is derived from the
// id of the entry it reverses, so re-running a repair always proposes the
// same id. The ledger's primary key then guarantees at most one refund
// per faulty entry.
const RefundPrefix = "refund-"

// RefundID derives the compensating entry's id from the original entry's id.
// Pure function of its input: no process state, no randomness.
func RefundID(originalID string) string {
	return RefundPrefix + originalID
}

// IsRefund reports whether an id belongs to a compensating entry.
func IsRefund(id string) bool {
	return strings.HasPrefix(id, RefundPrefix)
}

// OriginalID recovers the reversed entry's id from a refund id.
// ok is false when the id is not a refund id.
func OriginalID(refundID string) (original string, ok bool) {
	if !IsRefund(refundID) {
		return "", false
	}
	return strings.TrimPrefix(refundID, RefundPrefix), true
}

// NewTransactionID returns an id for an organically created ledger entry,
// e.g. an imported row that arrived without one.
func NewTransactionID() string {
	return uuid.NewString()
}

// NewRunID returns a lexically sortable id for one reconciliation run.
func NewRunID() string {
	return ulid.Make().String()
}
