package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shuhna-net/flashledger/internal/id"
	"github.com/shuhna-net/flashledger/internal/model"
)

// WalletParser parses wallet-ledger CSV exports from the ops dashboard.
type WalletParser struct{}

const (
	walletNumFields     = 7
	walletColID         = 0
	walletColOwnerID    = 1
	walletColKind       = 2
	walletColAmount     = 3
	walletColDesc       = 4
	walletColOccurredAt = 5
	walletColStatus     = 6
)

// Format returns the parser name.
func (p *WalletParser) Format() string { return "wallet" }

// Parse reads a wallet export CSV and returns Transactions. Rows that
// arrive without an id are assigned a fresh one. Unlike ledger reads,
// import is strict: a malformed amount rejects the file.
func (p *WalletParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = walletNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading wallet CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := parseWalletRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseWalletRow(rec []string) (model.Transaction, error) {
	occurredAt, err := time.Parse(time.RFC3339, rec[walletColOccurredAt])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing occurred_at %q: %w", rec[walletColOccurredAt], err)
	}

	amount, err := decimal.NewFromString(rec[walletColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[walletColAmount], err)
	}

	entryID := rec[walletColID]
	if entryID == "" {
		entryID = id.NewTransactionID()
	}

	return model.Transaction{
		ID:          entryID,
		OwnerID:     rec[walletColOwnerID],
		Kind:        model.TransactionKind(rec[walletColKind]),
		Amount:      amount,
		Description: rec[walletColDesc],
		OccurredAt:  occurredAt,
		Status:      model.TransactionStatus(rec[walletColStatus]),
	}, nil
}
