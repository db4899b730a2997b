// Package runlog keeps an append-only CSV audit trail of reconciliation
// runs, one row per invocation.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	DryRun          bool
	Discovered      int
	Inserted        int
	Skipped         int
	AccountsUpdated int
}

// Header is the CSV header for reconcile-log.csv.
const Header = "run_id,started_at,finished_at,dry_run,discovered,inserted,skipped,accounts_updated"

const (
	numFields     = 8
	logFileName   = "reconcile-log.csv"
	colRunID      = 0
	colStartedAt  = 1
	colFinishedAt = 2
	colDryRun     = 3
	colDiscovered = 4
	colInserted   = 5
	colSkipped    = 6
	colAccounts   = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colStartedAt] = e.StartedAt.Format(time.RFC3339)
	row[colFinishedAt] = e.FinishedAt.Format(time.RFC3339)
	row[colDryRun] = strconv.FormatBool(e.DryRun)
	row[colDiscovered] = strconv.Itoa(e.Discovered)
	row[colInserted] = strconv.Itoa(e.Inserted)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colAccounts] = strconv.Itoa(e.AccountsUpdated)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	started, err := time.Parse(time.RFC3339, record[colStartedAt])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing started_at %q: %w", record[colStartedAt], err)
	}
	finished, err := time.Parse(time.RFC3339, record[colFinishedAt])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing finished_at %q: %w", record[colFinishedAt], err)
	}
	dryRun, err := strconv.ParseBool(record[colDryRun])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing dry_run %q: %w", record[colDryRun], err)
	}

	counts := make([]int, 4)
	for i, col := range []int{colDiscovered, colInserted, colSkipped, colAccounts} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		RunID:           record[colRunID],
		StartedAt:       started,
		FinishedAt:      finished,
		DryRun:          dryRun,
		Discovered:      counts[0],
		Inserted:        counts[1],
		Skipped:         counts[2],
		AccountsUpdated: counts[3],
	}, nil
}

// Append writes entries to <dir>/reconcile-log.csv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/reconcile-log.csv.
// Returns nil if the file does not exist.
func Read(dir string) ([]Entry, error) {
	path := filepath.Join(dir, logFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
