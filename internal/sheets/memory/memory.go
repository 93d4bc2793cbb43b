// Package memory is an in-process ledger used when no spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

type Ledger struct {
	mu      sync.Mutex
	entries []sheets.LedgerEntry
}

var _ sheets.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (l *Ledger) AppendEntry(_ context.Context, e sheets.LedgerEntry) (string, error) {
	if e.Kind == "" || e.UserID == "" {
		return "", errors.New("ledger entry requires kind and user id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return fmt.Sprintf("mem:%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []sheets.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.LedgerEntry(nil), l.entries...)
}
