package sheets

import (
	"context"
	"time"
)

// LedgerEntry is one audit row describing a mutation.
type LedgerEntry struct {
	Timestamp             time.Time
	Kind                  string
	UserID                string
	TransactionID         string
	Type                  string
	Amount                string
	Category              string
	Date                  string
	Notes                 string
	SavingsGoalPercentage string
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		// AppendEntry appends e and returns a reference to the written row.
		AppendEntry(ctx context.Context, e LedgerEntry) (rowRef string, err error)
	}
)
