package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
)

// LedgerWorker appends consumed events to the audit ledger.
type LedgerWorker struct {
	ledger sheets.LedgerWriter

	processed atomic.Int64
	failed    atomic.Int64
}

func NewLedgerWorker(ledger sheets.LedgerWriter) *LedgerWorker {
	return &LedgerWorker{ledger: ledger}
}

// HandleEvent writes one ledger row for evt. A returned error causes the
// delivery to be requeued.
func (w *LedgerWorker) HandleEvent(ctx context.Context, evt *amqp.Event) error {
	ref, err := w.ledger.AppendEntry(ctx, EntryFor(evt))
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("append ledger entry: %w", err)
	}
	w.processed.Add(1)

	slog.InfoContext(ctx, "Event recorded in ledger",
		"component", "worker",
		"kind", evt.Kind,
		"user_id", evt.UserID,
		"transaction_id", evt.TransactionID,
		"ledger_ref", ref)
	return nil
}

// Stats returns how many events were recorded and how many failed.
func (w *LedgerWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

// EntryFor maps an event onto a ledger row.
func EntryFor(evt *amqp.Event) sheets.LedgerEntry {
	return sheets.LedgerEntry{
		Timestamp:             evt.Timestamp,
		Kind:                  string(evt.Kind),
		UserID:                evt.UserID,
		TransactionID:         evt.TransactionID,
		Type:                  evt.Type,
		Amount:                evt.Amount,
		Category:              evt.Category,
		Date:                  evt.Date,
		Notes:                 evt.Notes,
		SavingsGoalPercentage: evt.SavingsGoalPercentage,
	}
}
