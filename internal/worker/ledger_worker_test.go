package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

type failingLedger struct{}

func (failingLedger) AppendEntry(context.Context, sheets.LedgerEntry) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestLedgerWorkerHandleEvent(t *testing.T) {
	ledger := memory.New()
	w := NewLedgerWorker(ledger)

	ts := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	evt := &amqp.Event{
		Kind:          amqp.TransactionUpdated,
		UserID:        "alice",
		TransactionID: "t1",
		Type:          "income",
		Amount:        "2500",
		Category:      "Salary",
		Date:          "2025-04-01T00:00:00Z",
		Timestamp:     ts,
	}
	if err := w.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	entries := ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Kind != "transaction.updated" || got.Amount != "2500" || !got.Timestamp.Equal(ts) || got.Category != "Salary" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if p, f := w.Stats(); p != 1 || f != 0 {
		t.Fatalf("unexpected stats processed=%d failed=%d", p, f)
	}
}

func TestLedgerWorkerPropagatesErrors(t *testing.T) {
	w := NewLedgerWorker(failingLedger{})
	err := w.HandleEvent(context.Background(), &amqp.Event{Kind: amqp.TransactionDeleted, UserID: "bob"})
	if err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
	if _, f := w.Stats(); f != 1 {
		t.Fatalf("expected one failure, got %d", f)
	}
}

func TestEntryForSavingsGoal(t *testing.T) {
	e := EntryFor(&amqp.Event{Kind: amqp.SavingsGoalUpdated, UserID: "alice", SavingsGoalPercentage: "25"})
	if e.SavingsGoalPercentage != "25" || e.TransactionID != "" {
		t.Fatalf("unexpected entry %+v", e)
	}
}
