package memory

import (
	"context"
	"testing"

	"fintrack/internal/sheets"
)

func TestLedgerAppendEntry(t *testing.T) {
	l := New()

	ref, err := l.AppendEntry(context.Background(), sheets.LedgerEntry{Kind: "transaction.created", UserID: "alice"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, err = l.AppendEntry(context.Background(), sheets.LedgerEntry{Kind: "transaction.deleted", UserID: "alice"})
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	if _, err := l.AppendEntry(context.Background(), sheets.LedgerEntry{Kind: "x"}); err == nil {
		t.Fatal("expected error without user id")
	}

	entries := l.Entries()
	if len(entries) != 2 || entries[1].Kind != "transaction.deleted" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
