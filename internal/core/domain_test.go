package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTx() Transaction {
	return Transaction{
		Type:     Expense,
		Amount:   decimal.NewFromInt(12),
		Category: "Food & Dining",
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTx().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*Transaction)
		field string
		want  error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type", ErrInvalidType},
		{"empty type", func(tx *Transaction) { tx.Type = "" }, "type", ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, "amount", ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, "amount", ErrInvalidAmount},
		{"blank category", func(tx *Transaction) { tx.Category = "   " }, "category", ErrEmptyCategory},
		{"long category", func(tx *Transaction) { tx.Category = strings.Repeat("c", MaxCategoryLength+1) }, "category", ErrCategoryTooLong},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, "date", ErrMissingDate},
		{"long notes", func(tx *Transaction) { tx.Notes = strings.Repeat("n", MaxNotesLength+1) }, "notes", ErrNotesTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mut(&tx)
			err := tx.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field || !errors.Is(err, tc.want) {
				t.Fatalf("expected %s/%v, got %s/%v", tc.field, tc.want, ve.Field, ve.Err)
			}
		})
	}
}

func TestTransactionPatch(t *testing.T) {
	var empty TransactionPatch
	if !empty.IsEmpty() {
		t.Fatal("zero patch should be empty")
	}

	zero := decimal.Zero
	if err := (TransactionPatch{Amount: &zero}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	bad := TransactionType("")
	if err := (TransactionPatch{Type: &bad}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}

	amount := decimal.NewFromInt(99)
	notes := "updated"
	p := TransactionPatch{Amount: &amount, Notes: &notes}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	tx := validTx()
	p.Apply(&tx)
	if !tx.Amount.Equal(amount) || tx.Notes != notes {
		t.Fatalf("patch not applied: %+v", tx)
	}
	if tx.Category != "Food & Dining" || tx.Type != Expense {
		t.Fatalf("unsupplied fields changed: %+v", tx)
	}
}

func TestTransactionFilterMatches(t *testing.T) {
	tx := validTx()
	day := tx.Date
	cases := []struct {
		f    TransactionFilter
		want bool
	}{
		{TransactionFilter{}, true},
		{TransactionFilter{Type: Expense}, true},
		{TransactionFilter{Type: Income}, false},
		{TransactionFilter{Category: "Food & Dining"}, true},
		{TransactionFilter{Category: "Rent"}, false},
		{TransactionFilter{From: day, To: day}, true},
		{TransactionFilter{From: day.Add(time.Second)}, false},
		{TransactionFilter{To: day.Add(-time.Second)}, false},
	}
	for i, tc := range cases {
		if got := tc.f.Matches(tx); got != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	if got, err := ParseTransactionType(" Income "); err != nil || got != Income {
		t.Fatalf("expected income, got %q (%v)", got, err)
	}
	if _, err := ParseTransactionType("refund"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestValidateYear(t *testing.T) {
	for _, y := range []int{1, 2025, 9999} {
		if err := ValidateYear(y); err != nil {
			t.Fatalf("%d expected ok, got %v", y, err)
		}
	}
	for _, y := range []int{0, -1, 10000} {
		if err := ValidateYear(y); !IsValidation(err) {
			t.Fatalf("%d expected validation error, got %v", y, err)
		}
	}
}
