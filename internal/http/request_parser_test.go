package http

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`12.5`, "12.5", false},
		{`"12,50"`, "12.5", false},
		{`"0.01"`, "0.01", false},
		{`0`, "", true},
		{`-1`, "", true},
		{`"abc"`, "", true},
		{`1e3`, "", true},
		{`true`, "", true},
	}
	for _, tt := range tests {
		got, err := parseAmount(json.RawMessage(tt.raw))
		if tt.wantErr {
			if !errors.Is(err, core.ErrInvalidAmount) {
				t.Errorf("parseAmount(%s) error = %v, want ErrInvalidAmount", tt.raw, err)
			}
			continue
		}
		if err != nil || got.String() != tt.want {
			t.Errorf("parseAmount(%s) = %s, %v; want %s", tt.raw, got, err, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata not available")
	}

	got, err := parseDate("2025-03-10", rome)
	if err != nil || !got.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, rome)) {
		t.Fatalf("date-only = %v (%v)", got, err)
	}
	got, err = parseDate("2025-03-10T10:00:00+02:00", rome)
	if err != nil || !got.Equal(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 = %v (%v)", got, err)
	}
	if _, err := parseDate("10/03/2025", rome); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"type":      {"EXPENSE"},
		"category":  {" Rent "},
		"startDate": {"2025-01-01"},
		"endDate":   {"2025-01-31"},
	}
	f, err := parseFilter(q, time.UTC)
	if err != nil {
		t.Fatalf("parseFilter() error = %v", err)
	}
	if f.Type != core.Expense || f.Category != "Rent" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if want := time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC); !f.To.Equal(want) {
		t.Fatalf("To = %v, want %v", f.To, want)
	}

	f, err = parseFilter(url.Values{"endDate": {"2025-01-31T12:00:00Z"}}, time.UTC)
	if err != nil || !f.To.Equal(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp endDate should be kept as is: %v (%v)", f.To, err)
	}

	for _, bad := range []url.Values{{"type": {"gift"}}, {"startDate": {"soon"}}, {"endDate": {"later"}}} {
		if _, err := parseFilter(bad, time.UTC); !core.IsValidation(err) {
			t.Errorf("parseFilter(%v) error = %v, want validation", bad, err)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := map[string]int{
		"":                     0,
		"2024":                 2024,
		"abc":                  0,
		"0":                    0,
		"10000":                10000,
		"2024abc":              2024,
		" 2023 ":               2023,
		"+2022":                2022,
		"-5":                   -5,
		"-":                    0,
		"99999999999999999999": -1,
	}
	for in, want := range tests {
		if got := parseYear(url.Values{"year": {in}}); got != want {
			t.Errorf("parseYear(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTransactionRequestToPatch(t *testing.T) {
	notes := "  hi\x00there "
	p, err := transactionRequest{Notes: &notes}.toPatch(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if p.Notes == nil || *p.Notes != "hithere" || p.Amount != nil || p.Type != nil {
		t.Fatalf("unexpected patch %+v", p)
	}

	p, err = transactionRequest{Amount: json.RawMessage("null")}.toPatch(time.UTC)
	if err != nil || !p.IsEmpty() {
		t.Fatalf("null amount should be treated as absent: %+v (%v)", p, err)
	}

	empty := ""
	if _, err := (transactionRequest{Category: &empty}).toPatch(time.UTC); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}
