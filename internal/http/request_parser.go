// This file implements parsing and validation of request bodies and query
// strings into domain values.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

const dateOnly = "2006-01-02"

var (
	errMalformedBody = errors.New("request body must be a JSON object")
	errRequired      = errors.New("is required")
)

// transactionRequest is the wire form of a create or update body. Nil
// pointers and empty raw messages mean the field was not supplied.
type transactionRequest struct {
	Type     *string         `json:"type"`
	Amount   json.RawMessage `json:"amount"`
	Category *string         `json:"category"`
	Date     *string         `json:"date"`
	Notes    *string         `json:"notes"`
}

type savingsGoalRequest struct {
	SavingsGoalPercentage json.RawMessage `json:"savingsGoalPercentage"`
}

// decodeJSON reads a single JSON object from r into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return core.Invalid("", fmt.Errorf("read request body: %w", err))
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return core.Invalid("", errMalformedBody)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return core.Invalid("", errMalformedBody)
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// parseDecimalValue accepts a JSON number or a numeric string.
func parseDecimalValue(raw json.RawMessage) (string, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s, err := parseDecimalValue(raw)
	if err != nil {
		return decimal.Zero, core.Invalid("amount", core.ErrInvalidAmount)
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, core.Invalid("amount", err)
	}
	return d, nil
}

// parseDate accepts RFC 3339 timestamps or YYYY-MM-DD dates, the latter at
// midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, core.ErrInvalidDate
}

// toTransaction validates a create body. Every field but notes is required.
func (req transactionRequest) toTransaction(loc *time.Location) (core.Transaction, error) {
	var t core.Transaction
	switch {
	case req.Type == nil:
		return t, core.Invalid("type", fmt.Errorf("type %w", errRequired))
	case isNull(req.Amount):
		return t, core.Invalid("amount", fmt.Errorf("amount %w", errRequired))
	case req.Category == nil:
		return t, core.Invalid("category", core.ErrEmptyCategory)
	case req.Date == nil:
		return t, core.Invalid("date", core.ErrMissingDate)
	}

	p, err := req.toPatch(loc)
	if err != nil {
		return t, err
	}
	p.Apply(&t)
	return t, nil
}

// toPatch converts the supplied fields into a patch, validating each one.
func (req transactionRequest) toPatch(loc *time.Location) (core.TransactionPatch, error) {
	var p core.TransactionPatch
	if req.Type != nil {
		typ, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			return p, core.Invalid("type", err)
		}
		p.Type = &typ
	}
	if !isNull(req.Amount) {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if req.Category != nil {
		category := strings.TrimSpace(sanitizeInput(*req.Category))
		p.Category = &category
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, loc)
		if err != nil {
			return p, core.Invalid("date", err)
		}
		p.Date = &date
	}
	if req.Notes != nil {
		notes := strings.TrimSpace(sanitizeInput(*req.Notes))
		p.Notes = &notes
	}
	return p, p.Validate()
}

func (req savingsGoalRequest) percentage() (decimal.Decimal, error) {
	if isNull(req.SavingsGoalPercentage) {
		return decimal.Zero, core.Invalid("savingsGoalPercentage", fmt.Errorf("savingsGoalPercentage %w", errRequired))
	}
	s, err := parseDecimalValue(req.SavingsGoalPercentage)
	if err != nil {
		return decimal.Zero, core.Invalid("savingsGoalPercentage", core.ErrInvalidSavingsGoal)
	}
	return core.ParseSavingsGoal(s)
}

// parseFilter reads type, category, startDate and endDate. A date-only
// endDate covers that whole day.
func parseFilter(q url.Values, loc *time.Location) (core.TransactionFilter, error) {
	var f core.TransactionFilter
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		typ, err := core.ParseTransactionType(v)
		if err != nil {
			return f, core.Invalid("type", err)
		}
		f.Type = typ
	}
	f.Category = strings.TrimSpace(q.Get("category"))

	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		from, err := parseDate(v, loc)
		if err != nil {
			return f, core.Invalid("startDate", err)
		}
		f.From = from
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		to, err := parseDate(v, loc)
		if err != nil {
			return f, core.Invalid("endDate", err)
		}
		if _, dateErr := time.ParseInLocation(dateOnly, v, loc); dateErr == nil {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = to
	}
	return f, f.Validate()
}

// parseYear reads the leading integer of the year query parameter, so
// "2024abc" is 2024. It returns 0, meaning the current year, when the
// parameter is absent, zero or has no leading digits.
func parseYear(q url.Values) int {
	v := strings.TrimSpace(q.Get("year"))
	end := 0
	if end < len(v) && (v[end] == '+' || v[end] == '-') {
		end++
	}
	digits := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	y, err := strconv.Atoi(v[:end])
	if err != nil {
		// Out of int range; still rejected by year validation.
		return -1
	}
	return y
}
