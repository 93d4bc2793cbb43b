package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	// DefaultSavingsGoalPercentage is assigned to users that never set a goal.
	DefaultSavingsGoalPercentage = 20

	MaxNotesLength    = 500
	MaxCategoryLength = 100
)

type (
	TransactionType string

	Transaction struct {
		ID        string
		UserID    string
		Type      TransactionType
		Amount    decimal.Decimal
		Category  string
		Date      time.Time
		Notes     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		ID                    string
		SavingsGoalPercentage decimal.Decimal
		CreatedAt             time.Time
	}

	// TransactionPatch carries the fields of a partial update. Nil fields are left untouched.
	TransactionPatch struct {
		Type     *TransactionType
		Amount   *decimal.Decimal
		Category *string
		Date     *time.Time
		Notes    *string
	}

	// TransactionFilter restricts a listing. Zero values mean "any".
	TransactionFilter struct {
		Type     TransactionType
		Category string
		From     time.Time
		To       time.Time
	}
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidType        = errors.New("type must be either income or expense")
	ErrInvalidAmount      = errors.New("amount must be greater than 0")
	ErrEmptyCategory      = errors.New("category is required")
	ErrCategoryTooLong    = fmt.Errorf("category too long (max %d characters)", MaxCategoryLength)
	ErrMissingDate        = errors.New("date is required")
	ErrInvalidDate        = errors.New("invalid date")
	ErrNotesTooLong       = fmt.Errorf("notes too long (max %d characters)", MaxNotesLength)
	ErrInvalidSavingsGoal = errors.New("savings goal percentage must be between 0 and 100")
	ErrInvalidYear        = errors.New("year must be between 1 and 9999")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid wraps err as a ValidationError on field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType accepts "income" or "expense" in any letter case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func validateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func validateCategory(c string) error {
	c = strings.TrimSpace(c)
	if c == "" {
		return ErrEmptyCategory
	}
	if len([]rune(c)) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	return nil
}

func validateNotes(n string) error {
	if len([]rune(n)) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if err := validateAmount(t.Amount); err != nil {
		return Invalid("amount", err)
	}
	if err := validateCategory(t.Category); err != nil {
		return Invalid("category", err)
	}
	if t.Date.IsZero() {
		return Invalid("date", ErrMissingDate)
	}
	if err := validateNotes(t.Notes); err != nil {
		return Invalid("notes", err)
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil && p.Date == nil && p.Notes == nil
}

// Validate checks only the supplied fields.
func (p TransactionPatch) Validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if p.Amount != nil {
		if err := validateAmount(*p.Amount); err != nil {
			return Invalid("amount", err)
		}
	}
	if p.Category != nil {
		if err := validateCategory(*p.Category); err != nil {
			return Invalid("category", err)
		}
	}
	if p.Date != nil && p.Date.IsZero() {
		return Invalid("date", ErrMissingDate)
	}
	if p.Notes != nil {
		if err := validateNotes(*p.Notes); err != nil {
			return Invalid("notes", err)
		}
	}
	return nil
}

// Apply copies the supplied fields onto t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}

// Matches reports whether t passes every set criterion. Bounds are inclusive.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}

func (f TransactionFilter) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return Invalid("endDate", errors.New("endDate must not be before startDate"))
	}
	return nil
}

// DefaultSavingsGoal returns DefaultSavingsGoalPercentage as a decimal.
func DefaultSavingsGoal() decimal.Decimal {
	return decimal.NewFromInt(DefaultSavingsGoalPercentage)
}

// ValidateSavingsGoal rejects percentages outside [0,100].
func ValidateSavingsGoal(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return Invalid("savingsGoalPercentage", ErrInvalidSavingsGoal)
	}
	return nil
}

// ValidateYear rejects years outside 1..9999.
func ValidateYear(year int) error {
	if year < 1 || year > 9999 {
		return Invalid("year", ErrInvalidYear)
	}
	return nil
}
