package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// EventKind names what happened to a transaction or user.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	SavingsGoalUpdated EventKind = "user.savings_goal_updated"
)

func (k EventKind) Valid() bool {
	switch k {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, SavingsGoalUpdated:
		return true
	}
	return false
}

// Event is the message published after every successful mutation.
// Amounts travel as decimal strings.
type Event struct {
	Kind          EventKind `json:"kind"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId,omitempty"`
	Type          string    `json:"type,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Category      string    `json:"category,omitempty"`
	Date          string    `json:"date,omitempty"`
	Notes         string    `json:"notes,omitempty"`

	SavingsGoalPercentage string `json:"savingsGoalPercentage,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent snapshots t for kind.
func NewTransactionEvent(kind EventKind, t core.Transaction) *Event {
	return &Event{
		Kind:          kind,
		UserID:        t.UserID,
		TransactionID: t.ID,
		Type:          string(t.Type),
		Amount:        t.Amount.String(),
		Category:      t.Category,
		Date:          t.Date.UTC().Format(time.RFC3339),
		Notes:         t.Notes,
		Timestamp:     time.Now().UTC(),
	}
}

// NewSavingsGoalEvent records a savings goal change.
func NewSavingsGoalEvent(u core.User) *Event {
	return &Event{
		Kind:                  SavingsGoalUpdated,
		UserID:                u.ID,
		SavingsGoalPercentage: u.SavingsGoalPercentage.String(),
		Timestamp:             time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks a message body.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.UserID == "" {
		return nil, fmt.Errorf("event without user id")
	}
	if e.Amount != "" {
		if _, err := decimal.NewFromString(e.Amount); err != nil {
			return nil, fmt.Errorf("event amount: %w", err)
		}
	}
	return &e, nil
}
