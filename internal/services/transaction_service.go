package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/google/uuid"
)

// EventPublisher forwards domain events to the ledger queue.
type EventPublisher interface {
	Publish(ctx context.Context, evt *amqp.Event) error
}

// Invalidator drops derived data cached for a user.
type Invalidator interface {
	InvalidateUser(userID string)
}

// TransactionService orchestrates transaction writes across storage, the
// ledger queue and the analytics cache.
type TransactionService struct {
	store       storage.TransactionStore
	publisher   EventPublisher
	invalidator Invalidator
	newID       func() string
	now         func() time.Time
}

// NewTransactionService wires a service. publisher and invalidator may be nil.
func NewTransactionService(store storage.TransactionStore, publisher EventPublisher, invalidator Invalidator) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrUnauthorized
	}
	return nil
}

func (s *TransactionService) List(ctx context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.store.FindTransactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return core.Transaction{}, err
	}
	return s.store.GetTransaction(ctx, userID, id)
}

// Create stores t for userID. ID, owner and timestamps are assigned here.
func (s *TransactionService) Create(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return core.Transaction{}, err
	}
	now := s.now().UTC()
	t.ID = s.newID()
	t.UserID = userID
	t.Category = strings.TrimSpace(t.Category)
	t.CreatedAt, t.UpdatedAt = now, now
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.afterWrite(ctx, amqp.TransactionCreated, created)
	return created, nil
}

// Update applies the supplied fields. An empty patch returns the stored
// transaction unchanged.
func (s *TransactionService) Update(ctx context.Context, userID, id string, p core.TransactionPatch) (core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return core.Transaction{}, err
	}
	if p.IsEmpty() {
		return s.store.GetTransaction(ctx, userID, id)
	}
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, userID, id, p)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.afterWrite(ctx, amqp.TransactionUpdated, updated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	found, err := s.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !found {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	s.afterWrite(ctx, amqp.TransactionDeleted, existing)
	return nil
}

// afterWrite runs the best-effort side effects of a committed write. The
// stored data is the source of truth, so failures here only get logged.
func (s *TransactionService) afterWrite(ctx context.Context, kind amqp.EventKind, t core.Transaction) {
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(t.UserID)
	}
	publish(ctx, s.publisher, amqp.NewTransactionEvent(kind, t))
}

func publish(ctx context.Context, p EventPublisher, evt *amqp.Event) {
	if p == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping ledger event", "kind", evt.Kind)
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", evt.Kind,
			"user_id", evt.UserID,
			"transaction_id", evt.TransactionID,
			"error", err)
	}
}
