package storage

import (
	"context"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Ports implemented by every backend. All transaction calls are scoped to the owner.
type (
	TransactionStore interface {
		// FindTransactions returns the owner's transactions matching f, newest first.
		FindTransactions(ctx context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, userID, id string, p core.TransactionPatch) (core.Transaction, error)
		// DeleteTransaction reports whether a transaction owned by userID was removed.
		DeleteTransaction(ctx context.Context, userID, id string) (bool, error)
	}

	UserStore interface {
		FindUser(ctx context.Context, id string) (core.User, error)
		UpdateSavingsGoal(ctx context.Context, id string, pct decimal.Decimal) (core.User, error)
		// EnsureUser creates the user with default settings when absent.
		EnsureUser(ctx context.Context, id string) (core.User, error)
	}

	Repository interface {
		TransactionStore
		UserStore
		Ping(ctx context.Context) error
		Close() error
	}
)
