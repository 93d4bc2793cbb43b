package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
)

type UserService struct {
	users     storage.UserStore
	publisher EventPublisher
}

func NewUserService(users storage.UserStore, publisher EventPublisher) *UserService {
	return &UserService{users: users, publisher: publisher}
}

func (s *UserService) GetSavingsGoal(ctx context.Context, userID string) (decimal.Decimal, error) {
	if err := requireUser(userID); err != nil {
		return decimal.Zero, err
	}
	u, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return u.SavingsGoalPercentage, nil
}

// UpdateSavingsGoal stores a goal in [0,100] and emits a ledger event.
func (s *UserService) UpdateSavingsGoal(ctx context.Context, userID string, pct decimal.Decimal) (decimal.Decimal, error) {
	if err := requireUser(userID); err != nil {
		return decimal.Zero, err
	}
	if err := core.ValidateSavingsGoal(pct); err != nil {
		return decimal.Zero, err
	}
	u, err := s.users.UpdateSavingsGoal(ctx, userID, pct)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("update savings goal: %w", err)
	}
	publish(ctx, s.publisher, amqp.NewSavingsGoalEvent(u))
	return u.SavingsGoalPercentage, nil
}

// EnsureUser returns userID's record, creating it with defaults when absent.
func (s *UserService) EnsureUser(ctx context.Context, userID string) (core.User, error) {
	if err := requireUser(userID); err != nil {
		return core.User{}, err
	}
	return s.users.EnsureUser(ctx, userID)
}
