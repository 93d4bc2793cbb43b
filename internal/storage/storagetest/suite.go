// Package storagetest holds the behavior every storage.Repository must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
)

// Run exercises repo. The repository must start empty.
func Run(t *testing.T, repo storage.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		if _, err := repo.FindUser(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.UpdateSavingsGoal(ctx, "ghost", decimal.NewFromInt(10)); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
		}

		u, err := repo.EnsureUser(ctx, "alice")
		if err != nil {
			t.Fatalf("ensure user: %v", err)
		}
		if !u.SavingsGoalPercentage.Equal(core.DefaultSavingsGoal()) {
			t.Fatalf("expected default goal, got %s", u.SavingsGoalPercentage)
		}

		u, err = repo.UpdateSavingsGoal(ctx, "alice", decimal.RequireFromString("35.5"))
		if err != nil || !u.SavingsGoalPercentage.Equal(decimal.RequireFromString("35.5")) {
			t.Fatalf("update goal: %+v %v", u, err)
		}
		// unchanged value still succeeds
		if _, err := repo.UpdateSavingsGoal(ctx, "alice", decimal.RequireFromString("35.5")); err != nil {
			t.Fatalf("repeat update goal: %v", err)
		}

		u, err = repo.EnsureUser(ctx, "alice")
		if err != nil || !u.SavingsGoalPercentage.Equal(decimal.RequireFromString("35.5")) {
			t.Fatalf("ensure must not reset existing user: %+v %v", u, err)
		}
	})

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	mk := func(id, user string, typ core.TransactionType, amount, category string, date time.Time) core.Transaction {
		return core.Transaction{
			ID: id, UserID: user, Type: typ,
			Amount:   decimal.RequireFromString(amount),
			Category: category, Date: date,
			CreatedAt: base, UpdatedAt: base,
		}
	}

	seed := []core.Transaction{
		mk("t1", "alice", core.Income, "1000", "Salary", base),
		mk("t2", "alice", core.Expense, "12.34", "Food & Dining", base.AddDate(0, 0, 1)),
		mk("t3", "alice", core.Expense, "500", "Rent", base.AddDate(0, -1, 0)),
		mk("t4", "bob", core.Expense, "99", "Rent", base),
	}
	for _, tx := range seed {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create %s: %v", tx.ID, err)
		}
	}

	t.Run("find", func(t *testing.T) {
		all, err := repo.FindTransactions(ctx, "alice", core.TransactionFilter{})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if len(all) != 3 || all[0].ID != "t2" || all[1].ID != "t1" || all[2].ID != "t3" {
			t.Fatalf("expected t2,t1,t3 newest first, got %v", ids(all))
		}
		if !all[0].Amount.Equal(decimal.RequireFromString("12.34")) {
			t.Fatalf("amount not preserved: %s", all[0].Amount)
		}
		if !all[0].Date.Equal(base.AddDate(0, 0, 1)) {
			t.Fatalf("date not preserved: %v", all[0].Date)
		}

		cases := []struct {
			name string
			f    core.TransactionFilter
			want []string
		}{
			{"type", core.TransactionFilter{Type: core.Expense}, []string{"t2", "t3"}},
			{"category", core.TransactionFilter{Category: "Rent"}, []string{"t3"}},
			{"range inclusive", core.TransactionFilter{From: base, To: base}, []string{"t1"}},
			{"from", core.TransactionFilter{From: base.Add(time.Second)}, []string{"t2"}},
		}
		for _, tc := range cases {
			got, err := repo.FindTransactions(ctx, "alice", tc.f)
			if err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			if !equalIDs(ids(got), tc.want) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, ids(got))
			}
		}
	})

	t.Run("owner scoping", func(t *testing.T) {
		if _, err := repo.GetTransaction(ctx, "alice", "t4"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound reading bob's transaction, got %v", err)
		}
		amount := decimal.NewFromInt(1)
		if _, err := repo.UpdateTransaction(ctx, "alice", "t4", core.TransactionPatch{Amount: &amount}); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound updating bob's transaction, got %v", err)
		}
		found, err := repo.DeleteTransaction(ctx, "alice", "t4")
		if err != nil || found {
			t.Fatalf("delete of foreign transaction must report not found: found=%v err=%v", found, err)
		}
		if _, err := repo.GetTransaction(ctx, "bob", "t4"); err != nil {
			t.Fatalf("bob's transaction must survive: %v", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		amount := decimal.RequireFromString("15")
		notes := "lunch"
		got, err := repo.UpdateTransaction(ctx, "alice", "t2", core.TransactionPatch{Amount: &amount, Notes: &notes})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if !got.Amount.Equal(amount) || got.Notes != notes || got.Category != "Food & Dining" || got.Type != core.Expense {
			t.Fatalf("unexpected updated transaction %+v", got)
		}
		again, err := repo.GetTransaction(ctx, "alice", "t2")
		if err != nil || !again.Amount.Equal(amount) || again.Notes != notes {
			t.Fatalf("update not persisted: %+v %v", again, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		found, err := repo.DeleteTransaction(ctx, "alice", "t3")
		if err != nil || !found {
			t.Fatalf("delete: found=%v err=%v", found, err)
		}
		found, err = repo.DeleteTransaction(ctx, "alice", "t3")
		if err != nil || found {
			t.Fatalf("second delete must report not found: found=%v err=%v", found, err)
		}
	})

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
