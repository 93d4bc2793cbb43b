// Package memory is a process-local Repository used for development and tests.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]core.User
	txs   map[string]core.Transaction
	now   func() time.Time
}

var _ storage.Repository = (*Store)(nil)

// New returns an empty store with the given users provisioned.
func New(userIDs ...string) *Store {
	s := &Store{
		users: make(map[string]core.User),
		txs:   make(map[string]core.Transaction),
		now:   time.Now,
	}
	for _, id := range dedupe(userIDs) {
		s.users[id] = s.newUser(id)
	}
	return s
}

// NewFromFile provisions one user per non-blank, non-comment line of path.
// A missing file yields an empty store.
func NewFromFile(path string) *Store {
	return New(readLines(path)...)
}

func (s *Store) newUser(id string) core.User {
	return core.User{ID: id, SavingsGoalPercentage: core.DefaultSavingsGoal(), CreatedAt: s.now().UTC()}
}

func (s *Store) FindTransactions(_ context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.txs {
		if t.UserID == userID && f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txs[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.txs[t.ID]; exists {
		return core.Transaction{}, fmt.Errorf("transaction %s already exists", t.ID)
	}
	s.txs[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID, id string, p core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	p.Apply(&t)
	t.UpdatedAt = s.now().UTC()
	s.txs[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(s.txs, id)
	return true, nil
}

func (s *Store) FindUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	return u, nil
}

func (s *Store) UpdateSavingsGoal(_ context.Context, id string, pct decimal.Decimal) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	u.SavingsGoalPercentage = pct
	s.users[id] = u
	return u, nil
}

func (s *Store) EnsureUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		u = s.newUser(id)
		s.users[id] = u
	}
	return u, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func readLines(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
