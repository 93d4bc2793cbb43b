package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage"

	"golang.org/x/sync/errgroup"
)

// StatsOptions tunes a StatsService. Zero values fall back to local time,
// the wall clock and no caching.
type StatsOptions struct {
	Location *time.Location
	Clock    func() time.Time
	Cache    *cache.LRUCache[core.MonthlySeries]
}

// StatsService computes the analytics views over a user's transactions.
type StatsService struct {
	users storage.UserStore
	txs   storage.TransactionStore
	loc   *time.Location
	now   func() time.Time
	cache *cache.LRUCache[core.MonthlySeries]

	// gens counts invalidations per user. A series read before an
	// invalidation must not be stored after it.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewStatsService(users storage.UserStore, txs storage.TransactionStore, opts StatsOptions) *StatsService {
	s := &StatsService{users: users, txs: txs, loc: opts.Location, now: opts.Clock, cache: opts.Cache, gens: make(map[string]uint64)}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Location is the zone used to bucket transactions into months.
func (s *StatsService) Location() *time.Location { return s.loc }

// CurrentYear returns the calendar year of the service clock.
func (s *StatsService) CurrentYear() int { return s.now().In(s.loc).Year() }

func seriesKey(userID string, year int) string {
	return userID + ":" + strconv.Itoa(year)
}

// MonthlySeries returns the twelve monthly buckets of year. A zero year means
// the current one.
func (s *StatsService) MonthlySeries(ctx context.Context, userID string, year int) (core.MonthlySeries, error) {
	if err := requireUser(userID); err != nil {
		return core.MonthlySeries{}, err
	}
	if year == 0 {
		year = s.CurrentYear()
	}
	if err := core.ValidateYear(year); err != nil {
		return core.MonthlySeries{}, err
	}

	key := seriesKey(userID, year)
	var gen uint64
	if s.cache != nil {
		if series, ok := s.cache.Get(key); ok {
			return series, nil
		}
		gen = s.generation(userID)
	}

	from, to := core.YearRange(year, s.loc)
	txs, err := s.txs.FindTransactions(ctx, userID, core.TransactionFilter{From: from, To: to})
	if err != nil {
		return core.MonthlySeries{}, fmt.Errorf("load transactions for %d: %w", year, err)
	}
	series := core.BuildMonthlySeries(year, txs, s.loc)
	if s.cache != nil {
		s.storeSeries(userID, key, gen, series)
	}
	return series, nil
}

func (s *StatsService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID]
}

// storeSeries caches series unless userID was invalidated since gen was read.
func (s *StatsService) storeSeries(userID, key string, gen uint64, series core.MonthlySeries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[userID] != gen {
		return
	}
	s.cache.Set(key, series)
}

// Snapshot returns the all-time and current-month summary for userID.
func (s *StatsService) Snapshot(ctx context.Context, userID string) (core.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return core.Snapshot{}, err
	}
	from, to := core.MonthRange(s.now(), s.loc)

	var (
		user       core.User
		all, month []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.FindUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		txs, err := s.txs.FindTransactions(gctx, userID, core.TransactionFilter{})
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		all = txs
		return nil
	})
	g.Go(func() error {
		txs, err := s.txs.FindTransactions(gctx, userID, core.TransactionFilter{From: from, To: to})
		if err != nil {
			return fmt.Errorf("load current month: %w", err)
		}
		month = txs
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}

	return core.BuildSnapshot(user.SavingsGoalPercentage, all, month), nil
}

// InvalidateUser drops every cached series of userID.
func (s *StatsService) InvalidateUser(userID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[userID]++
	prefix := userID + ":"
	s.cache.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
}
