// Package service provides the page controller that implements
// the dependencies required by the HTTP site and API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Service answers view requests by building statements and running them
// through the (optionally memoized) analytics store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store
	cache *repository.CachedStore

	// Configuration
	databasePath    string
	queryCache      bool
	rankMin         int
	rankMax         int
	defaultRanks    types.RankRange
	maxSearchLength int
	version         string

	// State
	started   bool
	startedAt time.Time
	injected  bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabasePath sets the SQLite file opened on Start.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.databasePath = path
		}
	}
}

// WithStore uses st instead of opening the database on Start.
// The service takes ownership and closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
			s.injected = true
		}
	}
}

// WithQueryCache enables or disables statement memoization.
func WithQueryCache(enabled bool) Option {
	return func(s *Service) {
		s.queryCache = enabled
	}
}

// WithRankBounds sets the selectable rank interval.
func WithRankBounds(min, max int) Option {
	return func(s *Service) {
		if min >= 1 && max >= min {
			s.rankMin = min
			s.rankMax = max
		}
	}
}

// WithDefaultRankRange sets the range used when a request carries none.
func WithDefaultRankRange(low, high int) Option {
	return func(s *Service) {
		if low >= 1 && high >= low {
			s.defaultRanks = types.RankRange{Low: low, High: high}
		}
	}
}

// WithMaxSearchLength caps the search term length in characters.
func WithMaxSearchLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSearchLength = n
		}
	}
}

// WithVersion sets the version shown on the About page.
func WithVersion(v string) Option {
	return func(s *Service) {
		if v != "" {
			s.version = v
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		databasePath:    "tennis_analytics.db",
		queryCache:      true,
		rankMin:         1,
		rankMax:         100,
		defaultRanks:    types.RankRange{Low: 1, High: 50},
		maxSearchLength: 100,
		version:         "1.0",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the analytics store and enables the memo.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting analytics service...")

	if !s.injected {
		st, err := repository.OpenSQLite(ctx, s.databasePath)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = st
	}
	if s.queryCache {
		s.cache = repository.NewCachedStore(ctx, s.store)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "analytics service started",
		logger.String("database", s.databasePath),
		logger.Bool("queryCache", s.queryCache),
		logger.Int("rankMin", s.rankMin),
		logger.Int("rankMax", s.rankMax),
	)

	return nil
}

// Stop closes the store. A stopped service can be started again only with
// a path-backed store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping analytics service...")

	var err error
	if s.cache != nil {
		err = s.cache.Close()
		s.cache = nil
	} else if s.store != nil {
		err = s.store.Close()
	}
	if err != nil {
		s.logger.Warn(context.Background(), "closing store", logger.Error(err))
	}
	if !s.injected {
		s.store = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"database":   s.databasePath,
		"queryCache": s.queryCache,
		"rankMin":    s.rankMin,
		"rankMax":    s.rankMax,
	}

	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if s.cache != nil {
			n := s.cache.Len()
			stats["cacheEntries"] = n
			metrics.UpdateCacheEntries(n)
		}
	}

	return stats
}

// run executes st through the memo when enabled.
func (s *Service) run(ctx context.Context, st query.Statement) (*types.Table, error) {
	s.mu.RLock()
	var store repository.Store = s.cache
	if s.cache == nil {
		store = s.store
	}
	started := s.started
	s.mu.RUnlock()

	if !started || store == nil {
		return nil, ErrNotStarted
	}
	return store.Query(ctx, st)
}

// runAll builds a statement group and executes it in order.
func (s *Service) runAll(ctx context.Context, build func() ([]query.Statement, error)) ([]*types.Table, error) {
	stmts, err := build()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Table, len(stmts))
	for i, st := range stmts {
		t, err := s.run(ctx, st)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// result wraps t and records empty results.
func result(view string, t *types.Table, emptyMessage string) *types.Result {
	r := types.NewResult(view, t, emptyMessage)
	if r.Empty {
		metrics.RecordEmptyResult(view)
	}
	return r
}
