package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// CachedStore memoizes another Store by statement text and arguments.
//
// Entries live until the process exits; the underlying data is read-only,
// so nothing invalidates them. Concurrent misses on the same key share a
// single execution. Failed executions are not memoized. Returned tables are
// shared between callers and must be treated as read-only.
type CachedStore struct {
	next Store

	mu      sync.RWMutex
	entries map[string]*types.Table
	group   singleflight.Group

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
}

// NewCachedStore wraps next and starts the cache size metrics updater.
func NewCachedStore(ctx context.Context, next Store, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		next:                  next,
		entries:               make(map[string]*types.Table),
		metricsUpdateInterval: 10 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startMetricsUpdater(ctx)
	return c
}

// Query implements Store.Query.
func (c *CachedStore) Query(ctx context.Context, st query.Statement) (*types.Table, error) {
	key := st.Key()

	c.mu.RLock()
	table, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.RecordCacheHit()
		return table, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the entry between the read above and now.
		c.mu.RLock()
		t, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}

		metrics.RecordCacheMiss()
		t, err := c.next.Query(context.WithoutCancel(ctx), st)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = t
		n := len(c.entries)
		c.mu.Unlock()
		metrics.UpdateCacheEntries(n)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug(ctx, "memoized statement shared", logger.String("view", st.Name))
	}
	return v.(*types.Table), nil
}

// Len returns the number of memoized statements.
func (c *CachedStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the metrics updater and closes the wrapped store.
func (c *CachedStore) Close() error {
	select {
	case <-c.stopChan:
		// Channel already closed
	default:
		close(c.stopChan)
	}
	c.wg.Wait()
	return c.next.Close()
}

func (c *CachedStore) startMetricsUpdater(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateCacheEntries(c.Len())
			}
		}
	}()
}
