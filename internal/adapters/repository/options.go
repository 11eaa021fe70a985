package repository

import "time"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithBusyTimeout sets how long SQLite waits on a locked database file.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithQueryTimeout bounds every statement; zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d >= 0 {
			s.queryTimeout = d
		}
	}
}

// CacheOption applies a configuration option to the CachedStore.
type CacheOption func(*CachedStore)

// WithMetricsUpdateInterval sets the interval for background cache size updates.
func WithMetricsUpdateInterval(interval time.Duration) CacheOption {
	return func(c *CachedStore) {
		if interval > 0 {
			c.metricsUpdateInterval = interval
		}
	}
}
