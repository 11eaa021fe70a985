// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config holding every default.
//   - Load layers a YAML file and COURTSIDE_* environment variables on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// DatabasePath points at the pre-populated SQLite file. It is opened read-only.
	DatabasePath string `koanf:"database_path"`

	// QueryCache memoizes query results for the lifetime of the process.
	QueryCache bool `koanf:"query_cache"`

	// RankMin and RankMax bound the competitor rank-range selector.
	RankMin int `koanf:"rank_min"`
	RankMax int `koanf:"rank_max"`

	// DefaultRankLow and DefaultRankHigh are used when a request omits the range.
	DefaultRankLow  int `koanf:"default_rank_low"`
	DefaultRankHigh int `koanf:"default_rank_high"`

	// MaxSearchLength caps the search term length in runes.
	MaxSearchLength int `koanf:"max_search_length"`

	// RateLimitPerMinute limits /api and /charts requests per client IP. Zero disables it.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8501",
		DatabasePath:       "tennis_analytics.db",
		QueryCache:         true,
		RankMin:            1,
		RankMax:            100,
		DefaultRankLow:     1,
		DefaultRankHigh:    50,
		MaxSearchLength:    100,
		RateLimitPerMinute: 600,
	}
}
