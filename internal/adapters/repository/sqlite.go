package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// SQLiteStore is a read-only Store over a SQLite database file.
// All statements share a single connection.
type SQLiteStore struct {
	db           *sql.DB
	path         string
	busyTimeout  time.Duration
	queryTimeout time.Duration
	closed       atomic.Bool
}

// OpenSQLite opens path read-only and verifies the connection.
// A missing file is an error; the store never creates one.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		path:         path,
		busyTimeout:  5 * time.Second,
		queryTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(path, s.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	s.db = db

	logger.Get().Info(ctx, "analytics store opened", logger.String("path", path))
	return s, nil
}

// readOnlyDSN builds a file: URI for path. The path is percent-escaped so
// '?', '#' and '%' in file names are not read as URI syntax.
func readOnlyDSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Set("_busy_timeout", strconv.FormatInt(busyTimeout.Milliseconds(), 10))
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + q.Encode()
}

// Path returns the database file the store reads.
func (s *SQLiteStore) Path() string { return s.path }

// Query implements Store.Query.
func (s *SQLiteStore) Query(ctx context.Context, st query.Statement) (*types.Table, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(st.Name, float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordQueryExecuted(st.Name)

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	table, err := s.run(ctx, st)
	if err != nil {
		metrics.RecordQueryError(st.Name)
		metrics.RecordErrorByComponent("repository", "query")
		logger.Get().Error(ctx, "statement failed",
			logger.String("view", st.Name),
			logger.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrQuery, st.Name, err)
	}

	logger.Get().Debug(ctx, "statement executed",
		logger.String("view", st.Name),
		logger.Int("rows", table.Len()),
		logger.Duration("took", time.Since(start)))
	return table, nil
}

func (s *SQLiteStore) run(ctx context.Context, st query.Statement) (*types.Table, error) {
	rows, err := s.db.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &types.Table{Columns: columns, Rows: make([][]any, 0, 16)}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// Close implements Store.Close. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
