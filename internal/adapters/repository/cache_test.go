package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// countingStore records how often each statement reaches it.
type countingStore struct {
	calls  atomic.Int64
	delay  time.Duration
	failN  atomic.Int64
	closed atomic.Bool
}

func (s *countingStore) Query(_ context.Context, st query.Statement) (*types.Table, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.failN.Load() > 0 {
		s.failN.Add(-1)
		return nil, errors.New("disk I/O error")
	}
	return &types.Table{Columns: []string{"sql"}, Rows: [][]any{{st.SQL}}}, nil
}

func (s *countingStore) Close() error {
	s.closed.Store(true)
	return nil
}

func TestCachedStore(t *testing.T) {
	Convey("Given a memo over a counting store", t, func() {
		ctx := context.Background()
		inner := &countingStore{}
		cache := repository.NewCachedStore(ctx, inner, repository.WithMetricsUpdateInterval(10*time.Millisecond))
		defer cache.Close()

		st := query.Statement{Name: "competitors.list", SQL: "SELECT name FROM Competitors WHERE country = ?", Args: []any{"Italy"}}

		Convey("When the same statement is issued twice", func() {
			first, err1 := cache.Query(ctx, st)
			second, err2 := cache.Query(ctx, st)

			Convey("Then the second call should not reach the store", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(inner.calls.Load(), ShouldEqual, 1)
				So(second, ShouldPointTo, first)
				So(cache.Len(), ShouldEqual, 1)
			})
		})

		Convey("When only the bound arguments differ", func() {
			other := st
			other.Args = []any{"Spain"}
			_, _ = cache.Query(ctx, st)
			_, _ = cache.Query(ctx, other)

			Convey("Then both should execute", func() {
				So(inner.calls.Load(), ShouldEqual, 2)
				So(cache.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the store fails once", func() {
			inner.failN.Store(1)
			_, err := cache.Query(ctx, st)
			table, retryErr := cache.Query(ctx, st)

			Convey("Then the failure should not be memoized", func() {
				So(err, ShouldNotBeNil)
				So(retryErr, ShouldBeNil)
				So(table.Len(), ShouldEqual, 1)
				So(inner.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When many goroutines miss on the same statement", func() {
			inner.delay = 20 * time.Millisecond
			var wg sync.WaitGroup
			results := make([]*types.Table, 32)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = cache.Query(ctx, st)
				}(i)
			}
			wg.Wait()

			Convey("Then one execution should serve them all", func() {
				So(inner.calls.Load(), ShouldEqual, 1)
				for _, r := range results {
					So(r, ShouldPointTo, results[0])
				}
			})
		})

		Convey("When the memo is closed", func() {
			So(cache.Close(), ShouldBeNil)

			Convey("Then the wrapped store should be closed too", func() {
				So(inner.closed.Load(), ShouldBeTrue)
			})
		})
	})
}
