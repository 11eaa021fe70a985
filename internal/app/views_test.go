package service_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/adapters/repository/sqlitetest"
	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// countingStore counts statements that reach the database.
type countingStore struct {
	repository.Store
	calls atomic.Int64
}

func (c *countingStore) Query(ctx context.Context, st query.Statement) (*types.Table, error) {
	c.calls.Add(1)
	return c.Store.Query(ctx, st)
}

func startService(t *testing.T, opts ...service.Option) (*service.Service, *countingStore) {
	t.Helper()
	sqlite, err := repository.OpenSQLite(context.Background(), sqlitetest.New(t))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	counting := &countingStore{Store: sqlite}
	svc := service.New(append([]service.Option{service.WithStore(counting)}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, counting
}

func TestService_Dashboard(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := startService(t)

		Convey("When loading the dashboard", func() {
			view, err := svc.Dashboard(context.Background())

			Convey("Then the summary and tables should reflect the data", func() {
				So(err, ShouldBeNil)
				So(view.Summary.TotalCompetitors, ShouldEqual, sqlitetest.Competitors)
				So(view.Summary.Countries, ShouldEqual, 11)
				So(view.Summary.HighestPoints, ShouldEqual, 11830)
				So(view.Countries.Len(), ShouldEqual, query.TopLimit)
				So(view.Types.Len(), ShouldEqual, 3)
				So(view.Rankings.Len(), ShouldEqual, sqlitetest.Competitors)
			})
		})
	})
}

func TestService_Competitions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := startService(t)
		ctx := context.Background()

		Convey("When every selector is All or missing", func() {
			all, err1 := svc.Competitions(ctx, types.CompetitionFilter{Category: types.All, Type: types.All, Gender: types.All})
			blank, err2 := svc.Competitions(ctx, types.CompetitionFilter{})

			Convey("Then both should return the whole table", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(all.Result.Count, ShouldEqual, sqlitetest.Competitions)
				So(blank.Result.Table.Rows, ShouldResemble, all.Result.Table.Rows)
				So(all.Options.Categories[0], ShouldEqual, types.All)
				So(all.Options.Categories, ShouldContain, "Challenger")
			})
		})

		Convey("When a filter is added", func() {
			base, _ := svc.Competitions(ctx, types.CompetitionFilter{})
			narrowed, err := svc.Competitions(ctx, types.CompetitionFilter{Gender: "women"})

			Convey("Then the result should not grow", func() {
				So(err, ShouldBeNil)
				So(narrowed.Result.Count, ShouldBeLessThanOrEqualTo, base.Result.Count)
				So(narrowed.Result.Count, ShouldEqual, 3)
				So(narrowed.Filter.Category, ShouldEqual, types.All)
			})
		})

		Convey("When nothing matches", func() {
			view, err := svc.Competitions(ctx, types.CompetitionFilter{Category: "WTA", Gender: "men"})

			Convey("Then the result should carry the empty message", func() {
				So(err, ShouldBeNil)
				So(view.Result.Empty, ShouldBeTrue)
				So(view.Result.Message, ShouldEqual, "No competitions match the selected filters")
				So(view.ByCategory.Empty(), ShouldBeFalse)
			})
		})

		Convey("When a selector value is too long", func() {
			_, err := svc.Competitions(ctx, types.CompetitionFilter{Category: strings.Repeat("x", 201)})

			Convey("Then it should be rejected as an invalid filter", func() {
				So(errors.Is(err, service.ErrInvalidFilter), ShouldBeTrue)
			})
		})
	})
}

func TestService_Venues(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := startService(t)
		ctx := context.Background()

		Convey("When filtering by country", func() {
			view, err := svc.Venues(ctx, types.VenueFilter{Country: "United Kingdom"})

			Convey("Then only that country's venues should be listed", func() {
				So(err, ShouldBeNil)
				So(view.Result.Count, ShouldEqual, 2)
				for i := 0; i < view.Result.Table.Len(); i++ {
					So(view.Result.Table.String(i, "country_name"), ShouldEqual, "United Kingdom")
				}
				So(view.ByComplex.String(0, "complex_name"), ShouldEqual, "All England Club")
				So(view.Options.Countries, ShouldHaveLength, 5)
			})
		})
	})
}

func TestService_Competitors(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, _ := startService(t)
		ctx := context.Background()

		Convey("When the range is (1,10) in every country", func() {
			view, err := svc.Competitors(ctx, types.CompetitorFilter{Country: types.All, Ranks: types.RankRange{Low: 1, High: 10}})

			Convey("Then exactly ranks 1..10 should be listed ascending", func() {
				So(err, ShouldBeNil)
				So(view.Result.Count, ShouldEqual, 10)
				for i := 0; i < 10; i++ {
					So(view.Result.Table.Int(i, "rank"), ShouldEqual, i+1)
				}
			})

			Convey("And the movement distribution should cover those rows", func() {
				total := int64(0)
				for i := 0; i < view.Movement.Len(); i++ {
					total += view.Movement.Int(i, "count")
				}
				So(total, ShouldEqual, 10)
				So(view.Movement.String(0, "movement_type"), ShouldEqual, types.MovementUp)
				So(view.Movement.Int(0, "count"), ShouldEqual, 4)
			})

			Convey("And the top ten by points should ignore the filter", func() {
				So(view.TopPoints.Len(), ShouldEqual, query.TopLimit)
				So(view.TopPoints.String(0, "name"), ShouldEqual, "Jannik Sinner")
			})
		})

		Convey("When the default range is requested", func() {
			view, err := svc.Competitors(ctx, types.CompetitorFilter{Ranks: svc.DefaultRanks()})

			Convey("Then the (1,50) range should apply", func() {
				So(err, ShouldBeNil)
				So(view.Filter.Ranks, ShouldResemble, types.RankRange{Low: 1, High: 50})
				for i := 0; i < view.Result.Table.Len(); i++ {
					So(view.Result.Table.Int(i, "rank"), ShouldBeBetweenOrEqual, 1, 50)
				}
				So(view.Options.RankMax, ShouldEqual, 100)
			})
		})

		Convey("When the range is all zero", func() {
			_, errZero := svc.Competitors(ctx, types.CompetitorFilter{})
			_, errLow := svc.Competitors(ctx, types.CompetitorFilter{Ranks: types.RankRange{Low: 0, High: 5}})

			Convey("Then both should be rejected like any out-of-bounds range", func() {
				So(errors.Is(errZero, service.ErrInvalidFilter), ShouldBeTrue)
				So(errors.Is(errLow, service.ErrInvalidFilter), ShouldBeTrue)
			})
		})

		Convey("When a country narrows the range", func() {
			view, err := svc.Competitors(ctx, types.CompetitorFilter{Country: "USA", Ranks: types.RankRange{Low: 1, High: 50}})

			Convey("Then only that country's ranked competitors should be listed", func() {
				So(err, ShouldBeNil)
				So(view.Result.Count, ShouldEqual, 3)
				So(view.Result.Table.String(0, "name"), ShouldEqual, "Taylor Fritz")
			})
		})

		Convey("When the range is inverted or out of bounds", func() {
			_, errInverted := svc.Competitors(ctx, types.CompetitorFilter{Ranks: types.RankRange{Low: 20, High: 5}})
			_, errBounds := svc.Competitors(ctx, types.CompetitorFilter{Ranks: types.RankRange{Low: 1, High: 500}})

			Convey("Then both should be invalid filters", func() {
				So(errors.Is(errInverted, service.ErrInvalidFilter), ShouldBeTrue)
				So(errors.Is(errBounds, service.ErrInvalidFilter), ShouldBeTrue)
				So(errBounds.Error(), ShouldContainSubstring, "high must be less than or equal to 100")
			})
		})
	})
}

func TestService_Search(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, counting := startService(t)
		ctx := context.Background()

		Convey("When the term is blank", func() {
			before := counting.calls.Load()
			view, err := svc.Search(ctx, types.SearchRequest{Kind: types.SearchVenue, Term: "   "})

			Convey("Then no query should run and nothing should be returned", func() {
				So(err, ShouldBeNil)
				So(view.Skipped, ShouldBeTrue)
				So(view.Result, ShouldBeNil)
				So(counting.calls.Load(), ShouldEqual, before)
			})
		})

		Convey("When nothing matches", func() {
			view, err := svc.Search(ctx, types.SearchRequest{Kind: types.SearchVenue, Term: "zzz"})

			Convey("Then an explicit no-results message should be returned", func() {
				So(err, ShouldBeNil)
				So(view.Result.Empty, ShouldBeTrue)
				So(view.Result.Message, ShouldEqual, "No venues found matching 'zzz'")
			})
		})

		Convey("When a competitor matches", func() {
			view, err := svc.Search(ctx, types.SearchRequest{Kind: types.SearchCompetitor, Term: "sinner"})

			Convey("Then the first match's details should be attached", func() {
				So(err, ShouldBeNil)
				So(view.Result.Count, ShouldEqual, 1)
				So(view.Details, ShouldNotBeNil)
				So(view.Details.Name, ShouldEqual, "Jannik Sinner")
				So(view.Details.CountryCode, ShouldEqual, "ITA")
				So(view.Details.Abbreviation, ShouldEqual, "SIN")
				So(view.Details.Rank, ShouldEqual, 1)
				So(view.Details.Points, ShouldEqual, 11830)
				So(view.Details.CompetitionsPlayed, ShouldEqual, 19)
			})
		})

		Convey("When several competitors match", func() {
			view, err := svc.Search(ctx, types.SearchRequest{Kind: types.SearchCompetitor, Term: "al"})

			Convey("Then details should belong to the best-ranked match", func() {
				So(err, ShouldBeNil)
				So(view.Result.Count, ShouldBeGreaterThan, 1)
				So(view.Details.Rank, ShouldEqual, view.Result.Table.Int(0, "rank"))
			})
		})

		Convey("When the kind is missing", func() {
			view, err := svc.Search(ctx, types.SearchRequest{Term: "Rune"})

			Convey("Then it should default to competitors", func() {
				So(err, ShouldBeNil)
				So(view.Kind, ShouldEqual, types.SearchCompetitor)
			})
		})

		Convey("When the kind is unknown or the term too long", func() {
			_, errKind := svc.Search(ctx, types.SearchRequest{Kind: "Umpire", Term: "x"})
			_, errLen := svc.Search(ctx, types.SearchRequest{Kind: types.SearchVenue, Term: strings.Repeat("a", 101)})

			Convey("Then both should be invalid filters", func() {
				So(errors.Is(errKind, service.ErrInvalidFilter), ShouldBeTrue)
				So(errors.Is(errLen, service.ErrInvalidFilter), ShouldBeTrue)
			})
		})
	})
}

func TestService_Memo(t *testing.T) {
	Convey("Given a started service with the memo enabled", t, func() {
		svc, counting := startService(t)
		ctx := context.Background()
		f := types.CompetitorFilter{Country: "Italy", Ranks: types.RankRange{Low: 1, High: 20}}

		Convey("When the same view is requested twice", func() {
			first, err1 := svc.Competitors(ctx, f)
			afterFirst := counting.calls.Load()
			second, err2 := svc.Competitors(ctx, f)

			Convey("Then the second request should not reach the database", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(counting.calls.Load(), ShouldEqual, afterFirst)
				So(second.Result.Table, ShouldPointTo, first.Result.Table)
				So(svc.GetStats()["cacheEntries"], ShouldEqual, afterFirst)
			})
		})
	})

	Convey("Given a started service with the memo disabled", t, func() {
		svc, counting := startService(t, service.WithQueryCache(false))
		ctx := context.Background()

		Convey("When the same view is requested twice", func() {
			_, _ = svc.VenueFilters(ctx)
			_, _ = svc.VenueFilters(ctx)

			Convey("Then both requests should reach the database", func() {
				So(counting.calls.Load(), ShouldEqual, 2)
			})
		})
	})
}
