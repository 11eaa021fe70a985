package api_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/okian/courtside/internal/adapters/export"
	"github.com/okian/courtside/internal/adapters/http/api"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/adapters/repository/sqlitetest"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// failingDeps fails every view with err.
type failingDeps struct {
	api.Dependencies
	err error
}

func (f *failingDeps) Dashboard(context.Context) (*types.DashboardView, error) {
	return nil, f.err
}

func (f *failingDeps) Venues(context.Context, types.VenueFilter) (*types.VenuesView, error) {
	return nil, f.err
}

func startService(t *testing.T) *service.Service {
	t.Helper()
	store, err := repository.OpenSQLite(context.Background(), sqlitetest.New(t))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	svc := service.New(service.WithStore(store))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func newRouter(deps api.Dependencies, stats api.StatsProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID)
	api.NewServer(deps, stats).Register(context.Background(), r)
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Register(t *testing.T) {
	Convey("Given an API router over the fixture database", t, func() {
		router := newRouter(startService(t), &mockStatsProvider{stats: map[string]interface{}{"started": true}})

		Convey("Then the health endpoint should expose metrics", func() {
			w := get(router, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should return the provider stats", func() {
			w := get(router, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			decode(w, &stats)
			So(stats["started"], ShouldEqual, true)
			So(stats, ShouldContainKey, "metrics")
		})

		Convey("And every response should carry a request ID", func() {
			w := get(router, "/api/about")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/api/about", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("And unknown routes should return 404", func() {
			So(get(router, "/api/umpires").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestViewsHandler(t *testing.T) {
	Convey("Given an API router over the fixture database", t, func() {
		router := newRouter(startService(t), &mockStatsProvider{})

		Convey("When requesting the dashboard", func() {
			w := get(router, "/api/dashboard")

			Convey("Then the summary should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.DashboardView
				decode(w, &view)
				So(view.Summary.TotalCompetitors, ShouldEqual, sqlitetest.Competitors)
				So(view.Summary.HighestPoints, ShouldEqual, 11830)
			})
		})

		Convey("When filtering competitions by category", func() {
			w := get(router, "/api/competitions?category=WTA")

			Convey("Then only that category should be listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.CompetitionsView
				decode(w, &view)
				So(view.Filter.Category, ShouldEqual, "WTA")
				So(view.Result.Count, ShouldEqual, 2)
				So(view.Result.Empty, ShouldBeFalse)
			})
		})

		Convey("When the venue filter matches nothing", func() {
			w := get(router, "/api/venues?country=Atlantis")

			Convey("Then the result should be empty with a message", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.VenuesView
				decode(w, &view)
				So(view.Result.Empty, ShouldBeTrue)
				So(view.Result.Message, ShouldEqual, "No venues match the selected filters")
			})
		})

		Convey("When requesting filter options", func() {
			w := get(router, "/api/venues/filters")

			Convey("Then All should lead the choices", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var opts types.VenueOptions
				decode(w, &opts)
				So(opts.Countries[0], ShouldEqual, types.All)
			})
		})

		Convey("When requesting competitors with a rank range", func() {
			w := get(router, "/api/competitors?rank_low=1&rank_high=5")

			Convey("Then only those ranks should be listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.CompetitorsView
				decode(w, &view)
				So(view.Result.Count, ShouldEqual, 5)
				So(view.TopPoints.Len(), ShouldEqual, 10)
			})
		})

		Convey("When the rank range is inverted", func() {
			w := get(router, "/api/competitors?rank_low=20&rank_high=5")

			Convey("Then it should return 400 with field details", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp struct {
					Code   string `json:"code"`
					Fields []struct {
						Field string `json:"field"`
					} `json:"fields"`
				}
				decode(w, &resp)
				So(resp.Code, ShouldEqual, "bad_request")
				So(resp.Fields, ShouldNotBeEmpty)
			})
		})

		Convey("When both rank bounds are zero", func() {
			zero := get(router, "/api/competitors?rank_low=0&rank_high=0")
			missing := get(router, "/api/competitors")

			Convey("Then zero should be rejected while missing bounds take the default", func() {
				So(zero.Code, ShouldEqual, http.StatusBadRequest)
				So(missing.Code, ShouldEqual, http.StatusOK)
				var view types.CompetitorsView
				decode(missing, &view)
				So(view.Filter.Ranks, ShouldResemble, types.RankRange{Low: 1, High: 50})
			})
		})

		Convey("When a rank bound is not a number", func() {
			w := get(router, "/api/competitors?rank_low=first")

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When searching competitors", func() {
			w := get(router, "/api/search?kind=Competitor&q=sinner")

			Convey("Then the match and its details should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.SearchView
				decode(w, &view)
				So(view.Result.Count, ShouldEqual, 1)
				So(view.Details, ShouldNotBeNil)
				So(view.Details.Rank, ShouldEqual, 1)
			})
		})

		Convey("When the search term is blank", func() {
			w := get(router, "/api/search?kind=Venue&q=%20%20")

			Convey("Then the search should be skipped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.SearchView
				decode(w, &view)
				So(view.Skipped, ShouldBeTrue)
				So(view.Result, ShouldBeNil)
			})
		})

		Convey("When the search kind is unknown", func() {
			w := get(router, "/api/search?kind=Umpire&q=x")

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting about", func() {
			w := get(router, "/api/about")

			Convey("Then the static content should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.AboutView
				decode(w, &view)
				So(view.Title, ShouldEqual, "About Tennis Analytics")
			})
		})
	})

	Convey("Given dependencies that fail", t, func() {
		Convey("When the service is not started", func() {
			router := newRouter(&failingDeps{err: service.ErrNotStarted}, &mockStatsProvider{})
			w := get(router, "/api/dashboard")

			Convey("Then it should return 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the store fails", func() {
			router := newRouter(&failingDeps{err: repository.ErrQuery}, &mockStatsProvider{})
			w := get(router, "/api/venues")

			Convey("Then it should return 500 without leaking the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldNotContainSubstring, "query")
			})
		})
	})
}

func TestExportHandler(t *testing.T) {
	Convey("Given an API router over the fixture database", t, func() {
		router := newRouter(startService(t), &mockStatsProvider{})

		Convey("When exporting filtered competitors", func() {
			w := get(router, "/api/competitors/export.xlsx?country=USA")

			Convey("Then a workbook with the same rows should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, export.ContentType)
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "competitors.xlsx")

				f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				defer f.Close()
				rows, err := f.GetRows(f.GetSheetList()[0])
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 4)
				So(rows[0][0], ShouldEqual, "name")
			})
		})

		Convey("When exporting venues and competitions", func() {
			Convey("Then both should succeed", func() {
				So(get(router, "/api/venues/export.xlsx").Code, ShouldEqual, http.StatusOK)
				So(get(router, "/api/competitions/export.xlsx?gender=women").Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the export filter is invalid", func() {
			w := get(router, "/api/competitors/export.xlsx?rank_low=0")

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a rate limit of two requests per minute", t, func() {
		h := api.RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		Convey("Then the third request should be rejected", func() {
			So(get(h, "/").Code, ShouldEqual, http.StatusOK)
			So(get(h, "/").Code, ShouldEqual, http.StatusOK)
			w := get(h, "/")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Body.String(), ShouldContainSubstring, "rate_limited")
		})
	})

	Convey("Given a disabled rate limit", t, func() {
		h := api.RateLimit(0)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		Convey("Then requests should pass through", func() {
			for i := 0; i < 5; i++ {
				So(get(h, "/").Code, ShouldEqual, http.StatusNoContent)
			}
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then errors.Is should match both kind and cause", func() {
			err := api.WrapKind("api.test", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: bad request: boom")
		})

		Convey("And Wrap should keep the cause as the kind", func() {
			So(api.Wrap("api.test", nil), ShouldBeNil)
			err := api.Wrap("api.test", service.ErrNotStarted)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(strings.HasPrefix(err.Error(), "api.test: "), ShouldBeTrue)
		})

		Convey("And NewKind should carry only the kind", func() {
			err := api.NewKind("api.test", api.ErrNotFound)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: not found")
		})
	})
}
