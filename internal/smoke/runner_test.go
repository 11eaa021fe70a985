package smoke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

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

func startServer(t *testing.T) *httptest.Server {
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

	r := chi.NewRouter()
	api.NewServer(svc, svc).Register(context.Background(), r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running service over the fixture database", t, func() {
		srv := startServer(t)
		output := filepath.Join(t.TempDir(), "reports", "smoke.json")
		config := &Config{
			BaseURL:    srv.URL,
			Rounds:     2,
			Workers:    4,
			Timeout:    5 * time.Second,
			OutputFile: output,
		}

		Convey("When the smoke run completes", func() {
			report, err := Run(context.Background(), config)

			Convey("Then every check should pass", func() {
				So(err, ShouldBeNil)
				So(report.Violations, ShouldBeEmpty)
				So(report.Stats.ProbesGenerated, ShouldBeGreaterThan, 0)
				So(report.Stats.ProbesGenerated%2, ShouldEqual, 0)
				So(report.Stats.ProbesSent, ShouldEqual, report.Stats.ProbesGenerated)
				So(report.Stats.ProbesOK, ShouldEqual, report.Stats.ProbesSent)
				So(report.Stats.ProbesFailed, ShouldEqual, 0)
			})

			Convey("And the report should be written", func() {
				data, err := os.ReadFile(output)
				So(err, ShouldBeNil)
				var saved Report
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(len(saved.Outcomes), ShouldEqual, report.Stats.ProbesSent)
			})
		})
	})

	Convey("Given a service that is not healthy", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("When the smoke run starts", func() {
			report, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})

			Convey("Then it should stop at the health check", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
				So(report, ShouldBeNil)
			})
		})
	})
}

func TestGenerateProbes(t *testing.T) {
	Convey("Given selector options", t, func() {
		opts := &Options{
			Competitions: types.CompetitionOptions{
				Categories: types.NewChoices([]string{"ATP", "WTA"}),
				Types:      types.NewChoices([]string{"singles"}),
				Genders:    types.NewChoices([]string{"men"}),
			},
			Venues:      types.VenueOptions{Countries: types.NewChoices([]string{"France"})},
			Competitors: types.CompetitorOptions{Countries: types.NewChoices([]string{"Italy"}), RankMin: 1, RankMax: 100},
			Ranks:       types.RankRange{Low: 1, High: 50},
		}
		stats := &Stats{}

		Convey("When probes are generated for two rounds", func() {
			probes := generateProbes(context.Background(), &Config{Rounds: 2}, opts, stats)

			Convey("Then every option should be probed once per round with its own ID", func() {
				// competitions 1+4, venues 1+1, competitors 3+1, search 3*4
				So(len(probes), ShouldEqual, 2*(5+2+4+12))
				So(stats.ProbesGenerated, ShouldEqual, len(probes))
				So(probes[0].ID, ShouldNotEqual, probes[len(probes)/2].ID)
				So(probes[0].Key(), ShouldEqual, probes[len(probes)/2].Key())
			})

			Convey("And All should never be sent as a selector", func() {
				for _, p := range probes {
					for _, vs := range p.Query {
						So(vs, ShouldNotContain, types.All)
					}
				}
			})

			Convey("And competitor probes should carry their range", func() {
				for _, p := range probes {
					if p.View == ViewCompetitors {
						So(p.Ranks, ShouldNotBeNil)
						So(p.Query.Get("rank_low"), ShouldNotBeEmpty)
					}
				}
			})
		})
	})
}

func TestVerifyOutcomes(t *testing.T) {
	competitors := func(q url.Values, baseline bool, count int, ranks ...int64) Outcome {
		rr := types.RankRange{Low: 1, High: 10}
		table := &types.Table{Columns: []string{"name", "rank"}}
		for _, r := range ranks {
			table.Rows = append(table.Rows, []any{"x", r})
		}
		return Outcome{
			Probe:  Probe{View: ViewCompetitors, Path: "/api/competitors", Query: q, Baseline: baseline, Ranks: &rr},
			Status: StatusOK,
			Count:  count,
			Table:  table,
		}
	}
	ranks := url.Values{"rank_low": {"1"}, "rank_high": {"10"}}
	italy := url.Values{"rank_low": {"1"}, "rank_high": {"10"}, "country": {"Italy"}}

	Convey("Given consistent outcomes", t, func() {
		outcomes := []Outcome{
			competitors(ranks, true, 3, 1, 2, 3),
			competitors(italy, false, 1, 1),
		}

		Convey("Then no check should fail", func() {
			stats := &Stats{}
			So(verifyOutcomes(context.Background(), outcomes, stats), ShouldBeEmpty)
			So(stats.Violations, ShouldEqual, 0)
		})
	})

	Convey("Given a filtered count above the unfiltered one", t, func() {
		outcomes := []Outcome{
			competitors(ranks, true, 1, 1),
			competitors(italy, false, 2, 1, 2),
		}

		Convey("Then the subset check should fail", func() {
			v := verifySubsets(outcomes)
			So(v, ShouldHaveLength, 1)
			So(v[0].Check, ShouldEqual, CheckSubset)
		})
	})

	Convey("Given competitor rows outside or out of order", t, func() {
		Convey("Then the rank checks should fail", func() {
			So(verifyRanks([]Outcome{competitors(ranks, true, 2, 1, 11)})[0].Check, ShouldEqual, CheckRankBounds)
			So(verifyRanks([]Outcome{competitors(ranks, true, 2, 3, 2)})[0].Check, ShouldEqual, CheckRankOrder)
		})
	})

	Convey("Given a repeated probe with different counts", t, func() {
		outcomes := []Outcome{
			competitors(ranks, true, 3, 1, 2, 3),
			competitors(ranks, true, 2, 1, 2),
		}

		Convey("Then the stability and empty checks should behave", func() {
			So(verifyStable(outcomes), ShouldHaveLength, 1)
			So(verifyEmpty(outcomes), ShouldBeEmpty)

			bad := outcomes[0]
			bad.Empty = true
			So(verifyEmpty([]Outcome{bad}), ShouldHaveLength, 1)
		})
	})

	Convey("Given search outcomes", t, func() {
		search := func(term string, skipped bool) Outcome {
			return Outcome{
				Probe:   Probe{View: ViewSearch, Path: "/api/search", Query: url.Values{"q": {term}}},
				Status:  StatusOK,
				Skipped: skipped,
			}
		}

		Convey("Then only blank terms may be skipped", func() {
			So(verifySkipped([]Outcome{search(" ", true), search("a", false)}), ShouldBeEmpty)
			So(verifySkipped([]Outcome{search(" ", false)}), ShouldHaveLength, 1)
			So(verifySkipped([]Outcome{search("a", true)}), ShouldHaveLength, 1)
		})
	})

	Convey("Given failed requests", t, func() {
		outcomes := []Outcome{
			{Probe: Probe{Path: "/api/venues"}, Status: http.StatusInternalServerError},
			{Probe: Probe{Path: "/api/venues"}, Err: "connection refused"},
		}

		Convey("Then the status check should report both", func() {
			v := verifyStatus(outcomes)
			So(v, ShouldHaveLength, 2)
			So(v[1].Detail, ShouldEqual, "connection refused")
		})
	})
}
