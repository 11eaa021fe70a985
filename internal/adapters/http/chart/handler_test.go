package chart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/courtside/internal/adapters/http/chart"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/adapters/repository/sqlitetest"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newRouter(t *testing.T) http.Handler {
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
	chart.NewHandler(svc, chart.DefaultPalette).Register(r)
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandler(t *testing.T) {
	Convey("Given a chart router over the fixture database", t, func() {
		router := newRouter(t)

		Convey("Then every named chart should be served as PNG", func() {
			So(chart.Names(), ShouldHaveLength, 10)
			for _, name := range chart.Names() {
				w := get(router, "/charts/"+name)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(isPNG(w.Body.Bytes()), ShouldBeTrue)
			}
		})

		Convey("And the .png suffix should be accepted", func() {
			w := get(router, "/charts/dashboard-countries.png")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And a filtered page query string should be accepted", func() {
			w := get(router, "/charts/competitions-genders?category=WTA")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(isPNG(w.Body.Bytes()), ShouldBeTrue)
		})

		Convey("When a filter matches nothing", func() {
			w := get(router, "/charts/competitors-movement?country=Atlantis")

			Convey("Then the placeholder should be served", func() {
				placeholder, err := chart.Placeholder("No data", chart.DefaultPalette)
				So(err, ShouldBeNil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Bytes(), ShouldResemble, placeholder)
			})
		})

		Convey("When the chart name is unknown", func() {
			w := get(router, "/charts/nope")

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the rank range is invalid", func() {
			inverted := get(router, "/charts/competitors-scatter?rank_low=20&rank_high=5")
			malformed := get(router, "/charts/competitors-top?rank_low=x")

			Convey("Then it should return 400", func() {
				So(inverted.Code, ShouldEqual, http.StatusBadRequest)
				So(malformed.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
