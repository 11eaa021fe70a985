package chart

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/courtside/internal/adapters/http/params"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Views is the subset of the service the chart endpoints read from.
type Views interface {
	Dashboard(ctx context.Context) (*types.DashboardView, error)
	Competitions(ctx context.Context, f types.CompetitionFilter) (*types.CompetitionsView, error)
	Venues(ctx context.Context, f types.VenueFilter) (*types.VenuesView, error)
	Competitors(ctx context.Context, f types.CompetitorFilter) (*types.CompetitorsView, error)
	DefaultRanks() types.RankRange
}

// drawFunc loads the view behind one chart and renders it.
type drawFunc func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error)

var charts = map[string]drawFunc{
	"dashboard-countries": func(ctx context.Context, v Views, _ *http.Request, p Palette) ([]byte, error) {
		view, err := v.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		return Bar("Top 10 Countries by Competitors", view.Countries, "country", "count", p)
	},
	"dashboard-types": func(ctx context.Context, v Views, _ *http.Request, p Palette) ([]byte, error) {
		view, err := v.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		return Pie("Competition Types", view.Types, "type", "count", p)
	},
	"dashboard-rankings": func(ctx context.Context, v Views, _ *http.Request, p Palette) ([]byte, error) {
		view, err := v.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		return Scatter("Rank vs Points", view.Rankings, "rank", "points", "Rank", "Points", p)
	},
	"competitions-categories": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := v.Competitions(ctx, params.CompetitionFilter(r))
		if err != nil {
			return nil, err
		}
		return Bar("Competitions by Category", view.ByCategory, "category_name", "count", p)
	},
	"competitions-genders": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := v.Competitions(ctx, params.CompetitionFilter(r))
		if err != nil {
			return nil, err
		}
		return Pie("Competitions by Gender", view.ByGender, "gender", "count", p)
	},
	"venues-countries": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := v.Venues(ctx, params.VenueFilter(r))
		if err != nil {
			return nil, err
		}
		return Bar("Venues by Country", view.ByCountry, "country_name", "count", p)
	},
	"venues-complexes": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := v.Venues(ctx, params.VenueFilter(r))
		if err != nil {
			return nil, err
		}
		return Bar("Venues by Complex", view.ByComplex, "complex_name", "count", p)
	},
	"competitors-scatter": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := competitors(ctx, v, r)
		if err != nil {
			return nil, err
		}
		return Scatter("Rank vs Points", view.Result.Table, "rank", "points", "Rank", "Points", p)
	},
	"competitors-movement": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := competitors(ctx, v, r)
		if err != nil {
			return nil, err
		}
		return Pie("Rank Movement", view.Movement, "movement_type", "count", p)
	},
	"competitors-top": func(ctx context.Context, v Views, r *http.Request, p Palette) ([]byte, error) {
		view, err := competitors(ctx, v, r)
		if err != nil {
			return nil, err
		}
		return Bar("Top 10 by Points", view.TopPoints, "name", "points", p)
	},
}

// Names lists the chart names served under /charts, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(charts))
}

func competitors(ctx context.Context, v Views, r *http.Request) (*types.CompetitorsView, error) {
	f, err := params.CompetitorFilter(r, v.DefaultRanks())
	if err != nil {
		return nil, err
	}
	return v.Competitors(ctx, f)
}

// Handler serves chart images.
type Handler struct {
	views   Views
	palette Palette
}

// NewHandler creates a chart handler drawing with p.
func NewHandler(views Views, p Palette) *Handler {
	return &Handler{views: views, palette: p}
}

// Register attaches GET /charts/{name}. A trailing ".png" on name is optional.
func (h *Handler) Register(r chi.Router) {
	r.Get("/charts/{name}", h.HandleChart)
}

// HandleChart renders the named chart for the filters in the query string.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".png")
	draw, ok := charts[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	start := time.Now()
	img, err := draw(r.Context(), h.views, r, h.palette)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Get().Error(r.Context(), "chart render failed",
				logger.String("chart", name),
				logger.Error(err),
			)
			metrics.RecordErrorByComponent("chart", "render")
		}
		http.Error(w, err.Error(), status)
		return
	}
	metrics.RecordChartRender(name, float64(time.Since(start).Milliseconds()))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidFilter), errors.Is(err, params.ErrBadParam):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
