// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/okian/courtside/internal/adapters/http/params"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/internal/validation"
	"github.com/okian/courtside/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Dashboard(ctx context.Context) (*types.DashboardView, error)

	CompetitionFilters(ctx context.Context) (types.CompetitionOptions, error)
	Competitions(ctx context.Context, f types.CompetitionFilter) (*types.CompetitionsView, error)

	VenueFilters(ctx context.Context) (types.VenueOptions, error)
	Venues(ctx context.Context, f types.VenueFilter) (*types.VenuesView, error)

	CompetitorFilters(ctx context.Context) (types.CompetitorOptions, error)
	Competitors(ctx context.Context, f types.CompetitorFilter) (*types.CompetitorsView, error)
	DefaultRanks() types.RankRange

	Search(ctx context.Context, req types.SearchRequest) (*types.SearchView, error)
	About() *types.AboutView
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	viewsHandler  *ViewsHandler
	exportHandler *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		viewsHandler:  NewViewsHandler(deps),
		exportHandler: NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", MetricsMiddleware(s.viewsHandler.HandleDashboard, "api_dashboard"))

		r.Get("/competitions", MetricsMiddleware(s.viewsHandler.HandleCompetitions, "api_competitions"))
		r.Get("/competitions/filters", MetricsMiddleware(s.viewsHandler.HandleCompetitionFilters, "api_competition_filters"))
		r.Get("/competitions/export.xlsx", MetricsMiddleware(s.exportHandler.HandleCompetitions, "api_competitions_export"))

		r.Get("/venues", MetricsMiddleware(s.viewsHandler.HandleVenues, "api_venues"))
		r.Get("/venues/filters", MetricsMiddleware(s.viewsHandler.HandleVenueFilters, "api_venue_filters"))
		r.Get("/venues/export.xlsx", MetricsMiddleware(s.exportHandler.HandleVenues, "api_venues_export"))

		r.Get("/competitors", MetricsMiddleware(s.viewsHandler.HandleCompetitors, "api_competitors"))
		r.Get("/competitors/filters", MetricsMiddleware(s.viewsHandler.HandleCompetitorFilters, "api_competitor_filters"))
		r.Get("/competitors/export.xlsx", MetricsMiddleware(s.exportHandler.HandleCompetitors, "api_competitors_export"))

		r.Get("/search", MetricsMiddleware(s.viewsHandler.HandleSearch, "api_search"))
		r.Get("/about", MetricsMiddleware(s.viewsHandler.HandleAbout, "api_about"))
	})

	logger.Get().Debug(ctx, "api routes registered")
}

type errorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// writeFailure maps a service error to its HTTP status and logs server-side
// failures.
func writeFailure(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, params.ErrBadParam),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		logger.Get().Error(ctx, "request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
