package api

import (
	"net/http"

	"github.com/okian/courtside/internal/adapters/http/params"
)

// ViewsHandler serves the page views as JSON.
type ViewsHandler struct {
	deps Dependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps Dependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

// HandleDashboard handles GET /api/dashboard.
func (h *ViewsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	view, err := h.deps.Dashboard(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCompetitionFilters handles GET /api/competitions/filters.
func (h *ViewsHandler) HandleCompetitionFilters(w http.ResponseWriter, r *http.Request) {
	const op = "api.competition_filters"
	opts, err := h.deps.CompetitionFilters(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// HandleCompetitions handles GET /api/competitions?category=&type=&gender=.
func (h *ViewsHandler) HandleCompetitions(w http.ResponseWriter, r *http.Request) {
	const op = "api.competitions"
	view, err := h.deps.Competitions(r.Context(), params.CompetitionFilter(r))
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleVenueFilters handles GET /api/venues/filters.
func (h *ViewsHandler) HandleVenueFilters(w http.ResponseWriter, r *http.Request) {
	const op = "api.venue_filters"
	opts, err := h.deps.VenueFilters(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// HandleVenues handles GET /api/venues?country=.
func (h *ViewsHandler) HandleVenues(w http.ResponseWriter, r *http.Request) {
	const op = "api.venues"
	view, err := h.deps.Venues(r.Context(), params.VenueFilter(r))
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCompetitorFilters handles GET /api/competitors/filters.
func (h *ViewsHandler) HandleCompetitorFilters(w http.ResponseWriter, r *http.Request) {
	const op = "api.competitor_filters"
	opts, err := h.deps.CompetitorFilters(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// HandleCompetitors handles GET /api/competitors?country=&rank_low=&rank_high=.
func (h *ViewsHandler) HandleCompetitors(w http.ResponseWriter, r *http.Request) {
	const op = "api.competitors"
	f, err := params.CompetitorFilter(r, h.deps.DefaultRanks())
	if err != nil {
		writeFailure(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.Competitors(r.Context(), f)
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSearch handles GET /api/search?kind=&q=. A blank q answers with
// skipped set rather than an error.
func (h *ViewsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	view, err := h.deps.Search(r.Context(), params.SearchRequest(r))
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleAbout handles GET /api/about.
func (h *ViewsHandler) HandleAbout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.About())
}
