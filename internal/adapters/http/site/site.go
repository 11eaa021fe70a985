// Package site serves the server-rendered dashboard pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/courtside/internal/adapters/http/params"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
)

// Error constants
var (
	ErrTemplate = errors.New("site template failed")
	ErrServe    = errors.New("site serve failed")
)

// Views is the subset of the service the pages render.
type Views interface {
	Dashboard(ctx context.Context) (*types.DashboardView, error)
	Competitions(ctx context.Context, f types.CompetitionFilter) (*types.CompetitionsView, error)
	Venues(ctx context.Context, f types.VenueFilter) (*types.VenuesView, error)
	Competitors(ctx context.Context, f types.CompetitorFilter) (*types.CompetitorsView, error)
	DefaultRanks() types.RankRange
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchView, error)
	About() *types.AboutView
}

// nav lists the sidebar entries in display order.
var nav = []navItem{
	{Path: "/", Label: "Dashboard"},
	{Path: "/competitions", Label: "Competitions"},
	{Path: "/venues", Label: "Venues"},
	{Path: "/competitors", Label: "Competitors"},
	{Path: "/search", Label: "Search"},
	{Path: "/about", Label: "About"},
}

var pages = []string{"dashboard", "competitions", "venues", "competitors", "search", "about", "error"}

type navItem struct {
	Path  string
	Label string
}

// page is the data every template receives.
type page struct {
	Title   string
	Active  string
	Nav     []navItem
	Version string
	// Query is the canonical query string of the request, reused by chart
	// images and export links so they show the same rows as the page.
	Query string
	Error string
	View  any
}

// Handler renders the pages.
type Handler struct {
	views     Views
	version   string
	maxSearch int
	templates map[string]*template.Template
}

// NewHandler parses the embedded templates. maxSearch is the longest search
// term the form accepts.
func NewHandler(views Views, maxSearch int) (*Handler, error) {
	h := &Handler{
		views:     views,
		version:   views.About().Version,
		maxSearch: maxSearch,
		templates: make(map[string]*template.Template, len(pages)),
	}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		h.templates[name] = t
	}
	return h, nil
}

// Register attaches the page routes and the stylesheet to r.
func (h *Handler) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", h.HandleDashboard)
	r.Get("/competitions", h.HandleCompetitions)
	r.Get("/venues", h.HandleVenues)
	r.Get("/competitors", h.HandleCompetitors)
	r.Get("/search", h.HandleSearch)
	r.Get("/about", h.HandleAbout)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleDashboard handles GET /.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", "Tennis Analytics Dashboard", view)
}

// HandleCompetitions handles GET /competitions.
func (h *Handler) HandleCompetitions(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Competitions(r.Context(), params.CompetitionFilter(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "competitions", "Tennis Competitions", view)
}

// HandleVenues handles GET /venues.
func (h *Handler) HandleVenues(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Venues(r.Context(), params.VenueFilter(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "venues", "Tennis Venues", view)
}

// HandleCompetitors handles GET /competitors.
func (h *Handler) HandleCompetitors(w http.ResponseWriter, r *http.Request) {
	f, err := params.CompetitorFilter(r, h.views.DefaultRanks())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.views.Competitors(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "competitors", "Tennis Competitors", view)
}

// searchPage adds the form limits to the search view.
type searchPage struct {
	*types.SearchView
	Kinds     []types.SearchKind
	MaxLength int
}

// HandleSearch handles GET /search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Search(r.Context(), params.SearchRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "search", "Search Tennis Data", searchPage{
		SearchView: view,
		Kinds:      []types.SearchKind{types.SearchCompetitor, types.SearchCompetition, types.SearchVenue},
		MaxLength:  h.maxSearch,
	})
}

// HandleAbout handles GET /about.
func (h *Handler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	view := h.views.About()
	h.render(w, r, http.StatusOK, "about", view.Title, view)
}

// fail renders the error page with the status matching err.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "Something went wrong while loading this page."
	switch {
	case errors.Is(err, service.ErrInvalidFilter), errors.Is(err, params.ErrBadParam):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, service.ErrNotStarted):
		status = http.StatusServiceUnavailable
		msg = "The analytics database is not available."
	default:
		logger.Get().Error(r.Context(), "page failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	h.renderPage(w, r, status, "error", page{Title: http.StatusText(status), Error: msg})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, view any) {
	h.renderPage(w, r, status, name, page{Title: title, View: view})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	p.Active = r.URL.Path
	p.Nav = nav
	p.Version = h.version
	p.Query = r.URL.Query().Encode()

	var buf bytes.Buffer
	if err := h.templates[name].Execute(&buf, p); err != nil {
		logger.Get().Error(r.Context(), "template execution failed",
			logger.String("page", name),
			logger.Error(fmt.Errorf("%w: %w", ErrTemplate, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Get().Debug(r.Context(), "page write failed", logger.Error(fmt.Errorf("%w: %w", ErrServe, err)))
	}
}

var funcs = template.FuncMap{
	"cell": types.FormatCell,
	"chart": func(name, query string) string {
		return withQuery("/charts/"+name, query)
	},
	"export": func(view, query string) string {
		return withQuery("/api/"+view+"/export.xlsx", query)
	},
	"lower": func(s types.SearchKind) string { return strings.ToLower(string(s)) },
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
