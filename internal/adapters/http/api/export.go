package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/courtside/internal/adapters/export"
	"github.com/okian/courtside/internal/adapters/http/params"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/metrics"
)

// ExportHandler serves filtered listings as XLSX workbooks. Each export takes
// the same query parameters as its view.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleCompetitions handles GET /api/competitions/export.xlsx.
func (h *ExportHandler) HandleCompetitions(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_competitions"
	view, err := h.deps.Competitions(r.Context(), params.CompetitionFilter(r))
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	h.write(w, r, op, "competitions", view.Result)
}

// HandleVenues handles GET /api/venues/export.xlsx.
func (h *ExportHandler) HandleVenues(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_venues"
	view, err := h.deps.Venues(r.Context(), params.VenueFilter(r))
	if err != nil {
		writeFailure(r.Context(), w, Wrap(op, err))
		return
	}
	h.write(w, r, op, "venues", view.Result)
}

// HandleCompetitors handles GET /api/competitors/export.xlsx.
func (h *ExportHandler) HandleCompetitors(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_competitors"
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
	h.write(w, r, op, "competitors", view.Result)
}

// write buffers the workbook so a failure can still produce a JSON error.
func (h *ExportHandler) write(w http.ResponseWriter, r *http.Request, op, name string, res *types.Result) {
	var buf bytes.Buffer
	if err := export.XLSX(&buf, name, res.Table); err != nil {
		writeFailure(r.Context(), w, WrapKind(op, ErrExport, err))
		return
	}
	metrics.RecordExport(name)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
