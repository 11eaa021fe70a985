package smoke

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
)

// View names as served under /api.
const (
	ViewCompetitions = "competitions"
	ViewVenues       = "venues"
	ViewCompetitors  = "competitors"
	ViewSearch       = "search"
)

// Options are the selector values the service offers, fetched from the
// /api/*/filters endpoints.
type Options struct {
	Competitions types.CompetitionOptions
	Venues       types.VenueOptions
	Competitors  types.CompetitorOptions
	Ranks        types.RankRange
}

// searchTerms are issued once per search kind. The blank term must come back
// skipped.
var searchTerms = []string{"a", "open", "O'", " "}

// generateProbes expands opts into the probe list, repeated config.Rounds times.
func generateProbes(ctx context.Context, config *Config, opts *Options, stats *Stats) []Probe {
	base := make([]Probe, 0, 64)

	base = append(base, newProbe(ViewCompetitions, nil, true))
	for _, axis := range []struct {
		param   string
		choices types.Choices
	}{
		{"category", opts.Competitions.Categories},
		{"type", opts.Competitions.Types},
		{"gender", opts.Competitions.Genders},
	} {
		for _, v := range selectable(axis.choices) {
			base = append(base, newProbe(ViewCompetitions, url.Values{axis.param: {v}}, false))
		}
	}

	base = append(base, newProbe(ViewVenues, nil, true))
	for _, v := range selectable(opts.Venues.Countries) {
		base = append(base, newProbe(ViewVenues, url.Values{"country": {v}}, false))
	}

	for _, rr := range rankRanges(opts) {
		p := newProbe(ViewCompetitors, rankQuery(rr), true)
		p.Ranks = &rr
		base = append(base, p)
	}
	for _, v := range selectable(opts.Competitors.Countries) {
		rr := opts.Ranks
		q := rankQuery(rr)
		q.Set("country", v)
		p := newProbe(ViewCompetitors, q, false)
		p.Ranks = &rr
		base = append(base, p)
	}

	for _, kind := range types.SearchKinds {
		for _, term := range searchTerms {
			base = append(base, newProbe(ViewSearch, url.Values{"kind": {string(kind)}, "q": {term}}, false))
		}
	}

	rounds := max(config.Rounds, 1)
	probes := make([]Probe, 0, len(base)*rounds)
	for i := 0; i < rounds; i++ {
		for _, p := range base {
			p.ID = uuid.NewString()
			probes = append(probes, p)
		}
	}

	stats.ProbesGenerated = len(probes)
	logger.Get().Info(ctx, "probes generated",
		logger.Int("distinct", len(base)),
		logger.Int("rounds", rounds),
		logger.Int("total", len(probes)))
	return probes
}

func newProbe(view string, q url.Values, baseline bool) Probe {
	path := "/api/" + view
	if q == nil {
		q = url.Values{}
	}
	return Probe{View: view, Path: path, Query: q, Baseline: baseline}
}

// selectable drops the leading All.
func selectable(c types.Choices) []string {
	if len(c) > 0 && c[0] == types.All {
		return c[1:]
	}
	return c
}

// rankRanges returns the default range, the full range and a narrow head.
func rankRanges(opts *Options) []types.RankRange {
	lo, hi := opts.Competitors.RankMin, opts.Competitors.RankMax
	head := types.RankRange{Low: lo, High: min(lo+9, hi)}
	out := []types.RankRange{opts.Ranks, {Low: lo, High: hi}}
	if head != opts.Ranks {
		out = append(out, head)
	}
	return out
}

func rankQuery(rr types.RankRange) url.Values {
	return url.Values{
		"rank_low":  {strconv.Itoa(rr.Low)},
		"rank_high": {strconv.Itoa(rr.High)},
	}
}
