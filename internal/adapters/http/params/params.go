// Package params reads view filters from HTTP query strings.
//
// The site, the JSON API and the chart endpoints accept the same query
// parameters, so a page URL can be reused for its charts and exports.
package params

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/courtside/internal/domain/types"
)

// ErrBadParam reports a query parameter that is not well formed.
var ErrBadParam = errors.New("bad query parameter")

// Query parameter names.
const (
	Category = "category"
	Type     = "type"
	Gender   = "gender"
	Country  = "country"
	RankLow  = "rank_low"
	RankHigh = "rank_high"
	Kind     = "kind"
	Term     = "q"
)

// CompetitionFilter reads category, type and gender.
func CompetitionFilter(r *http.Request) types.CompetitionFilter {
	q := r.URL.Query()
	return types.CompetitionFilter{
		Category: choice(q.Get(Category)),
		Type:     choice(q.Get(Type)),
		Gender:   choice(q.Get(Gender)),
	}
}

// VenueFilter reads country.
func VenueFilter(r *http.Request) types.VenueFilter {
	return types.VenueFilter{Country: choice(r.URL.Query().Get(Country))}
}

// CompetitorFilter reads country and the rank range. A missing bound takes
// its value from def; a non-integer bound is an error.
func CompetitorFilter(r *http.Request, def types.RankRange) (types.CompetitorFilter, error) {
	q := r.URL.Query()
	low, err := intParam(q.Get(RankLow), def.Low)
	if err != nil {
		return types.CompetitorFilter{}, fmt.Errorf("%w: %s: %w", ErrBadParam, RankLow, err)
	}
	high, err := intParam(q.Get(RankHigh), def.High)
	if err != nil {
		return types.CompetitorFilter{}, fmt.Errorf("%w: %s: %w", ErrBadParam, RankHigh, err)
	}
	return types.CompetitorFilter{
		Country: choice(q.Get(Country)),
		Ranks:   types.RankRange{Low: low, High: high},
	}, nil
}

// SearchRequest reads the kind and term.
func SearchRequest(r *http.Request) types.SearchRequest {
	q := r.URL.Query()
	return types.SearchRequest{
		Kind: types.SearchKind(strings.TrimSpace(q.Get(Kind))),
		Term: q.Get(Term),
	}
}

func choice(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return types.All
	}
	return v
}

func intParam(v string, def int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return n, nil
}
