package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/internal/validation"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Dashboard returns the headline metrics and the three overview tables.
func (s *Service) Dashboard(ctx context.Context) (*types.DashboardView, error) {
	summary, err := s.runAll(ctx, query.Summary)
	if err != nil {
		return nil, err
	}
	charts, err := s.runAll(ctx, query.DashboardCharts)
	if err != nil {
		return nil, err
	}

	return &types.DashboardView{
		Summary: types.Summary{
			TotalCompetitors: summary[0].Int(0, "count"),
			Countries:        summary[1].Int(0, "count"),
			HighestPoints:    summary[2].Int(0, "max_points"),
		},
		Countries: charts[0],
		Types:     charts[1],
		Rankings:  charts[2],
	}, nil
}

// CompetitionFilters returns the selector values for the Competitions view.
func (s *Service) CompetitionFilters(ctx context.Context) (types.CompetitionOptions, error) {
	tables, err := s.runAll(ctx, query.CompetitionOptions)
	if err != nil {
		return types.CompetitionOptions{}, err
	}
	return types.CompetitionOptions{
		Categories: choices(tables[0]),
		Types:      choices(tables[1]),
		Genders:    choices(tables[2]),
	}, nil
}

// Competitions returns the filtered competitions table and its charts.
func (s *Service) Competitions(ctx context.Context, f types.CompetitionFilter) (*types.CompetitionsView, error) {
	f.Category = normalize(f.Category)
	f.Type = normalize(f.Type)
	f.Gender = normalize(f.Gender)
	if err := validation.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	opts, err := s.CompetitionFilters(ctx)
	if err != nil {
		return nil, err
	}
	st, err := query.CompetitionList(f)
	if err != nil {
		return nil, err
	}
	list, err := s.run(ctx, st)
	if err != nil {
		return nil, err
	}
	charts, err := s.runAll(ctx, query.CompetitionCharts)
	if err != nil {
		return nil, err
	}

	return &types.CompetitionsView{
		Filter:     f,
		Options:    opts,
		Result:     result(st.Name, list, "No competitions match the selected filters"),
		ByCategory: charts[0],
		ByGender:   charts[1],
	}, nil
}

// VenueFilters returns the selector values for the Venues view.
func (s *Service) VenueFilters(ctx context.Context) (types.VenueOptions, error) {
	st, err := query.VenueOptions()
	if err != nil {
		return types.VenueOptions{}, err
	}
	t, err := s.run(ctx, st)
	if err != nil {
		return types.VenueOptions{}, err
	}
	return types.VenueOptions{Countries: choices(t)}, nil
}

// Venues returns the filtered venues table and its charts.
func (s *Service) Venues(ctx context.Context, f types.VenueFilter) (*types.VenuesView, error) {
	f.Country = normalize(f.Country)
	if err := validation.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	opts, err := s.VenueFilters(ctx)
	if err != nil {
		return nil, err
	}
	st, err := query.VenueList(f)
	if err != nil {
		return nil, err
	}
	list, err := s.run(ctx, st)
	if err != nil {
		return nil, err
	}
	charts, err := s.runAll(ctx, query.VenueCharts)
	if err != nil {
		return nil, err
	}

	return &types.VenuesView{
		Filter:    f,
		Options:   opts,
		Result:    result(st.Name, list, "No venues match the selected filters"),
		ByCountry: charts[0],
		ByComplex: charts[1],
	}, nil
}

// CompetitorFilters returns the selector values for the Competitors view.
func (s *Service) CompetitorFilters(ctx context.Context) (types.CompetitorOptions, error) {
	st, err := query.CompetitorOptions()
	if err != nil {
		return types.CompetitorOptions{}, err
	}
	t, err := s.run(ctx, st)
	if err != nil {
		return types.CompetitorOptions{}, err
	}
	return types.CompetitorOptions{
		Countries: choices(t),
		RankMin:   s.rankMin,
		RankMax:   s.rankMax,
	}, nil
}

// DefaultRanks returns the rank range used when a request carries none.
func (s *Service) DefaultRanks() types.RankRange { return s.defaultRanks }

// Competitors returns competitors inside the inclusive rank range, ordered
// by rank, with the movement distribution of those rows and the overall
// top ten by points.
func (s *Service) Competitors(ctx context.Context, f types.CompetitorFilter) (*types.CompetitorsView, error) {
	f.Country = normalize(f.Country)
	if err := s.validateRanks(f); err != nil {
		return nil, err
	}

	opts, err := s.CompetitorFilters(ctx)
	if err != nil {
		return nil, err
	}
	st, err := query.CompetitorList(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	list, err := s.run(ctx, st)
	if err != nil {
		return nil, err
	}
	topSt, err := query.CompetitorTopPoints()
	if err != nil {
		return nil, err
	}
	top, err := s.run(ctx, topSt)
	if err != nil {
		return nil, err
	}

	return &types.CompetitorsView{
		Filter:    f,
		Options:   opts,
		Result:    result(st.Name, list, "No competitors match the selected filters"),
		Movement:  movementDistribution(list),
		TopPoints: top,
	}, nil
}

func (s *Service) validateRanks(f types.CompetitorFilter) error {
	if err := validation.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	bounds := fmt.Sprintf("gte=%d,lte=%d", s.rankMin, s.rankMax)
	if err := validation.Var("low", f.Ranks.Low, bounds); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	if err := validation.Var("high", f.Ranks.High, bounds); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return nil
}

// Search runs a substring search. A blank term issues no query and returns
// a skipped view with no error.
func (s *Service) Search(ctx context.Context, req types.SearchRequest) (*types.SearchView, error) {
	if req.Kind == "" {
		req.Kind = types.SearchCompetitor
	}
	req.Term = strings.TrimSpace(req.Term)
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	view := &types.SearchView{Kind: req.Kind, Term: req.Term}
	if req.Term == "" {
		view.Skipped = true
		metrics.RecordSearchSkipped()
		return view, nil
	}
	if n := utf8.RuneCountInString(req.Term); n > s.maxSearchLength {
		return nil, fmt.Errorf("%w: term must be at most %d characters", ErrInvalidFilter, s.maxSearchLength)
	}

	st, err := query.Search(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	t, err := s.run(ctx, st)
	if err != nil {
		return nil, err
	}
	noun := strings.ToLower(string(req.Kind)) + "s"
	view.Result = result(st.Name, t, fmt.Sprintf("No %s found matching '%s'", noun, req.Term))

	if req.Kind == types.SearchCompetitor && !t.Empty() {
		details, err := s.competitorDetails(ctx, t.String(0, "competitor_id"))
		if err != nil {
			return nil, err
		}
		view.Details = details
	}

	s.log().Debug(ctx, "search executed",
		logger.String("kind", string(req.Kind)),
		logger.Int("matches", t.Len()))
	return view, nil
}

func (s *Service) competitorDetails(ctx context.Context, id string) (*types.CompetitorDetails, error) {
	st, err := query.CompetitorDetails(id)
	if err != nil {
		return nil, err
	}
	t, err := s.run(ctx, st)
	if err != nil {
		return nil, err
	}
	if t.Empty() {
		return nil, nil
	}
	return &types.CompetitorDetails{
		ID:                 t.String(0, "competitor_id"),
		Name:               t.String(0, "name"),
		Country:            t.String(0, "country"),
		CountryCode:        t.String(0, "country_code"),
		Abbreviation:       t.String(0, "abbreviation"),
		Rank:               t.Int(0, "rank"),
		Points:             t.Int(0, "points"),
		Movement:           t.Int(0, "movement"),
		CompetitionsPlayed: t.Int(0, "competitions_played"),
	}, nil
}

// About returns the static About page.
func (s *Service) About() *types.AboutView {
	return &types.AboutView{
		Title:    "About Tennis Analytics",
		Subtitle: "Game Analytics: Unlocking Tennis Data with SportRadar API",
		Version:  s.version,
		Sections: []types.AboutSection{
			{
				Heading: "Features",
				Items: []string{
					"Competition Analysis: explore tennis competitions, their categories, types, and gender distribution.",
					"Venue Exploration: discover tennis venues around the world and their associated complexes.",
					"Competitor Rankings: analyze player rankings, points, and performance metrics.",
					"Search: find specific competitors, competitions, or venues.",
				},
			},
			{
				Heading: "Data Sources",
				Body:    "All data is sourced from the SportRadar API and loaded into a local SQLite database, which this dashboard reads without modifying.",
			},
			{
				Heading: "Technologies Used",
				Items: []string{
					"Go: server, query builder and rendering",
					"SQLite: storage and querying",
					"go-chart: chart images",
					"excelize: spreadsheet export",
					"Prometheus: metrics",
				},
			},
		},
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// movementDistribution buckets the movement column of t into Up, Down and
// No Change, omitting empty buckets.
func movementDistribution(t *types.Table) *types.Table {
	var up, down, same int64
	for i := 0; i < t.Len(); i++ {
		switch m := t.Int(i, "movement"); {
		case m > 0:
			up++
		case m < 0:
			down++
		default:
			same++
		}
	}
	out := &types.Table{Columns: []string{"movement_type", "count"}, Rows: make([][]any, 0, 3)}
	for _, b := range []struct {
		name  string
		count int64
	}{{types.MovementUp, up}, {types.MovementDown, down}, {types.MovementNoChange, same}} {
		if b.count > 0 {
			out.Rows = append(out.Rows, []any{b.name, b.count})
		}
	}
	return out
}

// choices turns a single-column DISTINCT table into selector values,
// skipping NULLs.
func choices(t *types.Table) types.Choices {
	values := make([]string, 0, t.Len())
	for _, row := range t.Rows {
		if len(row) == 0 || row[0] == nil {
			continue
		}
		if v := types.FormatCell(row[0]); v != "" {
			values = append(values, v)
		}
	}
	return types.NewChoices(values)
}

// normalize maps a missing selector to All.
func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return types.All
	}
	return v
}
