package query

import (
	"fmt"
	"strings"

	"github.com/okian/courtside/internal/domain/types"
)

// Row caps used by the chart tables.
const (
	TopLimit      = 10
	RankingSample = 50
)

// Statement names, one per view shape.
const (
	SummaryCompetitors   = "summary.competitors"
	SummaryCountries     = "summary.countries"
	SummaryHighestPoints = "summary.highest_points"

	DashboardCountries = "dashboard.countries"
	DashboardTypes     = "dashboard.types"
	DashboardRankings  = "dashboard.rankings"

	OptionCategories          = "options.categories"
	OptionCompetitionTypes    = "options.competition_types"
	OptionGenders             = "options.genders"
	OptionVenueCountries      = "options.venue_countries"
	OptionCompetitorCountries = "options.competitor_countries"

	CompetitionsList       = "competitions.list"
	CompetitionsByCategory = "competitions.by_category"
	CompetitionsByGender   = "competitions.by_gender"

	VenuesList      = "venues.list"
	VenuesByCountry = "venues.by_country"
	VenuesByComplex = "venues.by_complex"

	CompetitorsList      = "competitors.list"
	CompetitorsTopPoints = "competitors.top_points"

	SearchCompetitors       = "search.competitor"
	SearchCompetitions      = "search.competition"
	SearchVenues            = "search.venue"
	SearchCompetitorDetails = "search.competitor_details"
)

const (
	fromCompetitions = `FROM Competitions c JOIN Categories cat ON c.category_id = cat.category_id`
	fromVenues       = `FROM Venues v JOIN Complexes c ON v.complex_id = c.complex_id`
	fromCompetitors  = `FROM Competitors c JOIN Competitor_Rankings cr ON c.competitor_id = cr.competitor_id`
)

// Summary returns the three headline aggregate statements.
func Summary() ([]Statement, error) {
	return buildAll(
		New(SummaryCompetitors, `SELECT COUNT(*) AS count FROM Competitors`),
		New(SummaryCountries, `SELECT COUNT(DISTINCT country) AS count FROM Competitors`),
		New(SummaryHighestPoints, `SELECT MAX(points) AS max_points FROM Competitor_Rankings`),
	)
}

// DashboardCharts returns the competitors-per-country, competition type and
// rank-vs-points statements, in that order.
func DashboardCharts() ([]Statement, error) {
	return buildAll(
		New(DashboardCountries, `SELECT country, COUNT(*) AS count FROM Competitors`).
			GroupBy("country").OrderBy("count DESC", "country").Limit(TopLimit),
		New(DashboardTypes, `SELECT type, COUNT(*) AS count FROM Competitions`).
			GroupBy("type").OrderBy("type"),
		New(DashboardRankings, `SELECT rank, points FROM Competitor_Rankings`).
			OrderBy("rank").Limit(RankingSample),
	)
}

// CompetitionOptions returns the category, type and gender option statements.
func CompetitionOptions() ([]Statement, error) {
	return buildAll(
		New(OptionCategories, `SELECT DISTINCT category_name FROM Categories`).OrderBy("category_name"),
		New(OptionCompetitionTypes, `SELECT DISTINCT type FROM Competitions`).OrderBy("type"),
		New(OptionGenders, `SELECT DISTINCT gender FROM Competitions`).OrderBy("gender"),
	)
}

// CompetitionList filters competitions by category, type and gender.
func CompetitionList(f types.CompetitionFilter) (Statement, error) {
	return New(CompetitionsList,
		`SELECT c.competition_id, c.competition_name, cat.category_name, c.type, c.gender `+fromCompetitions).
		Where(
			Equal{Column: "cat.category_name", Value: f.Category},
			Equal{Column: "c.type", Value: f.Type},
			Equal{Column: "c.gender", Value: f.Gender},
		).
		OrderBy("c.competition_id").
		Build()
}

// CompetitionCharts returns the per-category and per-gender statements.
func CompetitionCharts() ([]Statement, error) {
	return buildAll(
		New(CompetitionsByCategory, `SELECT cat.category_name, COUNT(c.competition_id) AS count `+fromCompetitions).
			GroupBy("cat.category_name").OrderBy("count DESC", "cat.category_name").Limit(TopLimit),
		New(CompetitionsByGender, `SELECT gender, COUNT(*) AS count FROM Competitions`).
			GroupBy("gender").OrderBy("gender"),
	)
}

// VenueOptions returns the venue country option statement.
func VenueOptions() (Statement, error) {
	return New(OptionVenueCountries, `SELECT DISTINCT country_name FROM Venues`).OrderBy("country_name").Build()
}

// VenueList filters venues by country.
func VenueList(f types.VenueFilter) (Statement, error) {
	return New(VenuesList,
		`SELECT v.venue_id, v.venue_name, v.city_name, v.country_name, c.complex_name, v.timezone `+fromVenues).
		Where(Equal{Column: "v.country_name", Value: f.Country}).
		OrderBy("v.venue_id").
		Build()
}

// VenueCharts returns the per-country and per-complex statements.
func VenueCharts() ([]Statement, error) {
	return buildAll(
		New(VenuesByCountry, `SELECT country_name, COUNT(*) AS count FROM Venues`).
			GroupBy("country_name").OrderBy("count DESC", "country_name").Limit(TopLimit),
		New(VenuesByComplex, `SELECT c.complex_name, COUNT(v.venue_id) AS count `+fromVenues).
			GroupBy("c.complex_name").OrderBy("count DESC", "c.complex_name").Limit(TopLimit),
	)
}

// CompetitorOptions returns the competitor country option statement.
func CompetitorOptions() (Statement, error) {
	return New(OptionCompetitorCountries, `SELECT DISTINCT country FROM Competitors`).OrderBy("country").Build()
}

// CompetitorList filters ranked competitors by inclusive rank range and
// country, ordered by ascending rank.
func CompetitorList(f types.CompetitorFilter) (Statement, error) {
	return New(CompetitorsList,
		`SELECT c.name, c.country, c.country_code, cr.rank, cr.points, cr.movement, cr.competitions_played `+fromCompetitors).
		Where(
			Between{Column: "cr.rank", Low: f.Ranks.Low, High: f.Ranks.High},
			Equal{Column: "c.country", Value: f.Country},
		).
		OrderBy("cr.rank").
		Build()
}

// CompetitorTopPoints returns the ten highest-scoring competitors.
func CompetitorTopPoints() (Statement, error) {
	return New(CompetitorsTopPoints, `SELECT c.name, c.country, cr.rank, cr.points `+fromCompetitors).
		OrderBy("cr.points DESC", "cr.rank").
		Limit(TopLimit).
		Build()
}

// Search returns the substring search statement for kind. A blank term is
// rejected so that a search can never degrade into a full scan.
func Search(req types.SearchRequest) (Statement, error) {
	if strings.TrimSpace(req.Term) == "" {
		return Statement{}, ErrEmptyTerm
	}
	switch req.Kind {
	case types.SearchCompetitor:
		return New(SearchCompetitors, `SELECT c.competitor_id, c.name, c.country, cr.rank, cr.points `+fromCompetitors).
			Where(Contains{Columns: []string{"c.name"}, Term: req.Term}).
			OrderBy("cr.rank").
			Build()
	case types.SearchCompetition:
		return New(SearchCompetitions, `SELECT c.competition_name, cat.category_name, c.type, c.gender `+fromCompetitions).
			Where(Contains{Columns: []string{"c.competition_name"}, Term: req.Term}).
			OrderBy("c.competition_name").
			Build()
	case types.SearchVenue:
		return New(SearchVenues, `SELECT v.venue_name, v.city_name, v.country_name, c.complex_name `+fromVenues).
			Where(Contains{Columns: []string{"v.venue_name", "v.city_name"}, Term: req.Term}).
			OrderBy("v.venue_name").
			Build()
	default:
		return Statement{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
}

// CompetitorDetails looks a single competitor up by id.
func CompetitorDetails(competitorID string) (Statement, error) {
	if strings.TrimSpace(competitorID) == "" {
		return Statement{}, fmt.Errorf("%w: competitor id", ErrEmptyTerm)
	}
	return New(SearchCompetitorDetails,
		`SELECT c.competitor_id, c.name, c.country, c.country_code, c.abbreviation, `+
			`cr.rank, cr.points, cr.movement, cr.competitions_played `+fromCompetitors).
		Where(Equal{Column: "c.competitor_id", Value: competitorID}).
		Build()
}

func buildAll(builders ...*Builder) ([]Statement, error) {
	out := make([]Statement, len(builders))
	for i, b := range builders {
		st, err := b.Build()
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}
