package types

// All is the selector value that imposes no predicate on its column.
const All = "All"

// SearchKind selects which entity a free-text search targets.
type SearchKind string

// Search kinds.
const (
	SearchCompetitor  SearchKind = "Competitor"
	SearchCompetition SearchKind = "Competition"
	SearchVenue       SearchKind = "Venue"
)

// SearchKinds lists the kinds in selector order.
var SearchKinds = []SearchKind{SearchCompetitor, SearchCompetition, SearchVenue}

// CompetitionFilter holds the Competitions view selectors.
type CompetitionFilter struct {
	Category string `json:"category" validate:"max=200"`
	Type     string `json:"type" validate:"max=200"`
	Gender   string `json:"gender" validate:"max=200"`
}

// VenueFilter holds the Venues view selectors.
type VenueFilter struct {
	Country string `json:"country" validate:"max=200"`
}

// RankRange is an inclusive rank interval. It has no "All" state.
type RankRange struct {
	Low  int `json:"low" validate:"min=1"`
	High int `json:"high" validate:"min=1,gtefield=Low"`
}

// CompetitorFilter holds the Competitors view selectors.
type CompetitorFilter struct {
	Country string    `json:"country" validate:"max=200"`
	Ranks   RankRange `json:"ranks"`
}

// SearchRequest is a free-text search.
type SearchRequest struct {
	Kind SearchKind `json:"kind" validate:"oneof=Competitor Competition Venue"`
	Term string     `json:"term"`
}

// Choices is the option list of a selector; the first entry is always All.
type Choices []string

// NewChoices prepends All to values.
func NewChoices(values []string) Choices {
	out := make(Choices, 0, len(values)+1)
	out = append(out, All)
	return append(out, values...)
}

// CompetitionOptions lists selector values for the Competitions view.
type CompetitionOptions struct {
	Categories Choices `json:"categories"`
	Types      Choices `json:"types"`
	Genders    Choices `json:"genders"`
}

// VenueOptions lists selector values for the Venues view.
type VenueOptions struct {
	Countries Choices `json:"countries"`
}

// CompetitorOptions lists selector values for the Competitors view.
type CompetitorOptions struct {
	Countries Choices `json:"countries"`
	RankMin   int     `json:"rank_min"`
	RankMax   int     `json:"rank_max"`
}
