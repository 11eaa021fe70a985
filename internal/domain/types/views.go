package types

// Summary holds the dashboard headline metrics.
type Summary struct {
	TotalCompetitors int64 `json:"total_competitors"`
	Countries        int64 `json:"countries"`
	HighestPoints    int64 `json:"highest_points"`
}

// DashboardView is everything the Dashboard page renders.
type DashboardView struct {
	Summary   Summary `json:"summary"`
	Countries *Table  `json:"countries"`
	Types     *Table  `json:"types"`
	Rankings  *Table  `json:"rankings"`
}

// CompetitionsView is everything the Competitions page renders.
type CompetitionsView struct {
	Filter     CompetitionFilter  `json:"filter"`
	Options    CompetitionOptions `json:"options"`
	Result     *Result            `json:"result"`
	ByCategory *Table             `json:"by_category"`
	ByGender   *Table             `json:"by_gender"`
}

// VenuesView is everything the Venues page renders.
type VenuesView struct {
	Filter    VenueFilter  `json:"filter"`
	Options   VenueOptions `json:"options"`
	Result    *Result      `json:"result"`
	ByCountry *Table       `json:"by_country"`
	ByComplex *Table       `json:"by_complex"`
}

// Movement buckets for rank movement.
const (
	MovementUp       = "Up"
	MovementDown     = "Down"
	MovementNoChange = "No Change"
)

// CompetitorsView is everything the Competitors page renders.
type CompetitorsView struct {
	Filter    CompetitorFilter  `json:"filter"`
	Options   CompetitorOptions `json:"options"`
	Result    *Result           `json:"result"`
	Movement  *Table            `json:"movement"`
	TopPoints *Table            `json:"top_points"`
}

// CompetitorDetails is the profile shown for the first competitor search hit.
type CompetitorDetails struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Country            string `json:"country"`
	CountryCode        string `json:"country_code"`
	Abbreviation       string `json:"abbreviation"`
	Rank               int64  `json:"rank"`
	Points             int64  `json:"points"`
	Movement           int64  `json:"movement"`
	CompetitionsPlayed int64  `json:"competitions_played"`
}

// SearchView is everything the Search page renders. Skipped is set when the
// term was blank and no query was issued.
type SearchView struct {
	Kind    SearchKind         `json:"kind"`
	Term    string             `json:"term"`
	Skipped bool               `json:"skipped"`
	Result  *Result            `json:"result,omitempty"`
	Details *CompetitorDetails `json:"details,omitempty"`
}

// AboutSection is one heading of the About page.
type AboutSection struct {
	Heading string   `json:"heading"`
	Body    string   `json:"body,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// AboutView is the static About page.
type AboutView struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Sections []AboutSection `json:"sections"`
	Version  string         `json:"version"`
}
