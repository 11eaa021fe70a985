package smoke

import (
	"net/url"
	"time"

	"github.com/okian/courtside/internal/domain/types"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Rounds     int           // Times every probe is repeated
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for the JSON report
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Probe is one API request issued by the run.
type Probe struct {
	ID    string     `json:"id"`
	View  string     `json:"view"`
	Path  string     `json:"path"`
	Query url.Values `json:"query"`
	// Baseline marks the unfiltered request of a view.
	Baseline bool `json:"baseline"`
	// Ranks is set on competitor probes.
	Ranks *types.RankRange `json:"ranks,omitempty"`
}

// URL returns the probe target relative to base.
func (p Probe) URL(base string) string {
	if len(p.Query) == 0 {
		return base + p.Path
	}
	return base + p.Path + "?" + p.Query.Encode()
}

// Key identifies identical probes across rounds.
func (p Probe) Key() string {
	return p.Path + "?" + p.Query.Encode()
}

// Outcome is the answer to one probe.
type Outcome struct {
	Probe   Probe         `json:"probe"`
	Status  int           `json:"status"`
	Count   int           `json:"count"`
	Empty   bool          `json:"empty"`
	Skipped bool          `json:"skipped"`
	Latency time.Duration `json:"latency_ns"`
	Err     string        `json:"error,omitempty"`
	// Table is kept for competitor probes only.
	Table *types.Table `json:"-"`
}

// Violation is a failed check.
type Violation struct {
	Check  string `json:"check"`
	Probe  string `json:"probe"`
	Detail string `json:"detail"`
}

// Report is written to OutputFile at the end of a run.
type Report struct {
	Stats      Stats       `json:"stats"`
	Violations []Violation `json:"violations"`
	Outcomes   []Outcome   `json:"outcomes"`
}

// Stats holds run statistics.
type Stats struct {
	ProbesGenerated int           `json:"probes_generated"`
	ProbesSent      int           `json:"probes_sent"`
	ProbesOK        int           `json:"probes_ok"`
	ProbesRejected  int           `json:"probes_rejected"`
	ProbesFailed    int           `json:"probes_failed"`
	Violations      int           `json:"violations"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"duration_ns"`
}
