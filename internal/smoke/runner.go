package smoke

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
)

// ErrChecksFailed is returned by Run when any check failed.
var ErrChecksFailed = errors.New("smoke checks failed")

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Run executes the complete smoke run and returns its report. The report is
// returned alongside ErrChecksFailed when a check fails.
func Run(ctx context.Context, config *Config) (*Report, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting courtside smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch selector options
	opts, err := fetchOptions(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("option retrieval failed: %w", err)
	}

	// Step 3: Generate probes
	probes := generateProbes(ctx, config, opts, stats)

	// Step 4: Run probes concurrently
	outcomes := runProbes(ctx, config, probes, stats)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("probe run interrupted: %w", err)
	}

	// Step 5: Verify
	violations := verifyOutcomes(ctx, outcomes, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	report := &Report{Stats: *stats, Violations: violations, Outcomes: outcomes}

	// Step 6: Save report
	if err := saveReport(ctx, config, report); err != nil {
		logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
	}

	displayFinalStats(stats)

	if len(violations) > 0 {
		return report, fmt.Errorf("%w: %d violations", ErrChecksFailed, len(violations))
	}
	logger.Get().Info(ctx, "smoke run completed successfully")
	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchOptions reads every selector list and the default rank range.
func fetchOptions(ctx context.Context, config *Config) (*Options, error) {
	client := newHTTPClient(config.Timeout)
	opts := &Options{}

	var competitors types.CompetitorsView
	for _, req := range []struct {
		path string
		into any
	}{
		{"/api/competitions/filters", &opts.Competitions},
		{"/api/venues/filters", &opts.Venues},
		{"/api/competitors/filters", &opts.Competitors},
		{"/api/competitors", &competitors},
	} {
		status, err := client.GetJSON(ctx, config.BaseURL+req.path, req.into)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req.path, err)
		}
		if status != StatusOK {
			return nil, fmt.Errorf("%s: status %d", req.path, status)
		}
	}
	opts.Ranks = competitors.Filter.Ranks

	logger.Get().Info(ctx, "options fetched",
		logger.Int("categories", len(opts.Competitions.Categories)),
		logger.Int("venueCountries", len(opts.Venues.Countries)),
		logger.Int("competitorCountries", len(opts.Competitors.Countries)),
		logger.Int("rankLow", opts.Ranks.Low),
		logger.Int("rankHigh", opts.Ranks.High))
	return opts, nil
}

// saveReport writes the report as indented JSON.
func saveReport(ctx context.Context, config *Config, report *Report) error {
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "smoke_report_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var okRate, probesPerSecond float64

	if stats.ProbesSent > 0 {
		okRate = float64(stats.ProbesOK) / float64(stats.ProbesSent) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		probesPerSecond = float64(stats.ProbesSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("probesGenerated", stats.ProbesGenerated),
		logger.Int("probesSent", stats.ProbesSent),
		logger.Int("probesOK", stats.ProbesOK),
		logger.Int("probesRejected", stats.ProbesRejected),
		logger.Int("probesFailed", stats.ProbesFailed),
		logger.Int("violations", stats.Violations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("okRate", okRate),
		logger.Float64("probesPerSecond", probesPerSecond))
}
