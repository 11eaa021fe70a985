package smoke

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/courtside/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends structured logs to both stdout and a file. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Courtside Smoke Tool
====================

A concurrent tool that exercises every filter of a running Courtside
service and checks the answers for consistency.

Checks:
  status       every probe answers 200
  empty        the empty flag agrees with the row count
  subset       a filtered count never exceeds the unfiltered count
  rank_bounds  competitor rows stay inside the requested rank range
  rank_order   competitor rows are ordered by rank
  stable       repeated probes return the same count
  skipped      blank search terms are skipped, others are not

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -rounds int
        Times every probe is repeated (default 3)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for the JSON report (default: smoke_report_TIMESTAMP.json)
  -log string
        Log file for run output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Log every probe
  -help
        Show this help message

Examples:
  # Run against a local service
  go run ./cmd/smoke

  # Hammer a staging host
  go run ./cmd/smoke -url http://staging:8080 -rounds 20 -workers 32
`)
}
