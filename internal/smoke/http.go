package smoke

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// GetJSON performs a GET request and decodes a 200 response into v.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, v any) (int, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// runProbes issues probes concurrently using a worker pool. Outcomes are
// returned in probe order.
func runProbes(ctx context.Context, config *Config, probes []Probe, stats *Stats) []Outcome {
	logger.Get().Info(ctx, "running probes",
		logger.Int("probes", len(probes)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	outcomes := make([]Outcome, len(probes))

	var sent, ok, rejected, failed int64

	workers := max(config.Workers, 1)
	indexChan := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				out := runProbe(ctx, client, config.BaseURL, probes[idx])
				outcomes[idx] = out

				atomic.AddInt64(&sent, 1)
				switch {
				case out.Err != "":
					atomic.AddInt64(&failed, 1)
				case out.Status == StatusOK:
					atomic.AddInt64(&ok, 1)
				case out.Status == StatusBadRequest:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				if config.Verbose {
					logger.Get().Debug(ctx, "probe done",
						logger.String("url", out.Probe.URL("")),
						logger.Int("status", out.Status),
						logger.Int("count", out.Count),
						logger.Duration("latency", out.Latency))
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range probes {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.ProbesSent = int(atomic.LoadInt64(&sent))
	stats.ProbesOK = int(atomic.LoadInt64(&ok))
	stats.ProbesRejected = int(atomic.LoadInt64(&rejected))
	stats.ProbesFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "probes completed",
		logger.Int("sent", stats.ProbesSent),
		logger.Int("ok", stats.ProbesOK),
		logger.Int("rejected", stats.ProbesRejected),
		logger.Int("failed", stats.ProbesFailed))
	return outcomes
}

// viewBody covers the fields of every /api view the checks read.
type viewBody struct {
	Result  *types.Result `json:"result"`
	Skipped bool          `json:"skipped"`
}

// runProbe issues one probe.
func runProbe(ctx context.Context, client *HTTPClient, base string, p Probe) Outcome {
	out := Outcome{Probe: p}
	start := time.Now()
	var body viewBody
	status, err := client.GetJSON(ctx, p.URL(base), &body)
	out.Latency = time.Since(start)
	out.Status = status
	if err != nil {
		out.Err = err.Error()
		return out
	}
	out.Skipped = body.Skipped
	if body.Result != nil {
		out.Count = body.Result.Count
		out.Empty = body.Result.Empty
		if p.View == ViewCompetitors {
			out.Table = body.Result.Table
		}
	}
	return out
}
