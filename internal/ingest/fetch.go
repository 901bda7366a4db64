package ingest

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vandash/vandash/internal/httputil"
	"github.com/vandash/vandash/internal/metrics"
)

// Default public locations of the source snapshots. The ETL itself only
// reads local files; Fetcher refreshes those local copies.
const (
	DefaultGeoJSONURL = "https://gist.githubusercontent.com/jbrobst/56c13bbbf9d97d187fea01ca62ea5112/raw/e388c4cae20aa53cb5090210a42ebb9b765c0a36/india_states.geojson"
)

// Fetcher downloads source snapshots over HTTP with exponential backoff.
// Rate limiting and server errors are retried; other failures are
// permanent.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: httputil.NewClient()}
}

// Fetch downloads one URL, retrying transient failures for up to two
// minutes.
func (f *Fetcher) Fetch(source, url string) ([]byte, error) {
	var body []byte
	start := time.Now()

	operation := func() error {
		resp, err := f.client.Get(url)
		if err != nil {
			metrics.FetchCalls.WithLabelValues(source, "error").Inc()
			return backoff.Permanent(fmt.Errorf("fetch %s: %w", source, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			metrics.FetchCalls.WithLabelValues(source, fmt.Sprint(resp.StatusCode)).Inc()
			return fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			metrics.FetchCalls.WithLabelValues(source, fmt.Sprint(resp.StatusCode)).Inc()
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", source, resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		metrics.FetchCalls.WithLabelValues(source, "200").Inc()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	metrics.FetchLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	return body, nil
}

// FetchTo downloads one URL into a file under dir, creating dir as needed.
func (f *Fetcher) FetchTo(source, url, dir, filename string) (string, error) {
	body, err := f.Fetch(source, url)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
