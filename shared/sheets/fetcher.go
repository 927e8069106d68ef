package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"video-insights/shared/logging"

	"github.com/sony/gobreaker/v2"
)

const (
	maxDocumentBytes = 32 << 20
	failureThreshold = 3
	breakerCooldown  = time.Minute
)

// Fetcher downloads a spreadsheet document, short-circuiting a URL that keeps failing
type Fetcher struct {
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	maxBytes int64
}

func NewFetcher(name string, timeout time.Duration) *Fetcher {
	log := logging.Component("sheets")

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A cancelled refresh says nothing about the remote
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		breaker:  gobreaker.NewCircuitBreaker[[]byte](settings),
		maxBytes: maxDocumentBytes,
	}
}

// Fetch GETs url and returns the body. Non-2xx statuses and documents larger
// than the size cap are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", url, err)
		}
		if int64(len(body)) > f.maxBytes {
			return nil, fmt.Errorf("failed to fetch %s: document exceeds %d bytes", url, f.maxBytes)
		}
		return body, nil
	})
}
