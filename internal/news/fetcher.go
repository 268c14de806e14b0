package news

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	userAgent = "ellux/1.0 (news client; github.com/pders01/ellux)"
	timeout   = 30 * time.Second
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}

// Fetcher performs rate-limited GET requests shared by every source.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher returns a fetcher allowing perMinute requests per minute. Zero
// or negative means unlimited.
func NewFetcher(perMinute int, reqTimeout time.Duration) *Fetcher {
	if reqTimeout <= 0 {
		reqTimeout = timeout
	}
	return &Fetcher{
		client:  &http.Client{Timeout: reqTimeout},
		limiter: NewLimiter(perMinute),
	}
}

// NewLimiter builds the limiter used for outgoing calls.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// Get waits for the limiter and issues the request. The caller closes the
// body of a successful response.
func (f *Fetcher) Get(ctx context.Context, url, accept string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", redact(url), err)
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, &StatusError{
			URL:        redact(url),
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp),
		}
	}
	return resp, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}
