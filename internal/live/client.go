// Package live fetches observed vehicle positions from an HTTP endpoint.
// When the endpoint yields data, it takes precedence over simulation for
// that tick; any failure or empty result means the caller falls back.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/transit"
	"github.com/sethvargo/go-retry"
)

const (
	baseDelay   = 1 * time.Second
	maxDelay    = 5 * time.Second
	maxAttempts = 3
)

// StatusError is a non-2xx response. 5xx are transient and retried; 4xx
// are permanent and fail immediately.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("live positions: HTTP %d", e.Code)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Code >= 500
}

// Client polls the live position endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	base       time.Duration
	cap        time.Duration
	attempts   uint64
}

// NewClient returns a client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		base:     baseDelay,
		cap:      maxDelay,
		attempts: maxAttempts,
	}
}

// Fetch retrieves the current observed positions, retrying transient
// failures with capped exponential backoff and jitter. A permanent (4xx)
// response fails without retry.
func (c *Client) Fetch(ctx context.Context) ([]transit.LiveVehicle, error) {
	backoff := retry.NewExponential(c.base)
	backoff = retry.WithCappedDuration(c.cap, backoff)
	backoff = retry.WithJitterPercent(20, backoff)
	backoff = retry.WithMaxRetries(c.attempts-1, backoff)

	var vehicles []transit.LiveVehicle
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		vs, err := c.fetchOnce(ctx)
		if err != nil {
			if se, ok := err.(*StatusError); ok && !se.Transient() {
				return err // 4xx: fall back immediately
			}
			return retry.RetryableError(err)
		}
		vehicles = vs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *Client) fetchOnce(ctx context.Context) ([]transit.LiveVehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var vehicles []transit.LiveVehicle
	if err := json.NewDecoder(resp.Body).Decode(&vehicles); err != nil {
		return nil, fmt.Errorf("decode live positions: %w", err)
	}
	return vehicles, nil
}
