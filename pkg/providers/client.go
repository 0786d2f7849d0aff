// Package providers holds the HTTP plumbing shared by the third-party data
// provider clients in its sub-packages. Each sub-package owns its provider's
// wire schema and translates responses into this module's own types.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a single provider call when none is configured.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent = "go-destinations/1.0"
	maxResponseBytes = 8 << 20
)

// Request outcomes reported to a RequestObserver.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// RequestObserver is notified once per provider call.
type RequestObserver interface {
	ProviderRequest(provider, outcome string, duration time.Duration)
}

// ClientConfig holds configuration for the shared JSON client.
type ClientConfig struct {
	// Timeout bounds every call, including reading the body.
	Timeout   time.Duration
	UserAgent string
}

// Client performs JSON GET requests against provider APIs.
// Thread-safe for concurrent use.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	observer   RequestObserver
	logger     zerolog.Logger
}

// NewClient creates a Client. A nil httpClient uses a fresh http.Client.
func NewClient(cfg ClientConfig, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		logger:     logger.With().Str("component", "ProviderClient").Logger(),
	}
}

// SetObserver registers an observer for per-request outcomes.
func (c *Client) SetObserver(observer RequestObserver) {
	c.observer = observer
}

// HTTPClient exposes the underlying client, mainly so tests can mock transport.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// GetJSON issues a GET to url with the given headers and decodes the JSON body
// into out. Non-2xx responses yield a *StatusError. HTTP 429, or any response
// whose rate-limit header reports zero remaining, is marked RateLimited.
func (c *Client) GetJSON(ctx context.Context, provider, url string, headers http.Header, out any) (err error) {
	start := time.Now()
	defer func() { c.observe(provider, err, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", provider, err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		statusErr := &StatusError{
			Provider:    provider,
			StatusCode:  resp.StatusCode,
			Status:      resp.Status,
			RateLimited: resp.StatusCode == http.StatusTooManyRequests || rateLimitExhausted(resp.Header),
		}
		if statusErr.RateLimited {
			c.logger.Warn().Str("provider", provider).Int("status", resp.StatusCode).Msg("Provider rate limit hit.")
		}
		return statusErr
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%s: malformed response: %w", provider, err)
	}
	return nil
}

func (c *Client) observe(provider string, err error, d time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, ErrRateLimited):
		outcome = OutcomeRateLimited
	default:
		outcome = OutcomeError
	}
	c.observer.ProviderRequest(provider, outcome, d)
}

// rateLimitExhausted checks the common remaining-quota headers.
func rateLimitExhausted(h http.Header) bool {
	for _, name := range []string{"X-Ratelimit-Remaining", "X-Ratelimit-Requests-Remaining"} {
		if v := h.Get(name); v == "0" {
			return true
		}
	}
	return false
}
