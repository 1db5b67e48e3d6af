// Package httpclient implements the outbound GET policy shared by every
// metadata call: a per-call timeout, bounded retries with exponential backoff
// on transient failures, request pacing and typed errors.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cinematch/cinematch/internal/metrics"
)

const maxBodyBytes = 8 << 20

// Config configures retry and timeout behavior.
type Config struct {
	Timeout time.Duration
	// Retries is the number of attempts allowed after the first one.
	Retries int
	// BackoffFactor scales the delay before retry n: factor * 2^(n-1).
	BackoffFactor time.Duration
	MaxBackoff    time.Duration
	// RetryStatuses are the HTTP statuses that are retried.
	RetryStatuses []int
	// RateLimit caps outbound requests per second; 0 disables pacing.
	RateLimit float64
}

// DefaultConfig returns the default outbound policy.
func DefaultConfig() Config {
	return Config{
		Timeout:       20 * time.Second,
		Retries:       5,
		BackoffFactor: time.Second,
		MaxBackoff:    2 * time.Minute,
		RetryStatuses: []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout},
	}
}

// Client performs JSON GET requests under a single retry policy.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a new Client. Zero-valued fields of cfg take their defaults,
// except Retries where 0 means no retries.
func New(cfg Config, logger zerolog.Logger) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = def.RetryStatuses
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With().Str("component", "httpclient").Logger(),
		sleep:      sleepContext,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// GetJSON fetches rawURL and decodes a 200 response body into out.
// endpoint is a short label used in logs and metrics; rawURL is never logged
// because it carries the API key.
func (c *Client) GetJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	start := time.Now()
	defer metrics.ObserveOutbound(endpoint, start)

	maxAttempts := c.cfg.Retries + 1
	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return c.contextError(endpoint, attempt, err)
			}
		}

		body, status, err := c.get(ctx, rawURL)
		metrics.RecordOutbound(endpoint, status)

		if err == nil && status == http.StatusOK {
			if jerr := json.Unmarshal(body, out); jerr != nil {
				fe := &FetchError{Kind: KindParse, Endpoint: endpoint, Attempts: attempt, Err: jerr}
				c.logger.Error().Err(fe).Str("endpoint", endpoint).Msg("Failed to decode response")
				return fe
			}
			if attempt > 1 {
				c.logger.Debug().Str("endpoint", endpoint).Int("attempt", attempt).Msg("Request succeeded after retry")
			}
			return nil
		}

		// The caller gave up; never retry past its deadline.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return c.contextError(endpoint, attempt, ctxErr)
		}

		fe := c.classify(endpoint, attempt, status, err)
		if !c.retryable(fe) || attempt >= maxAttempts {
			c.logger.Warn().
				Err(fe).
				Str("endpoint", endpoint).
				Int("attempts", attempt).
				Msg("Request failed")
			return fe
		}

		delay := c.backoff(attempt)
		metrics.OutboundRetries.WithLabelValues(endpoint).Inc()
		c.logger.Debug().
			Err(fe).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Int("maxAttempts", maxAttempts).
			Dur("nextRetryIn", delay).
			Msg("Transient failure, will retry")

		if err := c.sleep(ctx, delay); err != nil {
			return c.contextError(endpoint, attempt, err)
		}
	}
}

// get performs one attempt. status is 0 when no response was received.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", stripURL(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, stripURL(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) classify(endpoint string, attempt, status int, err error) *FetchError {
	fe := &FetchError{Endpoint: endpoint, Attempts: attempt, Err: err}
	switch {
	case err != nil && isTimeout(err):
		fe.Kind = KindTimeout
	case err != nil:
		fe.Kind = KindTransport
	case status == http.StatusNotFound:
		fe.Kind = KindNotFound
		fe.Status = status
	default:
		fe.Kind = KindHTTP
		fe.Status = status
	}
	return fe
}

func (c *Client) retryable(fe *FetchError) bool {
	switch fe.Kind {
	case KindTransport, KindTimeout:
		return true
	case KindHTTP:
		return slices.Contains(c.cfg.RetryStatuses, fe.Status)
	default:
		return false
	}
}

// backoff returns the delay before retry number attempt (1-based).
func (c *Client) backoff(attempt int) time.Duration {
	if c.cfg.BackoffFactor <= 0 {
		return 0
	}
	delay := c.cfg.BackoffFactor
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.cfg.MaxBackoff {
			return c.cfg.MaxBackoff
		}
	}
	return min(delay, c.cfg.MaxBackoff)
}

func (c *Client) contextError(endpoint string, attempt int, err error) *FetchError {
	kind := KindTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &FetchError{Kind: kind, Endpoint: endpoint, Attempts: attempt, Err: err}
}

// stripURL drops the request URL, and with it the API key, from err.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
