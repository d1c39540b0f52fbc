package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/Alias1177/BotView/internal/metrics"
)

// Client is a wrapper for HTTP client with rate limiting
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:         rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// DoRequest performs an HTTP request with rate limiting and retries.
// 5xx responses and transport errors are retried; 4xx responses fail immediately.
// The caller closes the body of the returned response.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.send(ctx, req, true)
}

// DoOnce performs a rate-limited request exactly once. It is meant for requests
// that are not idempotent; every failure is returned to the caller as is.
func (c *Client) DoOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.send(ctx, req, false)
}

func (c *Client) send(ctx context.Context, req *http.Request, retry bool) (*http.Response, error) {
	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	defer func() {
		metrics.BotRequestLatency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	}()

	if !retry {
		return c.attempt(ctx, req, false)
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.attempt(ctx, req, true)
		return err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

// attempt sends req once. With retryable set, failures that must not be retried
// are wrapped in backoff.Permanent.
func (c *Client) attempt(ctx context.Context, req *http.Request, retryable bool) (*http.Response, error) {
	permanent := func(err error) error {
		if retryable {
			return backoff.Permanent(err)
		}
		return err
	}

	sent := req
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, permanent(err)
		}
		sent = req.Clone(ctx)
		sent.Body = body
	}

	resp, err := c.HTTPClient.Do(sent)
	if err != nil {
		metrics.BotRequests.WithLabelValues(req.Method, "error").Inc()
		return nil, err
	}
	metrics.BotRequests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(statusErr)
		}
		return nil, statusErr
	}
	return resp, nil
}

// HTTPStatusError represents an error due to a non-2xx HTTP status code
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	msg := "unexpected status code: " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}
