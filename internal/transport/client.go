package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultRetries = 2
	defaultBackoff = 250 * time.Millisecond
	defaultTimeout = 10 * time.Second
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetries sets how many times a failed request is re-attempted.
func WithRetries(retries int) ClientOption {
	return func(c *Client) {
		c.retries = retries
	}
}

// WithBackoff sets the initial backoff between attempts.
func WithBackoff(backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = backoff
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client sends outbound requests with a bounded retry loop. Connection
// failures and 5xx responses are retried with exponential backoff and
// jitter; any other response is returned to the caller for classification.
type Client struct {
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewClient creates a retrying transport client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		retries: defaultRetries,
		backoff: defaultBackoff,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

// Do sends the request, retrying up to the configured count. It returns a
// non-nil error only when every attempt failed at the transport level; a
// completed HTTP exchange is always returned as a Response, whatever the
// status code, except 5xx which is retried and returned once attempts are
// exhausted.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	var lastResp *Response

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			c.logger.Debug("retrying request",
				slog.String("url", req.URL),
				slog.Int("attempt", attempt+1),
			)
		}

		resp, err := c.attempt(ctx, req)
		if err != nil {
			lastErr = err
			lastResp = nil
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("server error (status %d)", resp.StatusCode)
			lastResp = resp
			continue
		}
		return resp, nil
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", req.URL, c.retries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	backoff := c.backoff << (attempt - 1)
	// up to 10% jitter so synchronized fan-outs don't retry in lockstep
	backoff += time.Duration(rand.Int64N(int64(backoff)/10 + 1))

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
