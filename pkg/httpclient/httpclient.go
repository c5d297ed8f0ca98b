// Package httpclient wraps net/http with the bounded retry policy shared
// by all remote-API skills: transient failures (408/429/5xx and network
// errors) are retried with exponential backoff and jitter, a
// server-specified Retry-After wait is honored, and authentication
// failures abort immediately.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/Dianel555/DSkills/pkg/logger"
)

// DefaultAttempts is the retry budget used when no option overrides it.
const DefaultAttempts = 3

var retryableStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
	RetryAfter time.Duration // zero when the server sent no usable Retry-After
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	if body == "" {
		return e.Status
	}
	return e.Status + ": " + body
}

// IsRetryable reports whether the error is a transient failure worth
// retrying: a network error or a retryable HTTP status.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatuses[statusErr.StatusCode]
	}
	// Anything that never produced a response (DNS, connect, timeout)
	// is worth another attempt.
	return err != nil
}

// IsAuthError reports whether the error is an authentication failure
// (401/403), which must never be retried.
func IsAuthError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized ||
			statusErr.StatusCode == http.StatusForbidden
	}
	return false
}

// Client issues HTTP requests with the shared retry policy.
type Client struct {
	httpClient   *http.Client
	attempts     uint
	initialDelay time.Duration
	maxDelay     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAttempts sets the maximum number of attempts (including the first).
func WithAttempts(attempts uint) Option {
	return func(c *Client) {
		c.attempts = attempts
	}
}

// WithBackoff sets the initial and maximum backoff delays.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.initialDelay = initial
		c.maxDelay = max
	}
}

// WithHTTPClient replaces the underlying http.Client, preserving its
// timeout unless WithTimeout is also given.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Client with the default retry policy.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 120 * time.Second},
		attempts:     DefaultAttempts,
		initialDelay: time.Second,
		maxDelay:     8 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends a JSON body and decodes a JSON response into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers http.Header, body, out any) error {
	data, err := c.do(ctx, http.MethodPost, url, headers, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "failed to decode response")
}

// GetJSON issues a GET request and decodes a JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers http.Header, out any) error {
	data, err := c.do(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "failed to decode response")
}

// PostText sends a JSON body and returns the raw response body. Used for
// endpoints that stream server-sent events.
func (c *Client) PostText(ctx context.Context, url string, headers http.Header, body any) (string, error) {
	data, err := c.do(ctx, http.MethodPost, url, headers, body)
	return string(data), err
}

func (c *Client) do(ctx context.Context, method, url string, headers http.Header, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
	}

	var responseBody []byte
	err := retry.Do(
		func() error {
			var attemptErr error
			responseBody, attemptErr = c.attempt(ctx, method, url, headers, payload)
			return attemptErr
		},
		retry.RetryIf(IsRetryable),
		retry.Attempts(c.attempts),
		retry.Delay(c.initialDelay),
		retry.MaxDelay(c.maxDelay),
		retry.DelayType(c.delayFor),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("attempt", n+1).
				WithField("max_attempts", c.attempts).
				Warn("retrying HTTP request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return responseBody, nil
}

// delayFor honors a server-specified Retry-After and otherwise falls
// back to exponential backoff with jitter.
func (c *Client) delayFor(n uint, err error, cfg *retry.Config) time.Duration {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > 0 {
		return statusErr.RetryAfter
	}
	return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, cfg)
}

func (c *Client) attempt(ctx context.Context, method, url string, headers http.Header, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(data),
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return data, nil
}

// ParseRetryAfter interprets a Retry-After header as either a number of
// seconds or an HTTP date. It returns zero when the header is absent or
// unparseable.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	when, err := http.ParseTime(header)
	if err != nil {
		return 0
	}
	delay := when.Sub(now)
	if delay < 0 {
		return 0
	}
	return delay
}
