// Package api is the HTTP client for the remote speech-synthesis,
// transcription and chat-completion endpoints. All calls share one pooled
// connection, a bearer credential, bounded per-attempt timeouts, and a common
// retry loop with exponential backoff and a dedicated rate-limit recovery
// path.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production API endpoint prefix.
const DefaultBaseURL = "https://api.openai.com/v1"

// defaultRetryAfter is the wait applied to HTTP 429 responses that carry no
// Retry-After header.
const defaultRetryAfter = 60 * time.Second

const maxErrorDetailBytes = 4096

// Client issues requests against the remote audio API. One Client holds one
// reusable connection pool; create it once per run and share it across the
// file processor and batch orchestrator.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retries    int

	// sleep is replaced in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Options configures optional Client behavior. The zero value is valid.
type Options struct {
	// BaseURL overrides DefaultBaseURL (used by tests and proxies).
	BaseURL string

	// Retries bounds the attempts per call. Defaults to 3. Rate-limit waits
	// do not count against this budget.
	Retries int

	// HTTPClient overrides the default pooled client.
	HTTPClient *http.Client
}

// New creates a Client authenticating with the given bearer key.
func New(apiKey string, opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retries := opts.Retries
	if retries < 1 {
		retries = 3
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		retries:    retries,
		sleep:      sleepContext,
	}
}

// Close releases idle connections held by the client's pool.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// buildFunc constructs a fresh request for one attempt. A new request is
// needed per attempt because the body reader is consumed by each send.
type buildFunc func(ctx context.Context) (*http.Request, error)

// doWithRetry runs the per-call state machine: send, succeed on 200, wait and
// re-issue on 429 without consuming a retry slot, back off 2^(n-1) seconds on
// any other failure until the retry budget is spent.
func (c *Client) doWithRetry(ctx context.Context, operation string, timeout time.Duration, build buildFunc) ([]byte, error) {
	requestID := newRequestID()
	var lastErr error

	for attempt := 1; ; {
		log.Debug().
			Str("request_id", requestID).
			Str("operation", operation).
			Int("attempt", attempt).
			Int("retries", c.retries).
			Msg("Sending API request")

		body, err := c.doAttempt(ctx, timeout, build)
		if err == nil {
			return body, nil
		}

		var rateLimited *rateLimitError
		if errors.As(err, &rateLimited) {
			log.Warn().
				Str("request_id", requestID).
				Str("operation", operation).
				Dur("wait", rateLimited.wait).
				Msg("Rate limited, waiting before re-issuing")
			if sleepErr := c.sleep(ctx, rateLimited.wait); sleepErr != nil {
				return nil, sleepErr
			}
			continue // rate-limit recovery does not consume an attempt
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt == c.retries {
			break
		}

		backoff := time.Duration(1<<(attempt-1)) * time.Second
		log.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("API request failed, backing off before retry")
		if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
			return nil, sleepErr
		}
		attempt++
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", operation, c.retries, lastErr)
}

// doAttempt performs a single bounded request and classifies the outcome.
func (c *Client) doAttempt(ctx context.Context, timeout time.Duration, build buildFunc) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := build(attemptCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusTooManyRequests:
		return nil, &rateLimitError{wait: retryAfter(resp.Header)}
	default:
		detail := strings.TrimSpace(string(body))
		if len(detail) > maxErrorDetailBytes {
			detail = detail[:maxErrorDetailBytes]
		}
		if detail == "" {
			detail = resp.Status
		}
		return nil, &RequestError{Status: resp.StatusCode, Detail: detail}
	}
}

// retryAfter reads the server-suggested wait from a 429 response, falling
// back to defaultRetryAfter when the header is absent or malformed.
func retryAfter(h http.Header) time.Duration {
	value := h.Get("Retry-After")
	if value == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// newRequestID creates a random ID correlating the log lines of one call
// across its attempts.
func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// sleepContext waits for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
