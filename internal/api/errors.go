package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout reports that a request attempt exceeded its deadline.
var ErrTimeout = errors.New("request timed out")

// RequestError is an API failure carrying the observed HTTP status and the
// response detail. The error returned after the retry budget is exhausted
// wraps the last RequestError seen.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API request failed: status=%d detail=%s", e.Status, e.Detail)
}

// rateLimitError is the internal signal for HTTP 429. It is never returned to
// callers: the retry loop consumes it and re-issues the request after the
// server-suggested wait.
type rateLimitError struct {
	wait time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited, server asked to wait %s", e.wait)
}
