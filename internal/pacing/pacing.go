// Package pacing spaces successive synthesis requests so a whole-file run
// stays under the server-side rate limits for the selected model tier.
package pacing

import (
	"context"
	"strings"
	"time"
)

const (
	// StandardDelay is the inter-request delay for the standard tier.
	StandardDelay = 600 * time.Millisecond

	// HDDelay is the inter-request delay for the high-quality tier, which
	// has a far lower request quota.
	HDDelay = 6 * time.Second
)

// DelayFor returns the inter-request delay for a synthesis model tier.
func DelayFor(model string) time.Duration {
	if strings.HasSuffix(model, "-hd") {
		return HDDelay
	}
	return StandardDelay
}

// Limiter applies a fixed delay between chunk requests. The file processor
// calls Wait after every chunk except the last, so a run never ends with a
// trailing wait.
type Limiter struct {
	delay time.Duration
}

// NewLimiter creates a Limiter with the given delay. A delay of zero disables
// waiting entirely.
func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

// Delay reports the configured inter-request delay.
func (l *Limiter) Delay() time.Duration {
	return l.delay
}

// Wait pauses for the configured delay or until ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
