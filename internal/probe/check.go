package probe

import (
	"context"
	"time"

	"github.com/hamed0406/sitechecker/internal/domain"
)

// DefaultBackoff is the fixed pause between a failed attempt and the next.
const DefaultBackoff = 100 * time.Millisecond

// Factory builds the single-attempt checker used for one target.
type Factory func(timeout time.Duration) (Checker, error)

// HTTPFactory builds an HTTPChecker whose client timeout is exactly timeout.
func HTTPFactory(timeout time.Duration) (Checker, error) {
	c, err := NewHTTPChecker(timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Policy is the per-target timeout and retry budget.
type Policy struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Check probes url over HTTP with retries+1 attempts at most.
func Check(ctx context.Context, url string, timeout time.Duration, retries int) domain.CheckOutcome {
	p := Policy{Timeout: timeout, Retries: retries, Backoff: DefaultBackoff}
	return p.Run(ctx, HTTPFactory, url)
}

// Run checks one target. Elapsed covers every attempt and backoff; the
// timestamp is taken once after the last attempt. A factory error yields a
// failed outcome with zero elapsed and no attempt made.
func (p Policy) Run(ctx context.Context, newChecker Factory, url string) domain.CheckOutcome {
	inner, err := newChecker(p.Timeout)
	if err != nil {
		return domain.Failed(url, "Failed to create HTTP client: "+err.Error(), 0, time.Now().UTC())
	}

	rc := &RetryChecker{Inner: inner, Attempts: p.Retries + 1, Backoff: p.Backoff}
	start := time.Now()
	res := rc.Check(ctx, url)
	elapsed := time.Since(start)
	at := time.Now().UTC()

	if res.Reached {
		return domain.Succeeded(url, uint16(res.StatusCode), elapsed, at)
	}
	return domain.Failed(url, res.Message, elapsed, at)
}
