package probe

import (
	"context"
	"time"
)

// RetryChecker repeats Inner until it reaches the target or runs out of
// attempts, sleeping Backoff between failed attempts.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last CheckResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target)
		last.Attempts = i + 1
		if last.Reached || i == attempts-1 {
			return last
		}
		if r.Backoff > 0 {
			t := time.NewTimer(r.Backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return last
			case <-t.C:
			}
		}
	}
	return last
}
