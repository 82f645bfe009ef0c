package probe

import "context"

// CheckResult is the result of one or more attempts against a target.
//
// Fields:
//   - Reached: the target answered with an HTTP response, whatever the status.
//   - StatusCode: HTTP status code when Reached; 0 for transport errors.
//   - Message: response status line, or the transport error text.
//   - Attempts: how many requests were issued to produce this result.
type CheckResult struct {
	Reached    bool
	StatusCode int
	Message    string
	Attempts   int
}

// Checker performs a check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
