package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrInvalidTimeout = errors.New("timeout must be positive")

// HTTPChecker issues a single GET per Check.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) (*HTTPChecker, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout %s: %w", timeout, ErrInvalidTimeout)
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}, nil
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Message: fmt.Sprintf("Request error: %v", err), Attempts: 1}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return CheckResult{Message: fmt.Sprintf("Request error: %v", err), Attempts: 1}
	}
	defer resp.Body.Close()

	// Any status counts: we measure reachability, not application health.
	return CheckResult{
		Reached:    true,
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		Attempts:   1,
	}
}
