package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/sitechecker/internal/repo"
)

// Alerts keeps alert state for watch mode when no database is configured.
type Alerts struct {
	mu sync.Mutex
	m  map[string]repo.AlertRecord
}

func NewAlerts() *Alerts {
	return &Alerts{m: make(map[string]repo.AlertRecord)}
}

func (a *Alerts) Get(ctx context.Context, url string) (*repo.AlertRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.m[url]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (a *Alerts) Set(ctx context.Context, url string, lastState bool, sentAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	a.m[url] = repo.AlertRecord{URL: url, LastState: lastState, LastSentAt: ts}
	return nil
}

var _ repo.AlertStore = (*Alerts)(nil)
