package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/repo"
)

// Store is an append-only outcome collection shared by all workers.
// Entries keep completion order.
type Store struct {
	mu      sync.Mutex
	results []domain.CheckOutcome
}

func New(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{results: make([]domain.CheckOutcome, 0, capacity)}
}

func (m *Store) Record(ctx context.Context, o domain.CheckOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, o)
	return nil
}

// Snapshot returns a copy of everything recorded so far. Callers take it
// once all writers are done.
func (m *Store) Snapshot(ctx context.Context) ([]domain.CheckOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CheckOutcome, len(m.results))
	copy(out, m.results)
	return out, nil
}

func (m *Store) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

var _ repo.ResultStore = (*Store)(nil)
