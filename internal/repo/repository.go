package repo

import (
	"context"
	"time"

	"github.com/hamed0406/sitechecker/internal/domain"
)

// Ports (interfaces). The pool only needs ResultStore; runs are archived
// through RunStore when a database is configured.
type ResultStore interface {
	Record(ctx context.Context, o domain.CheckOutcome) error
	Snapshot(ctx context.Context) ([]domain.CheckOutcome, error)
}

// Run is one finished pool execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []domain.CheckOutcome
}

type RunStore interface {
	SaveRun(ctx context.Context, r *Run) error
	LatestRun(ctx context.Context) (*Run, error)
}
