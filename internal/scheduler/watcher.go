package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/repo"
)

// RunHandler is called with every finished run, in order.
type RunHandler func(ctx context.Context, r *repo.Run)

// Watcher repeats a pool run over the same targets.
type Watcher struct {
	Logger   *zap.Logger
	Pool     *Pool
	Targets  []domain.Target
	Interval time.Duration
	OnRun    RunHandler
}

func NewWatcher(logger *zap.Logger, pool *Pool, targets []domain.Target, interval time.Duration, onRun RunHandler) *Watcher {
	if interval < 0 {
		interval = 0
	}
	return &Watcher{
		Logger:   logger,
		Pool:     pool,
		Targets:  targets,
		Interval: interval,
		OnRun:    onRun,
	}
}

// Run does an immediate pass, then one per tick until ctx is cancelled.
// With a zero Interval it runs exactly once.
func (w *Watcher) Run(ctx context.Context) {
	w.RunOnce(ctx)
	if w.Interval == 0 {
		return
	}

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("watcher_stopped")
			return
		case <-t.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs the pool once and hands the result to OnRun. A run cut
// short by ctx is discarded: its failures come from the cancellation, not
// from the targets.
func (w *Watcher) RunOnce(ctx context.Context) *repo.Run {
	r := &repo.Run{StartedAt: time.Now().UTC()}
	r.Outcomes = w.Pool.Run(ctx, w.Targets)
	r.FinishedAt = time.Now().UTC()
	if ctx.Err() != nil {
		w.Logger.Info("watcher_run_discarded",
			zap.Int("outcomes", len(r.Outcomes)),
			zap.Error(ctx.Err()),
		)
		return r
	}
	if w.OnRun != nil {
		w.OnRun(ctx, r)
	}
	return r
}
