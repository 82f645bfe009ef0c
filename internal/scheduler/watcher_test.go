package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/repo"
)

func TestWatcher_ZeroIntervalRunsOnce(t *testing.T) {
	var runs int
	p := &Pool{Logger: zap.NewNop(), Workers: 2, Check: fakeCheck}
	w := NewWatcher(zap.NewNop(), p, makeTargets(4), 0, func(ctx context.Context, r *repo.Run) {
		runs++
		if len(r.Outcomes) != 4 {
			t.Errorf("want 4 outcomes, got %d", len(r.Outcomes))
		}
		if r.FinishedAt.Before(r.StartedAt) {
			t.Errorf("finished before started: %+v", r)
		}
	})
	w.Run(context.Background())
	if runs != 1 {
		t.Fatalf("want 1 run, got %d", runs)
	}
}

func TestWatcher_RepeatsUntilCancelled(t *testing.T) {
	var (
		mu   sync.Mutex
		runs int
	)
	p := &Pool{Logger: zap.NewNop(), Workers: 1, Check: fakeCheck}
	targets := []domain.Target{"http://ok.test"}
	w := NewWatcher(zap.NewNop(), p, targets, 5*time.Millisecond, func(ctx context.Context, r *repo.Run) {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("watcher did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if runs < 2 {
		t.Fatalf("want several runs, got %d", runs)
	}
}

func TestWatcher_DiscardsCancelledRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs int
	p := &Pool{Logger: zap.NewNop(), Workers: 2, Check: fakeCheck}
	w := NewWatcher(zap.NewNop(), p, makeTargets(3), 0, func(ctx context.Context, r *repo.Run) {
		runs++
	})
	r := w.RunOnce(ctx)
	if runs != 0 {
		t.Fatalf("cancelled run must not be handed on, got %d calls", runs)
	}
	if r == nil {
		t.Fatalf("RunOnce should still return the run")
	}
}
