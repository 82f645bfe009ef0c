package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/config"
	"github.com/hamed0406/sitechecker/internal/domain"
	"github.com/hamed0406/sitechecker/internal/probe"
	"github.com/hamed0406/sitechecker/internal/queue"
	"github.com/hamed0406/sitechecker/internal/repo/memory"
)

// CheckFunc checks one target, retries included, and never fails: every
// problem is carried in the outcome.
type CheckFunc func(ctx context.Context, target string) domain.CheckOutcome

// Printer receives each outcome as soon as it is recorded. Implementations
// must be safe for concurrent use.
type Printer interface {
	Print(o domain.CheckOutcome)
}

// Pool drains a target queue with a fixed number of workers.
type Pool struct {
	Logger  *zap.Logger
	Workers int
	Check   CheckFunc
	Printer Printer
}

// NewPool validates cfg and wires the HTTP checker with its retry policy.
// printer may be nil.
func NewPool(logger *zap.Logger, cfg config.PoolConfig, printer Printer) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy := probe.Policy{Timeout: cfg.Timeout, Retries: cfg.Retries, Backoff: probe.DefaultBackoff}
	return &Pool{
		Logger:  logger,
		Workers: cfg.Workers,
		Check: func(ctx context.Context, target string) domain.CheckOutcome {
			return policy.Run(ctx, probe.HTTPFactory, target)
		},
		Printer: printer,
	}, nil
}

// Run checks every target and returns one outcome per target in completion
// order. It returns after all workers have exited.
func (p *Pool) Run(ctx context.Context, targets []domain.Target) []domain.CheckOutcome {
	if len(targets) == 0 {
		p.Logger.Info("pool_nothing_to_check")
		return []domain.CheckOutcome{}
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	q := queue.New(len(targets))
	results := memory.New(len(targets))
	start := time.Now()
	p.Logger.Info("pool_started",
		zap.Int("workers", workers),
		zap.Int("targets", len(targets)),
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id, q, results)
		}(i)
	}

	for _, t := range targets {
		if err := q.Enqueue(t); err != nil {
			p.Logger.Warn("enqueue_failed", zap.String("url", string(t)), zap.Error(err))
			// keep one outcome per target even if the handoff failed
			p.record(ctx, results, domain.Failed(string(t), "enqueue failed: "+err.Error(), 0, time.Now().UTC()))
		}
	}
	q.Close()
	wg.Wait()

	out, _ := results.Snapshot(ctx)
	p.Logger.Info("pool_finished",
		zap.Int("outcomes", len(out)),
		zap.Duration("took", time.Since(start)),
	)
	return out
}

func (p *Pool) work(ctx context.Context, id int, q *queue.Queue, results *memory.Store) {
	for {
		t, ok := q.Dequeue()
		if !ok {
			return
		}
		o := p.checkOne(ctx, t)
		p.Logger.Debug("check_done",
			zap.Int("worker", id),
			zap.String("url", o.URL),
			zap.Uint16("status", o.StatusCode),
			zap.String("error", o.Error),
			zap.Duration("elapsed", o.Elapsed),
		)
		p.record(ctx, results, o)
	}
}

// checkOne turns a panic inside the check into a failed outcome for that
// target so the worker keeps draining the queue.
func (p *Pool) checkOne(ctx context.Context, t domain.Target) (o domain.CheckOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("worker_panic",
				zap.String("url", string(t)),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			o = domain.Failed(string(t), fmt.Sprintf("worker panic: %v", r), time.Since(start), time.Now().UTC())
		}
	}()
	return p.Check(ctx, string(t))
}

func (p *Pool) record(ctx context.Context, results *memory.Store, o domain.CheckOutcome) {
	if err := results.Record(ctx, o); err != nil {
		p.Logger.Warn("record_failed", zap.String("url", o.URL), zap.Error(err))
	}
	if p.Printer != nil {
		p.Printer.Print(o)
	}
}
