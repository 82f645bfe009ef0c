// Package queue hands targets from one producer to competing workers.
package queue

import (
	"errors"
	"sync"

	"github.com/hamed0406/sitechecker/internal/domain"
)

var ErrClosed = errors.New("queue closed")

// Queue is a single-producer, multi-consumer handoff. Each target is
// delivered to exactly one Dequeue caller.
type Queue struct {
	mu     sync.RWMutex
	closed bool
	once   sync.Once
	done   chan struct{}
	ch     chan domain.Target
}

// New creates a queue buffering up to capacity targets before Enqueue blocks.
func New(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		done: make(chan struct{}),
		ch:   make(chan domain.Target, capacity),
	}
}

// Enqueue adds one target, blocking while the buffer is full. It returns
// ErrClosed once Close has been called, including while it was blocked.
func (q *Queue) Enqueue(t domain.Target) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- t:
		return nil
	case <-q.done:
		return ErrClosed
	}
}

// Close signals that no more targets will arrive. Safe to call twice.
func (q *Queue) Close() {
	q.once.Do(func() {
		// wake blocked senders first so they drop the read lock
		close(q.done)
		q.mu.Lock()
		defer q.mu.Unlock()
		q.closed = true
		close(q.ch)
	})
}

// Dequeue blocks until a target is available. ok is false once the queue
// is closed and drained.
func (q *Queue) Dequeue() (t domain.Target, ok bool) {
	t, ok = <-q.ch
	return t, ok
}
