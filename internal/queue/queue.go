// Package queue provides the unbounded FIFO used between the worker and the
// presentation consumer.
package queue

import "sync"

// Queue is an unbounded, ordered, multi-producer queue. Push never blocks.
// Items are delivered in push order; Drain returns them in the same order.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	ready  chan struct{}
	closed bool
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push appends v. Pushing to a closed queue drops v and returns false.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Drain removes and returns every queued item without blocking.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Ready is signalled at least once after a Push. Receivers must still call
// Drain, which may return nothing if another receiver got there first.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Close stops further pushes. Items already queued can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
