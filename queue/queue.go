// Package queue serializes items from any number of producers onto a single
// consumer goroutine.
package queue

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Enqueue once Close has begun.
var ErrClosed = errors.New("queue: closed")

// DefaultCapacity is the number of items buffered before Enqueue blocks.
const DefaultCapacity = 1024

// Queue delivers enqueued items to its handler one at a time, in the order
// they were enqueued. At most one handler call runs at any instant.
type Queue[T any] struct {
	items  chan T
	handle func(T)
	done   chan struct{}

	mu     sync.RWMutex // held for read while sending, for write while closing
	closed bool
}

type options struct {
	capacity int
}

// Option configures a Queue.
type Option func(*options)

// WithCapacity sets the buffer size. Zero makes every Enqueue a direct
// handoff to the consumer.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.capacity = n
		}
	}
}

// New starts a queue whose consumer goroutine calls handle for each item.
func New[T any](handle func(T), opts ...Option) *Queue[T] {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	q := &Queue[T]{
		items:  make(chan T, o.capacity),
		handle: handle,
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue[T]) run() {
	defer close(q.done)
	for item := range q.items {
		q.handle(item)
	}
}

// Enqueue adds item to the queue, blocking while the buffer is full.
// It returns ErrClosed after Close has been called.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	q.items <- item
	return nil
}

// Close stops accepting items and blocks until every item already enqueued
// has been handled. It must not be called from the handler. Calling Close
// more than once is safe; every call waits for the drain.
func (q *Queue[T]) Close() {
	q.CloseWith(nil)
}

// CloseWith stops accepting items, waits for the queue to drain, and then
// calls final on the caller's goroutine. Only the first caller's final runs;
// it returns false for every later call.
func (q *Queue[T]) CloseWith(final func()) bool {
	q.mu.Lock()
	first := !q.closed
	if first {
		q.closed = true
		close(q.items)
	}
	q.mu.Unlock()

	<-q.done

	if first && final != nil {
		final()
	}
	return first
}
