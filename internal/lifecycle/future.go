package lifecycle

import (
	"context"
	"errors"
	"sync"
)

// ErrAbandoned settles a future whose overlay closed without an answer.
var ErrAbandoned = errors.New("closed before an answer was given")

// Future is a value that is pending until it is settled exactly once.
type Future[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	value   T
	err     error
}

// NewFuture returns a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve settles the future with v. It reports false if the future was
// already settled.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

// Abandon rejects a still pending future with ErrAbandoned.
func (f *Future[T]) Abandon() bool {
	var zero T
	return f.settle(zero, ErrAbandoned)
}

// Dispose abandons the future, so a future can sit on an unload stack.
func (f *Future[T]) Dispose() { f.Abandon() }

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled {
		return false
	}
	f.settled = true
	f.value = v
	f.err = err
	close(f.done)
	return true
}

// Settled reports whether the future has a result.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
