// Package lifecycle provides the resource handles behind overlay teardown:
// disposers, an unload stack, per-kind overlay slots and settle-once futures.
package lifecycle

import "sync"

// Disposer releases one resource. Every kind of resource (overlay, store
// binding, registered command, timer) is released through this interface.
type Disposer interface {
	Dispose()
}

// DisposerFunc adapts a function to Disposer.
type DisposerFunc func()

// Dispose calls f.
func (f DisposerFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Once wraps d so that only the first Dispose call reaches it.
func Once(d Disposer) Disposer {
	var once sync.Once
	return DisposerFunc(func() {
		once.Do(d.Dispose)
	})
}

// Stack collects disposers and releases them in reverse registration order.
// It is safe for concurrent use.
type Stack struct {
	mu       sync.Mutex
	items    []Disposer
	disposed bool
}

// Push registers d. A stack that was already disposed releases d at once.
func (s *Stack) Push(d Disposer) {
	if d == nil {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		d.Dispose()
		return
	}
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Defer registers fn.
func (s *Stack) Defer(fn func()) {
	s.Push(DisposerFunc(fn))
}

// Dispose releases every registered disposer, last in first out. Later calls
// do nothing.
func (s *Stack) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	items := s.items
	s.items = nil
	s.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Dispose()
	}
}

// Len returns the number of disposers waiting for release.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
