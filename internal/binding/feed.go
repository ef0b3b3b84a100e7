package binding

import (
	"context"
	"sync"
)

// Feed carries the latest content pushed by a store subscription to the UI
// loop. Push never blocks; a value that has not been read yet is replaced
// by the next one.
type Feed struct {
	mu     sync.Mutex
	latest string
	ready  bool

	signal    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed returns an open feed.
func NewFeed() *Feed {
	return &Feed{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push stores v as the latest value.
func (f *Feed) Push(v string) {
	f.mu.Lock()
	f.latest = v
	f.ready = true
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// Next blocks until a value is available, the feed is closed or ctx ends.
// ok is false in the latter two cases.
func (f *Feed) Next(ctx context.Context) (value string, ok bool) {
	for {
		f.mu.Lock()
		if f.ready {
			f.ready = false
			v := f.latest
			f.mu.Unlock()
			return v, true
		}
		f.mu.Unlock()

		select {
		case <-f.signal:
		case <-f.done:
			return "", false
		case <-ctx.Done():
			return "", false
		}
	}
}

// Close wakes any reader; later Next calls return ok=false once drained.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
