package binding

import (
	"context"
	"sync"
)

// Pending tracks a provisioning that may still be in flight. Disposing a
// Pending before provisioning completes tears the binding down as soon as
// it arrives.
type Pending struct {
	mu       sync.Mutex
	binding  *Binding
	err      error
	resolved bool
	disposed bool
}

// Run provisions synchronously and resolves p with the result. It is meant
// to run off the UI goroutine.
func (p *Pending) Run(ctx context.Context, opts Options, defaultValue string) (*Binding, error) {
	b, err := Provision(ctx, opts, defaultValue)
	if !p.Resolve(b, err) {
		return nil, err
	}
	return b, err
}

// Resolve records the outcome of provisioning. It reports false when p was
// already disposed, in which case b has been released.
func (p *Pending) Resolve(b *Binding, err error) bool {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		b.Dispose()
		return false
	}
	p.resolved = true
	p.binding = b
	p.err = err
	disposed := p.disposed
	p.mu.Unlock()

	if disposed {
		b.Dispose()
		return false
	}
	return true
}

// Dispose releases the binding, now or once provisioning completes.
func (p *Pending) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	b := p.binding
	p.mu.Unlock()

	b.Dispose()
}

// Binding returns the live binding once provisioning succeeded and p has
// not been disposed.
func (p *Pending) Binding() (*Binding, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed || p.binding == nil {
		return nil, false
	}
	return p.binding, true
}

// Err returns the provisioning error, if any.
func (p *Pending) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Resolved reports whether provisioning finished.
func (p *Pending) Resolved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved
}
