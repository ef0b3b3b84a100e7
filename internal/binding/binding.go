// Package binding mirrors one entry of an external document store into a
// form field. A Binding owns an ephemeral container, the entry inside it
// and a content subscription, and releases all three exactly once.
package binding

import (
	"context"
	"fmt"
	"time"

	"formdeck/internal/debug"
	"formdeck/internal/docstore"
	appErrors "formdeck/internal/errors"
	"formdeck/internal/lifecycle"
)

var log = debug.Scope("binding")

// releaseTimeout bounds each store call made while tearing a binding down.
const releaseTimeout = 5 * time.Second

// Options configures Provision.
type Options struct {
	Store docstore.Store
	// Region receives the rendered entry.
	Region docstore.Region
	// OnChange receives the entry content after every external change. It
	// runs on the store's goroutine.
	OnChange func(content string)
	// NewID generates identifiers; docstore.NewID when nil.
	NewID func() string
}

// Binding is a live container/entry/subscription triple.
type Binding struct {
	ContainerID string
	EntryID     string

	sub     docstore.Subscription
	release lifecycle.Stack
}

// Provision creates a fresh container and an entry seeded with
// defaultValue, renders the entry into the region and subscribes to its
// content. If any step fails, whatever was already created is released in
// reverse order before the error is returned.
func Provision(ctx context.Context, opts Options, defaultValue string) (*Binding, error) {
	if opts.Store == nil {
		return nil, appErrors.New(appErrors.CodeProvisionFailed, "binding requires a store", nil)
	}
	newID := opts.NewID
	if newID == nil {
		newID = docstore.NewID
	}
	store := opts.Store
	b := &Binding{ContainerID: newID(), EntryID: newID()}

	fail := func(step string, err error) (*Binding, error) {
		b.release.Dispose()
		log.Logf("provision failed at %s: %v", step, err)
		return nil, appErrors.New(appErrors.CodeProvisionFailed, fmt.Sprintf("%s: %v", step, err), err)
	}

	if err := store.CreateContainer(ctx, b.ContainerID, newID()); err != nil {
		return fail("create container", err)
	}
	b.release.Defer(func() {
		b.call("delete container", func(ctx context.Context) error {
			return store.DeleteContainer(ctx, b.ContainerID)
		})
	})

	if err := store.CreateEntry(ctx, b.ContainerID, b.EntryID, defaultValue); err != nil {
		return fail("create entry", err)
	}
	b.release.Defer(func() {
		b.call("delete entry", func(ctx context.Context) error {
			return store.DeleteEntry(ctx, b.EntryID)
		})
	})

	if opts.Region != nil {
		if err := store.RenderEntryInto(ctx, b.EntryID, opts.Region); err != nil {
			return fail("render entry", err)
		}
	}

	onChange := opts.OnChange
	if onChange == nil {
		onChange = func(string) {}
	}
	sub, err := store.Subscribe(ctx, b.EntryID, docstore.SelectContent, docstore.ChangeFunc(onChange))
	if err != nil {
		return fail("subscribe", err)
	}
	b.sub = sub
	b.release.Defer(func() {
		b.call("unsubscribe", func(ctx context.Context) error {
			return store.Unsubscribe(ctx, sub)
		})
	})

	log.Logf("provisioned container %s entry %s", b.ContainerID, b.EntryID)
	return b, nil
}

func (b *Binding) call(step string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Logf("%s for %s: %v", step, b.EntryID, err)
	}
}

// Dispose unsubscribes, deletes the entry and deletes the container, in
// that order. Only the first call does anything. Store errors are logged
// and never stop the remaining steps.
func (b *Binding) Dispose() {
	if b == nil {
		return
	}
	b.release.Dispose()
}

// Subscription returns the live subscription handle.
func (b *Binding) Subscription() docstore.Subscription { return b.sub }
