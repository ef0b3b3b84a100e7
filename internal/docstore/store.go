// Package docstore defines the external document store the form binds to
// and ships three implementations: an in-process Memory store, a SQLite
// backed store and a MockStore for tests.
//
// The store holds a forest of nodes. Top-level nodes are containers (pages)
// with a unique title; every other node is an entry (block) with text
// content and an ordered position under its parent.
package docstore

import "context"

// Selector picks the attribute of an entry a subscription watches.
type Selector string

const (
	// SelectContent watches an entry's text content.
	SelectContent Selector = "content"
	// SelectTitle watches a container's title.
	SelectTitle Selector = "title"
)

// ChangeFunc receives the selected attribute after every change. It may be
// called from any goroutine and must not block.
type ChangeFunc func(value string)

// Subscription is the opaque handle returned by Subscribe.
type Subscription struct {
	id      uint64
	entryID string
}

// EntryID returns the watched entry.
func (s Subscription) EntryID() string { return s.entryID }

// IsZero reports whether the subscription was never registered.
func (s Subscription) IsZero() bool { return s.id == 0 }

// Region is a view area an entry can be rendered into. The store hands the
// region the entry's current content and an edit function that writes
// changes back.
type Region interface {
	Attach(entryID, content string, edit func(content string) error)
}

// BlockCandidate is a searchable entry.
type BlockCandidate struct {
	UID  string
	Text string
}

// NameSource lists known reference names (container titles) in store order.
type NameSource interface {
	ReferenceNames() []string
}

// BlockSource lists entries that can be referenced from a block field.
type BlockSource interface {
	BlockCandidates() []BlockCandidate
}

// Resolver turns an identifier into display text. A missing identifier is
// reported with the not_found code.
type Resolver interface {
	ResolveText(ctx context.Context, id string) (string, error)
}

// Store is the mutable document store.
type Store interface {
	NameSource
	BlockSource
	Resolver

	CreateContainer(ctx context.Context, id, title string) error
	CreateEntry(ctx context.Context, parentID, id, content string) error
	UpdateEntry(ctx context.Context, id, content string) error
	DeleteEntry(ctx context.Context, id string) error
	DeleteContainer(ctx context.Context, id string) error
	RenderEntryInto(ctx context.Context, id string, region Region) error
	Subscribe(ctx context.Context, entryID string, selector Selector, fn ChangeFunc) (Subscription, error)
	Unsubscribe(ctx context.Context, sub Subscription) error
	ResolveExists(ctx context.Context, id string) bool
}

// Node is one stored container or entry.
type Node struct {
	UID       string
	ParentUID string
	Title     string
	Content   string
	IsPage    bool
	Position  int
}

func (n Node) selected(sel Selector) string {
	if sel == SelectTitle {
		return n.Title
	}
	return n.Content
}

func validSelector(sel Selector) bool {
	return sel == SelectContent || sel == SelectTitle
}
