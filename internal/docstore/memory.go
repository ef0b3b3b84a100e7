package docstore

import (
	"context"
	"sync"
)

// OpKind names a journaled store operation.
type OpKind string

const (
	OpCreateContainer OpKind = "create-container"
	OpCreateEntry     OpKind = "create-entry"
	OpUpdateEntry     OpKind = "update-entry"
	OpDeleteEntry     OpKind = "delete-entry"
	OpDeleteContainer OpKind = "delete-container"
	OpRender          OpKind = "render"
	OpSubscribe       OpKind = "subscribe"
	OpUnsubscribe     OpKind = "unsubscribe"
)

// Op is one journal record.
type Op struct {
	Kind OpKind
	ID   string
}

// Memory is an in-process Store. Every successful mutation, render and
// (un)subscription is appended to a journal that tests and the demo host
// can inspect.
type Memory struct {
	hub

	mu       sync.Mutex
	nodes    map[string]*Node
	children map[string][]string
	roots    []string
	journal  []Op
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
	}
}

func (m *Memory) record(kind OpKind, id string) {
	m.journal = append(m.journal, Op{Kind: kind, ID: id})
}

// Journal returns a copy of the operation journal.
func (m *Memory) Journal() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.journal...)
}

// CreateContainer adds a top-level node.
func (m *Memory) CreateContainer(_ context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[id]; ok {
		return alreadyExistsError(id)
	}
	m.nodes[id] = &Node{UID: id, Title: title, IsPage: true, Position: len(m.roots)}
	m.roots = append(m.roots, id)
	m.record(OpCreateContainer, id)
	return nil
}

// CreateEntry appends an entry as the last child of parentID.
func (m *Memory) CreateEntry(_ context.Context, parentID, id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[parentID]; !ok {
		return notFoundError(parentID)
	}
	if _, ok := m.nodes[id]; ok {
		return alreadyExistsError(id)
	}
	m.nodes[id] = &Node{UID: id, ParentUID: parentID, Content: content, Position: len(m.children[parentID])}
	m.children[parentID] = append(m.children[parentID], id)
	m.record(OpCreateEntry, id)
	return nil
}

// UpdateEntry replaces an entry's content and notifies its subscribers.
func (m *Memory) UpdateEntry(_ context.Context, id, content string) error {
	m.mu.Lock()
	n, ok := m.nodes[id]
	if !ok || n.IsPage {
		m.mu.Unlock()
		return notFoundError(id)
	}
	n.Content = content
	snapshot := *n
	m.record(OpUpdateEntry, id)
	m.mu.Unlock()

	m.notify(snapshot)
	return nil
}

// DeleteEntry removes an entry and its descendants.
func (m *Memory) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || n.IsPage {
		return notFoundError(id)
	}
	m.detach(n.ParentUID, id)
	m.removeTree(id)
	m.record(OpDeleteEntry, id)
	return nil
}

// DeleteContainer removes a container and everything below it.
func (m *Memory) DeleteContainer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || !n.IsPage {
		return notFoundError(id)
	}
	for i, rid := range m.roots {
		if rid == id {
			m.roots = append(m.roots[:i], m.roots[i+1:]...)
			break
		}
	}
	m.removeTree(id)
	m.record(OpDeleteContainer, id)
	return nil
}

func (m *Memory) detach(parentID, id string) {
	kids := m.children[parentID]
	for i, kid := range kids {
		if kid == id {
			m.children[parentID] = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	for i, kid := range m.children[parentID] {
		m.nodes[kid].Position = i
	}
}

func (m *Memory) removeTree(id string) {
	for _, kid := range m.children[id] {
		m.removeTree(kid)
	}
	delete(m.children, id)
	delete(m.nodes, id)
}

// RenderEntryInto attaches the entry to region. Edits made through the
// region are written back with UpdateEntry.
func (m *Memory) RenderEntryInto(ctx context.Context, id string, region Region) error {
	m.mu.Lock()
	n, ok := m.nodes[id]
	if !ok || n.IsPage {
		m.mu.Unlock()
		return notFoundError(id)
	}
	content := n.Content
	m.record(OpRender, id)
	m.mu.Unlock()

	region.Attach(id, content, func(next string) error {
		return m.UpdateEntry(context.WithoutCancel(ctx), id, next)
	})
	return nil
}

// Subscribe watches the selected attribute of entryID.
func (m *Memory) Subscribe(_ context.Context, entryID string, sel Selector, fn ChangeFunc) (Subscription, error) {
	if !validSelector(sel) {
		return Subscription{}, invalidSelectorError(sel)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[entryID]; !ok {
		return Subscription{}, notFoundError(entryID)
	}
	sub := m.add(entryID, sel, fn)
	m.record(OpSubscribe, entryID)
	return sub, nil
}

// Unsubscribe removes a subscription. Removing an unknown subscription is
// reported as not found.
func (m *Memory) Unsubscribe(_ context.Context, sub Subscription) error {
	if !m.remove(sub) {
		return notFoundError(sub.entryID)
	}
	m.mu.Lock()
	m.record(OpUnsubscribe, sub.entryID)
	m.mu.Unlock()
	return nil
}

// Subscribers returns the number of live subscriptions on entryID.
func (m *Memory) Subscribers(entryID string) int {
	return m.count(entryID)
}

// ResolveExists reports whether id is stored.
func (m *Memory) ResolveExists(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[id]
	return ok
}

// ResolveText returns an entry's content or a container's title.
func (m *Memory) ResolveText(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return "", notFoundError(id)
	}
	if n.IsPage {
		return n.Title, nil
	}
	return n.Content, nil
}

// ReferenceNames lists container titles in creation order.
func (m *Memory) ReferenceNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.roots))
	for _, id := range m.roots {
		names = append(names, m.nodes[id].Title)
	}
	return names
}

// BlockCandidates lists every non-empty entry, depth first in store order.
func (m *Memory) BlockCandidates() []BlockCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []BlockCandidate
	var walk func(id string)
	walk = func(id string) {
		for _, kid := range m.children[id] {
			if n := m.nodes[kid]; n.Content != "" {
				out = append(out, BlockCandidate{UID: n.UID, Text: n.Content})
			}
			walk(kid)
		}
	}
	for _, id := range m.roots {
		walk(id)
	}
	return out
}

// Get returns a copy of a stored node.
func (m *Memory) Get(id string) (Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Children returns the ordered child ids of id.
func (m *Memory) Children(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.children[id]...)
}
