package docstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrMockNotImplemented is returned when a MockStore read lacks an override.
var ErrMockNotImplemented = errors.New("docstore.MockStore: method not implemented")

// MockStore is a test double for Store. Mutations default to no-ops, reads
// default to ErrMockNotImplemented or empty results. Every call is recorded
// in order in Calls as "Method arg1 arg2".
type MockStore struct {
	CreateContainerFn func(context.Context, string, string) error
	CreateEntryFn     func(context.Context, string, string, string) error
	UpdateEntryFn     func(context.Context, string, string) error
	DeleteEntryFn     func(context.Context, string) error
	DeleteContainerFn func(context.Context, string) error
	RenderEntryIntoFn func(context.Context, string, Region) error
	SubscribeFn       func(context.Context, string, Selector, ChangeFunc) (Subscription, error)
	UnsubscribeFn     func(context.Context, Subscription) error
	ResolveExistsFn   func(context.Context, string) bool
	ResolveTextFn     func(context.Context, string) (string, error)
	ReferenceNamesFn  func() []string
	BlockCandidatesFn func() []BlockCandidate

	mu      sync.Mutex
	Calls   []string
	nextSub uint64
}

// NewMockStore returns a MockStore with zeroed handlers.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) called(method string, args ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, strings.TrimSpace(method+" "+strings.Join(args, " ")))
}

// CallLog returns a copy of the recorded calls.
func (m *MockStore) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// Count returns how many times method was called.
func (m *MockStore) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method || strings.HasPrefix(c, method+" ") {
			n++
		}
	}
	return n
}

func (m *MockStore) CreateContainer(ctx context.Context, id, title string) error {
	m.called("CreateContainer", id)
	if m.CreateContainerFn == nil {
		return nil
	}
	return m.CreateContainerFn(ctx, id, title)
}

func (m *MockStore) CreateEntry(ctx context.Context, parentID, id, content string) error {
	m.called("CreateEntry", parentID, id)
	if m.CreateEntryFn == nil {
		return nil
	}
	return m.CreateEntryFn(ctx, parentID, id, content)
}

func (m *MockStore) UpdateEntry(ctx context.Context, id, content string) error {
	m.called("UpdateEntry", id)
	if m.UpdateEntryFn == nil {
		return nil
	}
	return m.UpdateEntryFn(ctx, id, content)
}

func (m *MockStore) DeleteEntry(ctx context.Context, id string) error {
	m.called("DeleteEntry", id)
	if m.DeleteEntryFn == nil {
		return nil
	}
	return m.DeleteEntryFn(ctx, id)
}

func (m *MockStore) DeleteContainer(ctx context.Context, id string) error {
	m.called("DeleteContainer", id)
	if m.DeleteContainerFn == nil {
		return nil
	}
	return m.DeleteContainerFn(ctx, id)
}

func (m *MockStore) RenderEntryInto(ctx context.Context, id string, region Region) error {
	m.called("RenderEntryInto", id)
	if m.RenderEntryIntoFn == nil {
		return nil
	}
	return m.RenderEntryIntoFn(ctx, id, region)
}

// Subscribe hands out sequential subscriptions unless overridden.
func (m *MockStore) Subscribe(ctx context.Context, entryID string, sel Selector, fn ChangeFunc) (Subscription, error) {
	m.called("Subscribe", entryID)
	if m.SubscribeFn != nil {
		return m.SubscribeFn(ctx, entryID, sel, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	return Subscription{id: m.nextSub, entryID: entryID}, nil
}

func (m *MockStore) Unsubscribe(ctx context.Context, sub Subscription) error {
	m.called("Unsubscribe", sub.entryID)
	if m.UnsubscribeFn == nil {
		return nil
	}
	return m.UnsubscribeFn(ctx, sub)
}

func (m *MockStore) ResolveExists(ctx context.Context, id string) bool {
	m.called("ResolveExists", id)
	if m.ResolveExistsFn == nil {
		return false
	}
	return m.ResolveExistsFn(ctx, id)
}

func (m *MockStore) ResolveText(ctx context.Context, id string) (string, error) {
	m.called("ResolveText", id)
	if m.ResolveTextFn == nil {
		return "", ErrMockNotImplemented
	}
	return m.ResolveTextFn(ctx, id)
}

func (m *MockStore) ReferenceNames() []string {
	m.called("ReferenceNames")
	if m.ReferenceNamesFn == nil {
		return nil
	}
	return m.ReferenceNamesFn()
}

func (m *MockStore) BlockCandidates() []BlockCandidate {
	m.called("BlockCandidates")
	if m.BlockCandidatesFn == nil {
		return nil
	}
	return m.BlockCandidatesFn()
}

var (
	_ Store = (*MockStore)(nil)
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)
