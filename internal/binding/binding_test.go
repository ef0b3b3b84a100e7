package binding

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"formdeck/internal/docstore"
	appErrors "formdeck/internal/errors"
)

type testRegion struct {
	mu      sync.Mutex
	content string
	edit    func(string) error
}

func (r *testRegion) Attach(_ string, content string, edit func(string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content, r.edit = content, edit
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestProvisionMirrorsExternalChanges(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	region := &testRegion{}

	var mu sync.Mutex
	var value string
	b, err := Provision(ctx, Options{
		Store:  store,
		Region: region,
		OnChange: func(v string) {
			mu.Lock()
			defer mu.Unlock()
			value = v
		},
	}, "hello")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	defer b.Dispose()

	if region.content != "hello" {
		t.Fatalf("expected region seeded with default, got %q", region.content)
	}
	if err := store.UpdateEntry(ctx, b.EntryID, "hello world"); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	mu.Lock()
	got := value
	mu.Unlock()
	if got != "hello world" {
		t.Fatalf("expected pushed value, got %q", got)
	}

	if err := region.edit("typed in region"); err != nil {
		t.Fatalf("region edit: %v", err)
	}
	mu.Lock()
	got = value
	mu.Unlock()
	if got != "typed in region" {
		t.Fatalf("expected region edit to round trip, got %q", got)
	}

	want := []docstore.Op{
		{Kind: docstore.OpCreateContainer, ID: b.ContainerID},
		{Kind: docstore.OpCreateEntry, ID: b.EntryID},
		{Kind: docstore.OpRender, ID: b.EntryID},
		{Kind: docstore.OpSubscribe, ID: b.EntryID},
	}
	if got := store.Journal()[:4]; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected setup order %v", got)
	}
}

func TestDisposeOrderAndOnce(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	b, err := Provision(ctx, Options{Store: store}, "x")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	before := len(store.Journal())

	b.Dispose()
	b.Dispose()

	tail := store.Journal()[before:]
	want := []docstore.Op{
		{Kind: docstore.OpUnsubscribe, ID: b.EntryID},
		{Kind: docstore.OpDeleteEntry, ID: b.EntryID},
		{Kind: docstore.OpDeleteContainer, ID: b.ContainerID},
	}
	if !reflect.DeepEqual(tail, want) {
		t.Fatalf("unexpected teardown %v", tail)
	}
	if store.ResolveExists(ctx, b.ContainerID) || store.Subscribers(b.EntryID) != 0 {
		t.Fatal("binding left resources behind")
	}
}

func TestRemountUsesFreshIdentifiers(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	first, err := Provision(ctx, Options{Store: store}, "one")
	if err != nil {
		t.Fatal(err)
	}
	first.Dispose()
	second, err := Provision(ctx, Options{Store: store}, "two")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Dispose()

	if first.ContainerID == second.ContainerID || first.EntryID == second.EntryID {
		t.Fatal("remount reused identifiers")
	}
	if text, _ := store.ResolveText(ctx, second.EntryID); text != "two" {
		t.Fatalf("expected new default, got %q", text)
	}
}

func TestProvisionFailureCleansUp(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("SubscribeFails", func(t *testing.T) {
		store := docstore.NewMockStore()
		store.SubscribeFn = func(context.Context, string, docstore.Selector, docstore.ChangeFunc) (docstore.Subscription, error) {
			return docstore.Subscription{}, boom
		}
		b, err := Provision(ctx, Options{Store: store, Region: &testRegion{}, NewID: sequentialIDs()}, "")
		if b != nil || !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v, %v", b, err)
		}
		if !appErrors.IsCode(err, appErrors.CodeProvisionFailed) {
			t.Fatalf("expected provision_failed, got %v", appErrors.CodeOf(err))
		}
		want := []string{
			"CreateContainer id-1",
			"CreateEntry id-1 id-2",
			"RenderEntryInto id-2",
			"Subscribe id-2",
			"DeleteEntry id-2",
			"DeleteContainer id-1",
		}
		if got := store.CallLog(); !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected calls:\n got %v\nwant %v", got, want)
		}
	})

	t.Run("CreateEntryFails", func(t *testing.T) {
		store := docstore.NewMockStore()
		store.CreateEntryFn = func(context.Context, string, string, string) error { return boom }
		if _, err := Provision(ctx, Options{Store: store, NewID: sequentialIDs()}, ""); err == nil {
			t.Fatal("expected error")
		}
		want := []string{"CreateContainer id-1", "CreateEntry id-1 id-2", "DeleteContainer id-1"}
		if got := store.CallLog(); !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected calls %v", got)
		}
	})

	t.Run("CreateContainerFails", func(t *testing.T) {
		store := docstore.NewMockStore()
		store.CreateContainerFn = func(context.Context, string, string) error { return boom }
		if _, err := Provision(ctx, Options{Store: store, NewID: sequentialIDs()}, ""); err == nil {
			t.Fatal("expected error")
		}
		if got := store.CallLog(); !reflect.DeepEqual(got, []string{"CreateContainer id-1"}) {
			t.Fatalf("nothing should be released, got %v", got)
		}
	})

	t.Run("NoStore", func(t *testing.T) {
		if _, err := Provision(ctx, Options{}, ""); !appErrors.IsCode(err, appErrors.CodeProvisionFailed) {
			t.Fatalf("expected provision_failed, got %v", err)
		}
	})
}

func TestDisposeContinuesPastErrors(t *testing.T) {
	store := docstore.NewMockStore()
	store.UnsubscribeFn = func(context.Context, docstore.Subscription) error { return errors.New("gone") }
	b, err := Provision(context.Background(), Options{Store: store, NewID: sequentialIDs()}, "")
	if err != nil {
		t.Fatal(err)
	}
	b.Dispose()
	if store.Count("DeleteEntry") != 1 || store.Count("DeleteContainer") != 1 {
		t.Fatalf("expected remaining steps to run, got %v", store.CallLog())
	}
}

func TestPending(t *testing.T) {
	ctx := context.Background()

	t.Run("DisposeBeforeResolve", func(t *testing.T) {
		store := docstore.NewMemory()
		var p Pending
		p.Dispose()
		b, err := p.Run(ctx, Options{Store: store}, "late")
		if err != nil || b != nil {
			t.Fatalf("expected no live binding, got %v, %v", b, err)
		}
		if names := store.ReferenceNames(); len(names) != 0 {
			t.Fatalf("late binding should be torn down, store still has %v", names)
		}
	})

	t.Run("DisposeAfterResolve", func(t *testing.T) {
		store := docstore.NewMemory()
		var p Pending
		b, err := p.Run(ctx, Options{Store: store}, "v")
		if err != nil || b == nil {
			t.Fatalf("Run: %v", err)
		}
		if live, ok := p.Binding(); !ok || live != b {
			t.Fatal("expected live binding")
		}
		p.Dispose()
		p.Dispose()
		if store.ResolveExists(ctx, b.ContainerID) {
			t.Fatal("container should be deleted")
		}
		if _, ok := p.Binding(); ok {
			t.Fatal("disposed pending must not expose its binding")
		}
	})

	t.Run("FailureRecorded", func(t *testing.T) {
		store := docstore.NewMockStore()
		store.CreateContainerFn = func(context.Context, string, string) error { return errors.New("offline") }
		var p Pending
		if _, err := p.Run(ctx, Options{Store: store}, ""); err == nil {
			t.Fatal("expected error")
		}
		if !p.Resolved() || p.Err() == nil {
			t.Fatal("expected resolved pending with error")
		}
	})
}

func TestFeed(t *testing.T) {
	t.Run("Coalesces", func(t *testing.T) {
		f := NewFeed()
		f.Push("h")
		f.Push("he")
		f.Push("hello")
		v, ok := f.Next(context.Background())
		if !ok || v != "hello" {
			t.Fatalf("expected latest value, got %q, %v", v, ok)
		}
	})

	t.Run("BlocksUntilPush", func(t *testing.T) {
		f := NewFeed()
		go func() {
			time.Sleep(5 * time.Millisecond)
			f.Push("async")
		}()
		v, ok := f.Next(context.Background())
		if !ok || v != "async" {
			t.Fatalf("expected async, got %q, %v", v, ok)
		}
	})

	t.Run("CloseWakesReader", func(t *testing.T) {
		f := NewFeed()
		done := make(chan bool)
		go func() {
			_, ok := f.Next(context.Background())
			done <- ok
		}()
		f.Close()
		f.Close()
		select {
		case ok := <-done:
			if ok {
				t.Fatal("expected ok=false after close")
			}
		case <-time.After(time.Second):
			t.Fatal("reader never woke")
		}
	})

	t.Run("ContextCancel", func(t *testing.T) {
		f := NewFeed()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, ok := f.Next(ctx); ok {
			t.Fatal("expected ok=false for cancelled context")
		}
	})
}
