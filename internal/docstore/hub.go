package docstore

import (
	"sync"

	"formdeck/internal/debug"
)

var log = debug.Scope("store")

type watch struct {
	entryID  string
	selector Selector
	fn       ChangeFunc
}

// hub keeps subscriptions for a store and fans changes out to them.
type hub struct {
	mu      sync.Mutex
	next    uint64
	watches map[uint64]watch
}

func (h *hub) add(entryID string, sel Selector, fn ChangeFunc) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watches == nil {
		h.watches = make(map[uint64]watch)
	}
	h.next++
	h.watches[h.next] = watch{entryID: entryID, selector: sel, fn: fn}
	return Subscription{id: h.next, entryID: entryID}
}

func (h *hub) remove(sub Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watches[sub.id]; !ok {
		return false
	}
	delete(h.watches, sub.id)
	return true
}

func (h *hub) count(entryID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, w := range h.watches {
		if w.entryID == entryID {
			n++
		}
	}
	return n
}

// notify calls every watcher of n outside the hub lock.
func (h *hub) notify(n Node) {
	h.mu.Lock()
	var targets []watch
	for _, w := range h.watches {
		if w.entryID == n.UID {
			targets = append(targets, w)
		}
	}
	h.mu.Unlock()

	if len(targets) > 0 {
		log.Logf("notified %d subscribers of %s", len(targets), n.UID)
	}
	for _, w := range targets {
		w.fn(n.selected(w.selector))
	}
}
