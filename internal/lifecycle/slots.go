package lifecycle

// Handle identifies one mounted instance in Slots.
type Handle struct {
	kind string
	seq  uint64
}

// Kind returns the slot kind the handle was opened under.
func (h Handle) Kind() string { return h.kind }

// IsZero reports whether h was never returned by Open.
func (h Handle) IsZero() bool { return h.seq == 0 }

type slot[T Disposer] struct {
	handle Handle
	value  T
}

// Slots holds at most one mounted instance per kind. Opening a kind that is
// already mounted disposes the previous instance first. Slots is meant to
// be driven from a single event loop and is not safe for concurrent use.
type Slots[T Disposer] struct {
	mounted map[string]slot[T]
	seq     uint64
}

// Open mounts v under kind and returns its handle.
func (s *Slots[T]) Open(kind string, v T) Handle {
	if s.mounted == nil {
		s.mounted = make(map[string]slot[T])
	}
	if prev, ok := s.mounted[kind]; ok {
		delete(s.mounted, kind)
		prev.value.Dispose()
	}
	s.seq++
	h := Handle{kind: kind, seq: s.seq}
	s.mounted[kind] = slot[T]{handle: h, value: v}
	return h
}

// Close disposes the instance identified by h. Closing a handle that was
// already closed or replaced does nothing and reports false.
func (s *Slots[T]) Close(h Handle) bool {
	cur, ok := s.mounted[h.kind]
	if !ok || cur.handle != h {
		return false
	}
	delete(s.mounted, h.kind)
	cur.value.Dispose()
	return true
}

// Lookup returns the instance behind h while it is still mounted.
func (s *Slots[T]) Lookup(h Handle) (T, bool) {
	cur, ok := s.mounted[h.kind]
	if !ok || cur.handle != h {
		var zero T
		return zero, false
	}
	return cur.value, true
}

// Current returns the mounted instance of kind.
func (s *Slots[T]) Current(kind string) (T, Handle, bool) {
	cur, ok := s.mounted[kind]
	return cur.value, cur.handle, ok
}

// Len returns the number of mounted instances.
func (s *Slots[T]) Len() int { return len(s.mounted) }

// CloseAll disposes every mounted instance.
func (s *Slots[T]) CloseAll() {
	for kind, cur := range s.mounted {
		delete(s.mounted, kind)
		cur.value.Dispose()
	}
}
