package search

// Key is a navigation key understood by the Machine. Printable input is
// delivered through SetQuery instead.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// Outcome reports what a key did to the Machine.
type Outcome int

const (
	// OutcomeNone means the key was ignored.
	OutcomeNone Outcome = iota
	// OutcomeMoved means the active index changed (or was clamped).
	OutcomeMoved
	// OutcomeCommitted means a value was committed and the machine closed.
	OutcomeCommitted
	// OutcomeClosed means the machine was dismissed without a commit.
	OutcomeClosed
	// OutcomeConfirm means Enter arrived while closed; callers use it as a
	// submit accelerator.
	OutcomeConfirm
)

const noActive = -1

// Machine tracks the query, the open flag, the ranked results and the
// active result for one search input. The zero value is closed and empty.
//
// Results are recomputed into a fresh slice whenever the query or the
// candidate set changes. Up and Down clamp at the ends of the list.
type Machine struct {
	candidates []string
	query      string
	open       bool
	active     int
	results    []string
	committed  string
}

// New creates a closed machine over the given candidates.
func New(candidates []string) *Machine {
	return &Machine{candidates: candidates, active: noActive}
}

// SetCandidates replaces the candidate set and re-ranks an open machine.
func (m *Machine) SetCandidates(candidates []string) {
	m.candidates = candidates
	if m.open {
		m.recompute()
	}
}

// SetQuery records an edit of the query text. A non-empty edit opens the
// machine; an empty one closes it.
func (m *Machine) SetQuery(query string) {
	m.query = query
	if query == "" {
		m.Close()
		return
	}
	m.open = true
	m.recompute()
}

// Open is an explicit focus-open request. It is ignored while the query is
// empty since an empty query can never have results.
func (m *Machine) Open() {
	if m.query == "" {
		return
	}
	m.open = true
	m.recompute()
}

// Close dismisses the result list. The query text is kept.
func (m *Machine) Close() {
	m.open = false
	m.results = nil
	m.active = noActive
}

// Blur handles focus leaving the input. Focus moving to an element outside
// the control's own region closes it; focus moving into the result list
// does not.
func (m *Machine) Blur(outside bool) {
	if outside {
		m.Close()
	}
}

// HandleKey applies a navigation key.
func (m *Machine) HandleKey(k Key) Outcome {
	switch k {
	case KeyUp:
		if !m.open || len(m.results) == 0 {
			return OutcomeNone
		}
		if m.active > 0 {
			m.active--
		}
		return OutcomeMoved

	case KeyDown:
		if !m.open || len(m.results) == 0 {
			return OutcomeNone
		}
		if m.active < len(m.results)-1 {
			m.active++
		}
		return OutcomeMoved

	case KeyEnter:
		if !m.open {
			return OutcomeConfirm
		}
		value := m.query
		if m.active >= 0 && m.active < len(m.results) {
			value = m.results[m.active]
		}
		m.Commit(value)
		return OutcomeCommitted

	case KeyEscape:
		if !m.open {
			return OutcomeNone
		}
		m.Close()
		return OutcomeClosed
	}
	return OutcomeNone
}

// Commit is the single path through which a value is selected: keyboard
// Enter, mouse clicks and programmatic selection all end here. The query
// takes the committed value and the machine closes.
func (m *Machine) Commit(value string) string {
	m.query = value
	m.committed = value
	m.Close()
	return value
}

// Click commits the result at index i. ok is false when i is out of range
// or the machine is closed. Callers return input focus to the query field
// after a successful click.
func (m *Machine) Click(i int) (value string, ok bool) {
	if !m.open || i < 0 || i >= len(m.results) {
		return "", false
	}
	return m.Commit(m.results[i]), true
}

func (m *Machine) recompute() {
	m.results = Rank(m.query, m.candidates)
	if len(m.results) > 0 {
		m.active = 0
	} else {
		m.active = noActive
	}
}

// Query returns the current query text.
func (m *Machine) Query() string { return m.query }

// IsOpen reports whether the result list is showing.
func (m *Machine) IsOpen() bool { return m.open }

// Results returns the ranked results; empty while closed.
func (m *Machine) Results() []string {
	if !m.open {
		return nil
	}
	return m.results
}

// Active returns the active result index, or -1 when none is active.
func (m *Machine) Active() int { return m.active }

// Committed returns the most recently committed value.
func (m *Machine) Committed() string { return m.committed }
