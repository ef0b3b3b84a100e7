package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/search"
)

// searchInputChrome is the number of lines the bordered input occupies
// above the first result row.
const searchInputChrome = 3

// SearchCommittedMsg is sent when a result (or the raw query) is committed
// with Enter or a click.
type SearchCommittedMsg struct {
	ID    string
	Value string
}

// SearchConfirmMsg is sent when Enter arrives while the result list is
// closed. Forms treat it as a submit accelerator.
type SearchConfirmMsg struct {
	ID    string
	Value string
}

// SearchChangedMsg is sent whenever the query text is edited.
type SearchChangedMsg struct {
	ID    string
	Value string
}

// SearchInput is a text input with a fuzzy-ranked dropdown of at most
// search.MaxResults rows. Navigation state lives in a search.Machine; the
// input only translates keys and renders.
type SearchInput struct {
	ID          string
	Placeholder string
	Width       int

	input   textinput.Model
	machine *search.Machine
	focused bool
	commits int
}

// NewSearchInput creates an unfocused, closed input over candidates.
func NewSearchInput(id string, candidates []string) *SearchInput {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = "> "

	s := &SearchInput{
		ID:      id,
		Width:   40,
		input:   ti,
		machine: search.New(candidates),
	}
	s.input.Width = s.Width - 4
	return s
}

// WithPlaceholder sets the placeholder text.
func (s *SearchInput) WithPlaceholder(p string) *SearchInput {
	s.Placeholder = p
	s.input.Placeholder = p
	return s
}

// WithWidth sets the display width.
func (s *SearchInput) WithWidth(w int) *SearchInput {
	s.Width = w
	s.input.Width = w - 4
	return s
}

// SetCandidates replaces the candidate set.
func (s *SearchInput) SetCandidates(candidates []string) {
	s.machine.SetCandidates(candidates)
}

// SetValue replaces the query text without opening the dropdown.
func (s *SearchInput) SetValue(v string) {
	s.input.SetValue(v)
	s.input.CursorEnd()
	s.machine.SetQuery(v)
	s.machine.Close()
}

// Value returns the current query text.
func (s *SearchInput) Value() string {
	return s.input.Value()
}

// Focus focuses the input and reopens the dropdown for a non-empty query.
func (s *SearchInput) Focus() tea.Cmd {
	s.focused = true
	s.machine.Open()
	return s.input.Focus()
}

// Blur removes focus. Focus never moves into the dropdown in a terminal,
// so blurring always closes it.
func (s *SearchInput) Blur() {
	s.focused = false
	s.machine.Blur(true)
	s.input.Blur()
}

// Focused reports whether the input has focus.
func (s *SearchInput) Focused() bool {
	return s.focused
}

// IsOpen reports whether the dropdown is showing.
func (s *SearchInput) IsOpen() bool {
	return s.machine.IsOpen()
}

// Commits counts committed values. Embedders compare it around Update to
// tell a commit from a plain edit without waiting for SearchCommittedMsg.
func (s *SearchInput) Commits() int {
	return s.commits
}

// Results returns the visible result rows.
func (s *SearchInput) Results() []string {
	return s.machine.Results()
}

// Active returns the highlighted row, or -1.
func (s *SearchInput) Active() int {
	return s.machine.Active()
}

// Update handles keys and mouse clicks.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			if row, ok := s.RowAt(msg.Y); ok {
				return s, s.Click(row)
			}
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SearchInput) handleKey(msg tea.KeyMsg) (*SearchInput, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		s.machine.HandleKey(search.KeyUp)
		return s, nil

	case tea.KeyDown:
		if !s.machine.IsOpen() {
			s.machine.Open()
			return s, nil
		}
		s.machine.HandleKey(search.KeyDown)
		return s, nil

	case tea.KeyEnter:
		switch s.machine.HandleKey(search.KeyEnter) {
		case search.OutcomeCommitted:
			return s, s.committed(s.machine.Committed())
		case search.OutcomeConfirm:
			id, value := s.ID, s.input.Value()
			return s, func() tea.Msg { return SearchConfirmMsg{ID: id, Value: value} }
		}
		return s, nil

	case tea.KeyEsc:
		s.machine.HandleKey(search.KeyEscape)
		return s, nil
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	after := s.input.Value()
	if after == before {
		return s, cmd
	}
	s.machine.SetQuery(after)
	id := s.ID
	return s, tea.Batch(cmd, func() tea.Msg { return SearchChangedMsg{ID: id, Value: after} })
}

// Click commits the result row i and keeps focus on the input.
func (s *SearchInput) Click(i int) tea.Cmd {
	value, ok := s.machine.Click(i)
	if !ok {
		return nil
	}
	cmd := s.committed(value)
	if !s.focused {
		return tea.Batch(s.Focus(), cmd)
	}
	return cmd
}

// RowAt maps a line offset relative to the top of View to a result row.
func (s *SearchInput) RowAt(y int) (int, bool) {
	row := y - searchInputChrome
	if row < 0 || row >= len(s.machine.Results()) {
		return 0, false
	}
	return row, true
}

func (s *SearchInput) committed(value string) tea.Cmd {
	s.commits++
	s.input.SetValue(value)
	s.input.CursorEnd()
	id := s.ID
	return func() tea.Msg { return SearchCommittedMsg{ID: id, Value: value} }
}

// View renders the input box and, while open, the dropdown.
func (s *SearchInput) View() string {
	var b strings.Builder

	inputStyle := styleSearchInput().Width(s.Width)
	if s.focused {
		inputStyle = styleSearchInputFocused().Width(s.Width)
	}
	b.WriteString(inputStyle.Render(s.input.View()))

	if !s.machine.IsOpen() {
		return b.String()
	}

	results := s.machine.Results()
	if len(results) == 0 {
		b.WriteString("\n")
		b.WriteString(styleSearchNoMatch().Render("  No matches"))
		return b.String()
	}
	for i, r := range results {
		b.WriteString("\n")
		r = truncateCell(r, s.Width-2)
		if i == s.machine.Active() {
			b.WriteString(styleSearchHighlight().Render("▸ " + r))
		} else {
			b.WriteString(styleSearchOption().Render(r))
		}
	}
	return b.String()
}
