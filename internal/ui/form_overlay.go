package ui

import (
	"context"
	"maps"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/debug"
	"formdeck/internal/docstore"
	"formdeck/internal/form"
	"formdeck/internal/lifecycle"
)

var formLog = debug.Scope("form")

// FormOptions configures a FormOverlay.
type FormOptions struct {
	Title string
	// Content is markdown shown above the fields.
	Content  string
	Fields   form.Fields
	OnSubmit form.Handler

	// Store backs embed fields and, unless overridden below, page and
	// block search and block display.
	Store    docstore.Store
	Names    docstore.NameSource
	Blocks   docstore.BlockSource
	Resolver docstore.Resolver
	// Extra names are appended to every page search.
	Extra []string
	NewID func() string

	Size OverlaySize
}

// FormOverlay renders a descriptor list as a modal form.
type FormOverlay struct {
	id      uint64
	title   string
	content string
	size    OverlaySize
	width   int
	height  int

	engine     *form.Engine
	controls   []control
	focus      int
	handler    form.Handler
	submission form.Submission
	finished   bool

	ctx     context.Context
	release lifecycle.Stack
	render  func(string) string
}

// NewFormOverlay validates the fields and builds one control per field.
// Descriptor problems are returned as configuration errors.
func NewFormOverlay(ctx context.Context, opts FormOptions) (*FormOverlay, error) {
	engine, err := form.NewEngine(opts.Fields)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)

	m := &FormOverlay{
		id:      nextOverlayID(),
		title:   opts.Title,
		content: opts.Content,
		size:    opts.Size,
		engine:  engine,
		handler: opts.OnSubmit,
		ctx:     ctx,
	}
	m.release.Defer(cancel)
	m.release.Defer(m.submission.Close)

	env := &fieldEnv{
		owner:    m.id,
		ctx:      ctx,
		store:    opts.Store,
		names:    opts.Names,
		blocks:   opts.Blocks,
		resolver: opts.Resolver,
		extra:    opts.Extra,
		newID:    opts.NewID,
		get:      engine.Get,
		set:      m.setValue,
		clear:    m.clearValue,
	}
	if opts.Store != nil {
		if env.names == nil {
			env.names = opts.Store
		}
		if env.blocks == nil {
			env.blocks = opts.Store
		}
		if env.resolver == nil {
			env.resolver = opts.Store
		}
	}

	for _, d := range engine.Fields() {
		c := controlFactoryFor(d.Kind)(d, env)
		m.controls = append(m.controls, c)
		m.release.Push(lifecycle.DisposerFunc(c.Dispose))
	}
	m.focus = m.nextVisible(-1, 1)
	return m, nil
}

// ID identifies the overlay in routed messages.
func (m *FormOverlay) ID() uint64 { return m.id }

// Engine exposes the form state.
func (m *FormOverlay) Engine() *form.Engine { return m.engine }

// Submitting reports whether a handler is running.
func (m *FormOverlay) Submitting() bool { return m.submission.Pending() }

// Err returns the inline error of the last failed submission.
func (m *FormOverlay) Err() string { return m.submission.Err() }

// OnClose registers d to run when the overlay is disposed.
func (m *FormOverlay) OnClose(d lifecycle.Disposer) {
	m.release.Push(d)
}

// SetSize records the terminal size.
func (m *FormOverlay) SetSize(width, height int) {
	m.width, m.height = width, height
	m.render = nil
}

// Init mounts every control and focuses the first visible one.
func (m *FormOverlay) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.controls)+1)
	for _, c := range m.controls {
		cmds = append(cmds, c.Init())
	}
	if c := m.focused(); c != nil {
		cmds = append(cmds, c.Focus())
	}
	return tea.Batch(cmds...)
}

// SetDefault replaces the default of an embed field, which provisions a
// fresh entry seeded with it.
func (m *FormOverlay) SetDefault(name string, v form.Value) tea.Cmd {
	for _, c := range m.controls {
		if e, ok := c.(*embedControl); ok && c.Descriptor().Name == name {
			return e.SetDefault(v)
		}
	}
	return nil
}

func (m *FormOverlay) setValue(name string, v form.Value) {
	if _, err := m.engine.Set(name, v); err != nil {
		formLog.Logf("set %s: %v", name, err)
		return
	}
	m.refocus()
}

// refocus moves focus off a field that the last change hid.
func (m *FormOverlay) refocus() {
	if c := m.focused(); c != nil && !m.engine.Visible(c.Descriptor().Name) {
		c.Blur()
		m.focus = m.nextVisible(m.focus, 1)
	}
}

func (m *FormOverlay) clearValue(name string) {
	if _, err := m.engine.Clear(name); err != nil {
		formLog.Logf("clear %s: %v", name, err)
		return
	}
	m.refocus()
}

func (m *FormOverlay) focused() control {
	if m.focus < 0 || m.focus >= len(m.controls) {
		return nil
	}
	return m.controls[m.focus]
}

// nextVisible walks from index from in direction dir (wrapping) to the
// next visible control, or -1.
func (m *FormOverlay) nextVisible(from, dir int) int {
	n := len(m.controls)
	if n == 0 {
		return -1
	}
	for step := 1; step <= n; step++ {
		i := ((from+dir*step)%n + n) % n
		if m.engine.Visible(m.controls[i].Descriptor().Name) {
			return i
		}
	}
	return -1
}

func (m *FormOverlay) moveFocus(dir int) tea.Cmd {
	next := m.nextVisible(m.focus, dir)
	if next < 0 || next == m.focus {
		return nil
	}
	if c := m.focused(); c != nil {
		c.Blur()
	}
	m.focus = next
	return m.controls[next].Focus()
}

// FocusField moves focus to the named field if it is visible.
func (m *FormOverlay) FocusField(name string) tea.Cmd {
	for i, c := range m.controls {
		if c.Descriptor().Name != name || !m.engine.Visible(name) {
			continue
		}
		if cur := m.focused(); cur != nil {
			cur.Blur()
		}
		m.focus = i
		return c.Focus()
	}
	return nil
}

func (m *FormOverlay) control(name string) control {
	for _, c := range m.controls {
		if c.Descriptor().Name == name {
			return c
		}
	}
	return nil
}

// Update implements the overlay's event handling.
func (m *FormOverlay) Update(msg tea.Msg) tea.Cmd {
	if m.finished {
		return nil
	}
	switch msg := msg.(type) {
	case submitResultMsg:
		if msg.owner != m.id {
			return nil
		}
		return m.finish(msg)

	case fieldMsg:
		owner, field := msg.target()
		if owner != m.id {
			return nil
		}
		if c := m.control(field); c != nil {
			return c.Update(msg)
		}
		return nil

	case SearchConfirmMsg:
		if m.ownsSearch(msg.ID) {
			return m.submit()
		}
		return nil

	case SearchCommittedMsg, SearchChangedMsg:
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if c := m.focused(); c != nil {
		return c.Update(msg)
	}
	return nil
}

func (m *FormOverlay) ownsSearch(id string) bool {
	for _, c := range m.controls {
		if s, ok := c.(interface{ ownsSearch(string) bool }); ok && s.ownsSearch(id) {
			return true
		}
	}
	return false
}

func (m *FormOverlay) handleKey(msg tea.KeyMsg) tea.Cmd {
	c := m.focused()
	if c != nil && c.Wants(msg) {
		return c.Update(msg)
	}
	switch {
	case key.Matches(msg, keys.Escape):
		return m.cancel()
	case key.Matches(msg, keys.Tab):
		return m.moveFocus(1)
	case key.Matches(msg, keys.ShiftTab):
		return m.moveFocus(-1)
	case key.Matches(msg, keys.Submit), key.Matches(msg, keys.Enter):
		return m.submit()
	case key.Matches(msg, keys.Up):
		return m.moveFocus(-1)
	case key.Matches(msg, keys.Down):
		return m.moveFocus(1)
	}
	if c != nil {
		return c.Update(msg)
	}
	return nil
}

// cancel dismisses the form. It is refused while a handler is running.
func (m *FormOverlay) cancel() tea.Cmd {
	if m.submission.Pending() {
		return nil
	}
	m.finished = true
	id := m.id
	return func() tea.Msg { return FormCancelledMsg{ID: id} }
}

// submit starts the handler with a snapshot of the payload. A second
// submit while one is pending is ignored. Closing the form does not cancel
// a running handler; its result is dropped instead.
func (m *FormOverlay) submit() tea.Cmd {
	ticket, ok := m.submission.Begin()
	if !ok {
		return nil
	}
	payload, handler := m.engine.Payload(), m.handler
	ctx, id := context.WithoutCancel(m.ctx), m.id
	formLog.Logf("overlay %d submit ticket %d", id, ticket)
	return func() tea.Msg {
		err := form.Deliver(ctx, handler, maps.Clone(payload))
		return submitResultMsg{owner: id, ticket: ticket, payload: payload, err: err}
	}
}

func (m *FormOverlay) finish(msg submitResultMsg) tea.Cmd {
	switch m.submission.Finish(msg.ticket, msg.err) {
	case form.ResultSucceeded:
		m.finished = true
		id, payload := m.id, msg.payload
		return func() tea.Msg { return FormSubmittedMsg{ID: id, Payload: payload} }
	case form.ResultFailed:
		formLog.Logf("overlay %d submit failed: %v", m.id, msg.err)
	}
	return nil
}

// Dispose closes the submission latch, tears down every control and
// cancels outstanding work. Only the first call does anything.
func (m *FormOverlay) Dispose() {
	m.finished = true
	m.release.Dispose()
}

// View renders the modal.
func (m *FormOverlay) View() string {
	b := NewOverlayBuilder(m.size, m.width)
	width := b.ContentWidth()

	if m.title != "" {
		b.Header(m.title)
	}
	if strings.TrimSpace(m.content) != "" {
		if m.render == nil {
			m.render = buildMarkdownRenderer("", width)
		}
		b.Line(m.render(m.content)).BlankLine()
	}

	for i, c := range m.controls {
		d := c.Descriptor()
		if !m.engine.Visible(d.Name) {
			continue
		}
		label := styleFieldLabel.Render(d.Title())
		if i == m.focus {
			label = styleFieldLabelFocused.Render("› " + d.Title())
		}
		b.Section(label, c.View(width))
	}

	if msg := m.submission.Err(); msg != "" {
		b.Line(renderInlineError(msg, width))
	}
	b.Footer(m.footerHints())
	return b.Build()
}

func (m *FormOverlay) footerHints() []footerHint {
	if m.submission.Pending() {
		return []footerHint{{"…", "Submitting"}}
	}
	if c, ok := m.focused().(interface{ dropdownOpen() bool }); ok && c.dropdownOpen() {
		return []footerHint{{"⏎", "Select"}, {"esc", "Close list"}}
	}
	return []footerHint{
		{"⏎", "Submit"},
		{"Tab", "Next"},
		{"esc", "Cancel"},
	}
}
