package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"formdeck/internal/debug"
	"formdeck/internal/docstore"
	"formdeck/internal/lifecycle"
)

var hostLog = debug.Scope("host")

// Slot kinds. Each kind holds at most one overlay.
const (
	SlotRoot    = "root"
	SlotPalette = "palette"
	SlotForm    = "form"
	SlotPrompt  = "prompt"
)

// hostHeaderLines is the number of rows above the root panel.
const hostHeaderLines = 2

// HostOptions configures a Host.
type HostOptions struct {
	Store docstore.Store
	// Extra names are appended to every page search.
	Extra []string
	// Now stamps demo responses. Defaults to time.Now.
	Now func() time.Time
	// Commands are registered after the built-in demos.
	Commands []Command
}

// Host is the top-level program: a root panel, a stack of modal overlays
// and the command palette that opens them.
type Host struct {
	ctx    context.Context
	store  docstore.Store
	extra  []string
	now    func() time.Time
	keys   KeyMap
	width  int
	height int

	palette *Palette
	slots   lifecycle.Slots[Overlay]
	// order lists mounted handles bottom to top.
	order    []lifecycle.Handle
	unload   lifecycle.Stack
	showHelp bool
	status   string
	quitting bool
}

// NewHost builds a host and registers the demo commands. Quitting (or
// Shutdown) unregisters them and closes every overlay.
func NewHost(ctx context.Context, opts HostOptions) *Host {
	ctx, cancel := context.WithCancel(ctx)
	h := &Host{
		ctx:     ctx,
		store:   opts.Store,
		extra:   opts.Extra,
		now:     opts.Now,
		keys:    DefaultKeyMap(),
		palette: NewPalette(),
	}
	if h.store == nil {
		h.store = docstore.NewMemory()
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.unload.Defer(cancel)
	h.unload.Defer(h.closeAll)
	for _, c := range append(demoCommands(), opts.Commands...) {
		h.unload.Push(h.palette.Register(c))
	}
	return h
}

// Palette returns the command registry.
func (h *Host) Palette() *Palette { return h.palette }

// Store returns the store overlays are bound to.
func (h *Host) Store() docstore.Store { return h.store }

// Context is cancelled on shutdown.
func (h *Host) Context() context.Context { return h.ctx }

// Status returns the last status line.
func (h *Host) Status() string { return h.status }

// Mount opens o under kind, replacing and disposing whatever that kind
// held, and returns o's init command.
func (h *Host) Mount(kind string, o Overlay) tea.Cmd {
	if _, prev, ok := h.slots.Current(kind); ok {
		h.forget(prev)
	}
	hd := h.slots.Open(kind, o)
	h.order = append(h.order, hd)
	o.SetSize(h.width, h.height)
	hostLog.Logf("mount %s overlay %d", kind, o.ID())
	return o.Init()
}

// Close closes the overlay with id. Every dismissal path ends here, so
// a second request for the same overlay does nothing.
func (h *Host) Close(id uint64) bool {
	for i := len(h.order) - 1; i >= 0; i-- {
		hd := h.order[i]
		o, ok := h.slots.Lookup(hd)
		if !ok || o.ID() != id {
			continue
		}
		h.order = append(h.order[:i], h.order[i+1:]...)
		hostLog.Logf("close %s overlay %d", hd.Kind(), id)
		return h.slots.Close(hd)
	}
	return false
}

// Mounted returns the overlay currently held by kind.
func (h *Host) Mounted(kind string) (Overlay, bool) {
	o, _, ok := h.slots.Current(kind)
	return o, ok
}

// OpenPalette mounts the command palette.
func (h *Host) OpenPalette() tea.Cmd {
	return h.Mount(SlotPalette, newPaletteOverlay(h.palette))
}

// Run runs the command registered under label.
func (h *Host) Run(label string) tea.Cmd {
	c, ok := h.palette.Lookup(label)
	if !ok || c.Run == nil {
		hostLog.Logf("unknown command %q", label)
		return nil
	}
	hostLog.Logf("run %q", label)
	return c.Run(h)
}

// Shutdown disposes the unload stack. It is safe to call more than once.
func (h *Host) Shutdown() {
	h.unload.Dispose()
}

func (h *Host) forget(hd lifecycle.Handle) {
	for i, cur := range h.order {
		if cur == hd {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

func (h *Host) closeAll() {
	h.order = nil
	h.slots.CloseAll()
}

// top returns the topmost overlay and its handle.
func (h *Host) top() (Overlay, lifecycle.Handle, bool) {
	for i := len(h.order) - 1; i >= 0; i-- {
		if o, ok := h.slots.Lookup(h.order[i]); ok {
			return o, h.order[i], true
		}
	}
	return nil, lifecycle.Handle{}, false
}

func (h *Host) Init() tea.Cmd {
	return nil
}

func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if id, ok := closeRequest(msg); ok {
		if m, ok := msg.(FormSubmittedMsg); ok {
			h.status = "Submitted " + summarizePayload(m.Payload)
		}
		if _, ok := msg.(FormCancelledMsg); ok {
			h.status = "Cancelled"
		}
		h.Close(id)
		return h, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width, h.height = msg.Width, msg.Height
		for _, hd := range h.order {
			if o, ok := h.slots.Lookup(hd); ok {
				o.SetSize(msg.Width, msg.Height)
			}
		}
		return h, nil

	case runCommandMsg:
		return h, h.Run(msg.label)

	case statusMsg:
		h.status = string(msg)
		return h, nil

	case tea.KeyMsg:
		return h, h.handleKey(msg)

	case tea.MouseMsg:
		o, hd, ok := h.top()
		if !ok || hd.Kind() != SlotRoot {
			return h, nil
		}
		msg.Y -= hostHeaderLines
		return h, o.Update(msg)
	}

	// Everything else (async results, blinks, field messages) fans out;
	// overlays drop what is not addressed to them.
	var cmds []tea.Cmd
	for _, hd := range append([]lifecycle.Handle(nil), h.order...) {
		if o, ok := h.slots.Lookup(hd); ok {
			cmds = append(cmds, o.Update(msg))
		}
	}
	return h, tea.Batch(cmds...)
}

func (h *Host) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return h.quit()
	}
	if h.showHelp {
		if key.Matches(msg, h.keys.Help) || key.Matches(msg, h.keys.Escape) {
			h.showHelp = false
		}
		return nil
	}

	o, hd, ok := h.top()
	if ok && hd.Kind() != SlotRoot {
		return o.Update(msg)
	}
	if ok {
		// The root panel owns printable keys, so only ctrl+p opens the
		// palette over it.
		if msg.Type == tea.KeyCtrlP {
			return h.OpenPalette()
		}
		return o.Update(msg)
	}

	switch {
	case key.Matches(msg, h.keys.Palette):
		return h.OpenPalette()
	case key.Matches(msg, h.keys.Help):
		h.showHelp = true
	case key.Matches(msg, h.keys.Quit):
		return h.quit()
	}
	return nil
}

func (h *Host) quit() tea.Cmd {
	h.quitting = true
	h.Shutdown()
	return tea.Quit
}

func (h *Host) View() string {
	if h.quitting {
		return ""
	}
	header := styleAppHeader.Render("formdeck")
	if h.status != "" {
		header += " " + styleMuted.Render(truncateCell(h.status, max(h.width-12, 10)))
	}

	if h.showHelp {
		return centerOverlay(renderHelp(h.keys, h.palette.Labels(), h.width), h.width, h.height)
	}

	o, hd, ok := h.top()
	if ok && hd.Kind() != SlotRoot {
		return centerOverlay(o.View(), h.width, h.height)
	}

	body := styleMuted.Render("Press : or ctrl+p for the command palette, ? for help.")
	hints := []footerHint{{":", "Commands"}, {"?", "Help"}, {"q", "Quit"}}
	if ok {
		body = o.View()
		hints = []footerHint{{"^P", "Commands"}, {"esc", "Close panel"}, {"^C", "Quit"}}
	}

	out := lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	footer := renderHints(hints)
	if h.height > 0 {
		gap := h.height - lipgloss.Height(out) - lipgloss.Height(footer)
		if gap > 0 {
			out += strings.Repeat("\n", gap)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out, footer)
}

// statusMsg replaces the host status line.
type statusMsg string
