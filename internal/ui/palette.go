package ui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/lifecycle"
)

// Command is an entry of the command palette.
type Command struct {
	Label string
	// Run is called on the host's event loop when the command is chosen.
	Run func(h *Host) tea.Cmd
}

type paletteEntry struct {
	id  uint64
	cmd Command
}

// Palette is the ordered set of registered commands. It is safe for
// concurrent use so extensions may register from any goroutine.
type Palette struct {
	mu      sync.Mutex
	seq     uint64
	entries []paletteEntry
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{}
}

// Register adds c and returns the disposer that removes it again.
func (p *Palette) Register(c Command) lifecycle.Disposer {
	p.mu.Lock()
	p.seq++
	id := p.seq
	p.entries = append(p.entries, paletteEntry{id: id, cmd: c})
	p.mu.Unlock()

	return lifecycle.Once(lifecycle.DisposerFunc(func() { p.remove(id) }))
}

func (p *Palette) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.id == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}

// Labels returns the registered labels in registration order.
func (p *Palette) Labels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	labels := make([]string, len(p.entries))
	for i, e := range p.entries {
		labels[i] = e.cmd.Label
	}
	return labels
}

// Lookup finds the earliest registered command with label.
func (p *Palette) Lookup(label string) (Command, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.cmd.Label == label {
			return e.cmd, true
		}
	}
	return Command{}, false
}

// runCommandMsg asks the host to run a palette command.
type runCommandMsg struct {
	label string
}

// paletteOverlay searches the palette's labels.
type paletteOverlay struct {
	id      uint64
	palette *Palette
	input   *SearchInput
	width   int
	height  int
}

func newPaletteOverlay(p *Palette) *paletteOverlay {
	id := nextOverlayID()
	o := &paletteOverlay{id: id, palette: p}
	o.input = NewSearchInput(fmt.Sprintf("palette/%d", id), nil).
		WithPlaceholder("Type a command…")
	return o
}

func (o *paletteOverlay) ID() uint64 { return o.id }
func (o *paletteOverlay) Dispose()   {}

func (o *paletteOverlay) SetSize(width, height int) {
	o.width, o.height = width, height
	o.input.WithWidth(OverlayContentWidth(OverlayWidth(OverlaySizeNarrow, width)))
}

func (o *paletteOverlay) Init() tea.Cmd {
	o.input.SetCandidates(o.palette.Labels())
	return o.input.Focus()
}

func (o *paletteOverlay) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SearchCommittedMsg:
		if msg.ID == o.input.ID {
			return o.run(msg.Value)
		}
		return nil
	case SearchConfirmMsg:
		if msg.ID != o.input.ID {
			return nil
		}
		if _, ok := o.palette.Lookup(strings.TrimSpace(msg.Value)); ok {
			return o.run(strings.TrimSpace(msg.Value))
		}
		return nil
	case SearchChangedMsg:
		return nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) && !o.input.IsOpen() {
			return o.close()
		}
	}
	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return cmd
}

func (o *paletteOverlay) close() tea.Cmd {
	id := o.id
	return func() tea.Msg { return CloseOverlayMsg{ID: id} }
}

// run closes the palette and asks the host to run label. The close only
// names the palette, so the two may arrive in either order.
func (o *paletteOverlay) run(label string) tea.Cmd {
	return tea.Batch(o.close(), func() tea.Msg { return runCommandMsg{label: label} })
}

func (o *paletteOverlay) View() string {
	b := NewOverlayBuilder(OverlaySizeNarrow, o.width)
	b.Header("Command Palette")
	b.Line(o.input.View())
	if strings.TrimSpace(o.input.Value()) == "" {
		b.BlankLine()
		for _, label := range o.palette.Labels() {
			b.Line(styleMuted.Render("  " + label))
		}
	}
	b.Footer([]footerHint{{"⏎", "Run"}, {"↓", "Results"}, {"esc", "Close"}})
	return b.Build()
}
