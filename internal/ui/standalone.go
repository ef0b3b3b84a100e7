package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	appErrors "formdeck/internal/errors"
)

// standalone runs one overlay as a whole program and quits when it closes.
type standalone struct {
	overlay   Overlay
	width     int
	height    int
	submitted bool
	payload   map[string]any
}

func (m *standalone) Init() tea.Cmd {
	return m.overlay.Init()
}

func (m *standalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.overlay.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.overlay.Dispose()
			return m, tea.Quit
		}
	case FormSubmittedMsg:
		if msg.ID == m.overlay.ID() {
			m.submitted = true
			m.payload = msg.Payload
		}
	}
	if id, ok := closeRequest(msg); ok && id == m.overlay.ID() {
		m.overlay.Dispose()
		return m, tea.Quit
	}
	return m, m.overlay.Update(msg)
}

func (m *standalone) View() string {
	return centerOverlay(m.overlay.View(), m.width, m.height)
}

// RunOverlay runs o until it closes and reports the submitted payload, if
// any. The overlay is disposed before RunOverlay returns.
func RunOverlay(ctx context.Context, o Overlay, opts ...tea.ProgramOption) (map[string]any, error) {
	m := &standalone{overlay: o}
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	o.Dispose()
	if err != nil {
		return nil, fmt.Errorf("run overlay: %w", err)
	}
	if !m.submitted {
		return nil, appErrors.New(appErrors.CodeCancelled, "form cancelled", nil)
	}
	return m.payload, nil
}

// RunForm builds a FormOverlay from opts and runs it standalone.
func RunForm(ctx context.Context, opts FormOptions, progOpts ...tea.ProgramOption) (map[string]any, error) {
	o, err := NewFormOverlay(ctx, opts)
	if err != nil {
		return nil, err
	}
	return RunOverlay(ctx, o, progOpts...)
}
