package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/lifecycle"
)

// Overlay is anything the Host can mount in a slot: forms, prompts, the
// command palette and the demo panels.
type Overlay interface {
	lifecycle.Disposer
	ID() uint64
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
}

var overlaySeq atomic.Uint64

func nextOverlayID() uint64 {
	return overlaySeq.Add(1)
}

// FormSubmittedMsg is sent once a form's handler succeeded. The overlay
// is finished and waits to be closed.
type FormSubmittedMsg struct {
	ID      uint64
	Payload map[string]any
}

// FormCancelledMsg is sent when a form is dismissed without submitting.
type FormCancelledMsg struct {
	ID uint64
}

// CloseOverlayMsg asks the host to close an overlay.
type CloseOverlayMsg struct {
	ID uint64
}

// submitResultMsg carries the outcome of a form handler.
type submitResultMsg struct {
	owner   uint64
	ticket  int
	payload map[string]any
	err     error
}

// closeRequest reports the overlay a close-type message refers to.
func closeRequest(msg tea.Msg) (uint64, bool) {
	switch msg := msg.(type) {
	case FormSubmittedMsg:
		return msg.ID, true
	case FormCancelledMsg:
		return msg.ID, true
	case CloseOverlayMsg:
		return msg.ID, true
	}
	return 0, false
}
