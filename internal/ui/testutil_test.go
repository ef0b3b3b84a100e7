package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"formdeck/internal/form"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// cmdWait bounds how long runCmd waits for commands. Cursor blinks and the
// embed writer never finish in that time and are left running.
const cmdWait = 150 * time.Millisecond

func plain(s string) string { return ansi.Strip(s) }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func leftClick(y int) tea.MouseMsg {
	return tea.MouseMsg{X: 2, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

// runCmd runs cmd, expanding batches, and returns the messages produced
// within cmdWait.
func runCmd(cmd tea.Cmd) []tea.Msg {
	results := make(chan tea.Msg, 256)
	running := 0
	start := func(c tea.Cmd) {
		if c == nil {
			return
		}
		running++
		go func() { results <- c() }()
	}
	start(cmd)

	timer := time.NewTimer(cmdWait)
	defer timer.Stop()
	var msgs []tea.Msg
	for running > 0 {
		select {
		case msg := <-results:
			running--
			switch m := msg.(type) {
			case nil:
			case tea.BatchMsg:
				for _, c := range m {
					start(c)
				}
			default:
				msgs = append(msgs, m)
			}
		case <-timer.C:
			return msgs
		}
	}
	return msgs
}

// findMsg returns the first message of type T.
func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// feed delivers every message produced by cmd back into update, repeating
// until nothing new arrives.
func feed(update func(tea.Msg) tea.Cmd, cmd tea.Cmd) {
	for i := 0; i < 10 && cmd != nil; i++ {
		msgs := runCmd(cmd)
		if len(msgs) == 0 {
			return
		}
		var next []tea.Cmd
		for _, m := range msgs {
			next = append(next, update(m))
		}
		cmd = tea.Batch(next...)
	}
}

func mustFields(t *testing.T, yaml string) form.Fields {
	t.Helper()
	fields, err := form.ParseFields([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	return fields
}

func newTestForm(t *testing.T, opts FormOptions) *FormOverlay {
	t.Helper()
	o, err := NewFormOverlay(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewFormOverlay: %v", err)
	}
	t.Cleanup(o.Dispose)
	o.SetSize(120, 40)
	return o
}

// submitNow presses ctrl+s and delivers the handler result.
func submitNow(t *testing.T, o *FormOverlay) []tea.Msg {
	t.Helper()
	cmd := o.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	var out []tea.Msg
	for _, msg := range runCmd(cmd) {
		out = append(out, msg)
		out = append(out, runCmd(o.Update(msg))...)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
