package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	appErrors "formdeck/internal/errors"
	"formdeck/internal/form"
	"formdeck/internal/lifecycle"
)

// PromptOptions configures a single-answer prompt.
type PromptOptions struct {
	Title         string
	Question      string
	DefaultAnswer string
}

// promptField is the only field of a prompt form.
const promptField = "value"

// NewPromptOverlay builds a one-field form whose submission resolves the
// returned future. Closing the overlay first abandons the future.
func NewPromptOverlay(ctx context.Context, opts PromptOptions) (*FormOverlay, *lifecycle.Future[string], error) {
	def := form.String(opts.DefaultAnswer)
	future := lifecycle.NewFuture[string]()
	o, err := NewFormOverlay(ctx, FormOptions{
		Title:   opts.Title,
		Content: opts.Question,
		Fields:  form.Fields{{Name: promptField, Kind: form.KindText, Default: &def}},
		OnSubmit: func(_ context.Context, payload map[string]any) error {
			answer, _ := payload[promptField].(string)
			future.Resolve(answer)
			return nil
		},
		Size: OverlaySizeNarrow,
	})
	if err != nil {
		return nil, nil, err
	}
	o.OnClose(future)
	return o, future, nil
}

// Prompt runs a prompt as its own program and returns the answer. A
// dismissed prompt reports the cancelled code.
func Prompt(ctx context.Context, opts PromptOptions, progOpts ...tea.ProgramOption) (string, error) {
	o, future, err := NewPromptOverlay(ctx, opts)
	if err != nil {
		return "", err
	}
	if _, err := RunOverlay(ctx, o, progOpts...); err != nil {
		return "", err
	}
	answer, err := future.Wait(ctx)
	if errors.Is(err, lifecycle.ErrAbandoned) {
		return "", appErrors.New(appErrors.CodeCancelled, "prompt cancelled", err)
	}
	return answer, err
}
