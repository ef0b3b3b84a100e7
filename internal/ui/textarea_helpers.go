package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
)

// NewBaseTextarea returns a textarea configured for overlays. It removes
// the default prompt and line numbers so the whole interior is input space.
func NewBaseTextarea(width, height int) textarea.Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(height)
	return ta
}

// TextareaContentWidth calculates the inner width available for textarea content
// given a container width and horizontal padding.
func TextareaContentWidth(containerWidth, padding int) int {
	inner := containerWidth - (padding * 2)
	if inner < 1 {
		return 1
	}
	return inner
}
