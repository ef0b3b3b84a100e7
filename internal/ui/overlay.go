package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
)

// extractShortError extracts a short, user-friendly error message for
// status lines and notices.
func extractShortError(fullError string, maxLen int) string {
	msg := fullError

	// Look for "Error:" pattern and extract from there
	if idx := strings.Index(msg, "Error:"); idx >= 0 {
		msg = strings.TrimSpace(msg[idx+6:])
	} else if idx := strings.Index(msg, "error:"); idx >= 0 {
		msg = strings.TrimSpace(msg[idx+6:])
	}

	// Take only the first line
	if idx := strings.Index(msg, "\n"); idx >= 0 {
		msg = msg[:idx]
	}
	// Also truncate at period if it makes sense
	if idx := strings.Index(msg, ". "); idx >= 0 && idx < maxLen {
		msg = msg[:idx]
	}

	return ansi.Truncate(strings.TrimSpace(msg), maxLen, "...")
}

// inlineErrorCells caps a submission error shown under the fields.
const inlineErrorCells = 240

// renderInlineError shows a submission error as the handler reported it,
// wrapped to the overlay width.
func renderInlineError(msg string, width int) string {
	if msg == "" {
		return ""
	}
	shown := ansi.Truncate(strings.TrimSpace(msg), inlineErrorCells, "…")
	return styleInlineError.Render(wordwrap.String("✗ "+shown, width))
}

// truncateCell cuts s to width display cells, keeping ANSI styling intact.
func truncateCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
