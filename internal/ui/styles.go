package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// One fixed palette. Every style in the package derives from these.
var (
	cPurple     = lipgloss.AdaptiveColor{Light: "#6c48c5", Dark: "99"}
	cCyan       = lipgloss.AdaptiveColor{Light: "#0077aa", Dark: "39"}
	cGreen      = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "118"}
	cRed        = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "203"}
	cGold       = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "220"}
	cGray       = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "240"}
	cBrightGray = lipgloss.AdaptiveColor{Light: "#757575", Dark: "246"}
	cText       = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "255"}
	cHighlight  = lipgloss.AdaptiveColor{Light: "#d1c4e9", Dark: "57"}
	cSurface    = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "235"}
)

var (
	styleAppHeader = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(cPurple).
			Bold(true).
			Padding(0, 1)

	styleMuted = lipgloss.NewStyle().Foreground(cBrightGray)
	styleText  = lipgloss.NewStyle().Foreground(cText)

	styleFieldLabel = lipgloss.NewStyle().
			Foreground(cCyan).
			Bold(true)

	styleFieldLabelFocused = lipgloss.NewStyle().
				Foreground(cGold).
				Bold(true)

	styleInlineError = lipgloss.NewStyle().
				Foreground(cRed).
				Bold(true)

	styleNotice = lipgloss.NewStyle().
			Foreground(cBrightGray).
			Italic(true)

	styleKeyPill = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(cGray).
			Bold(true)

	styleKeyDesc = lipgloss.NewStyle().Foreground(cBrightGray)

	styleOptionSelected = lipgloss.NewStyle().
				Foreground(cGold).
				Bold(true)

	styleCheckOn  = lipgloss.NewStyle().Foreground(cGreen).Bold(true)
	styleCheckOff = lipgloss.NewStyle().Foreground(cGray)
)

// Search dropdown styles.

func styleSearchInput() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cGray).
		Padding(0, 1)
}

func styleSearchInputFocused() lipgloss.Style {
	return styleSearchInput().BorderForeground(cCyan)
}

func styleSearchOption() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(cText).
		PaddingLeft(2)
}

func styleSearchHighlight() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(cCyan).
		Background(cHighlight).
		Bold(true).
		PaddingLeft(1)
}

func styleSearchNoMatch() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(cGray).
		Italic(true)
}

// buildMarkdownRenderer returns a renderer for overlay content. Rendering
// failures fall back to plain word wrapping.
func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
