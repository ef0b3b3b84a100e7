package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	styleHelpSectionHeader = lipgloss.NewStyle().Foreground(cCyan).Bold(true)
	styleHelpUnderline     = lipgloss.NewStyle().Foreground(cGray)
	styleHelpKey           = lipgloss.NewStyle().Foreground(cGold).Bold(true)
	styleHelpDesc          = lipgloss.NewStyle().Foreground(cText)
)

// helpSection represents a group of keybindings for display.
type helpSection struct {
	title string
	rows  [][]string // Each row: [keys, description]
}

// getHelpSections lists the host bindings, then one row per palette
// command. Text is derived from binding.Help().
func getHelpSections(km KeyMap, commands []string) []helpSection {
	row := func(b key.Binding) []string {
		h := b.Help()
		return []string{h.Key, h.Desc}
	}
	sections := []helpSection{
		{
			title: "HOST",
			rows: [][]string{
				row(km.Palette),
				row(km.Help),
				row(km.Quit),
			},
		},
		{
			title: "FORMS",
			rows: [][]string{
				row(km.Tab),
				row(km.ShiftTab),
				row(km.Toggle),
				row(km.Submit),
				row(km.Escape),
			},
		},
	}
	if len(commands) > 0 {
		cmds := helpSection{title: "COMMANDS"}
		for _, c := range commands {
			cmds.rows = append(cmds.rows, []string{"", c})
		}
		sections = append(sections, cmds)
	}
	return sections
}

// renderHelp builds the help modal body.
func renderHelp(km KeyMap, commands []string, width int) string {
	b := NewOverlayBuilder(OverlaySizeStandard, width)
	b.Header("Help")
	for i, section := range getHelpSections(km, commands) {
		if i > 0 {
			b.BlankLine()
		}
		b.Line(renderHelpSectionTable(section))
	}
	b.FooterText("Press ? or Esc to close")
	return b.Build()
}

// renderHelpSectionTable renders a single help section using lipgloss/table.
func renderHelpSectionTable(section helpSection) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return styleHelpKey.Width(12)
			}
			return styleHelpDesc
		}).
		Rows(section.rows...)

	header := styleHelpSectionHeader.Render(section.title)
	underline := styleHelpUnderline.Render(strings.Repeat("─", len(section.title)))

	// Hidden borders add an empty top row.
	tableStr := strings.TrimPrefix(t.String(), "\n")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		underline,
		tableStr,
	)
}
