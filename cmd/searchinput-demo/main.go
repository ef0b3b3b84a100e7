// Demo program to visually test the SearchInput component
package main

import (
	"fmt"
	"os"

	"formdeck/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// titleLines is the number of lines rendered above the input.
const titleLines = 4

type model struct {
	input     *ui.SearchInput
	selected  string
	confirmed bool
	quit      bool
}

func initialModel() model {
	options := []string{
		"Weekly Review",
		"Daily Notes",
		"Reading List",
		"Project Atlas",
		"Project Borealis",
		"Recipes",
		"Travel Plans",
		"Meeting Notes",
		"Ideas",
		"Inbox",
		"Someday",
	}

	in := ui.NewSearchInput("demo", options).
		WithPlaceholder("Search pages...").
		WithWidth(40)
	in.Focus()

	return model{input: in}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case "esc":
			if !m.input.IsOpen() {
				m.quit = true
				return m, tea.Quit
			}
		}

	case tea.MouseMsg:
		msg.Y -= titleLines

	case ui.SearchCommittedMsg:
		m.selected = msg.Value
		m.confirmed = false
		return m, nil

	case ui.SearchConfirmMsg:
		m.selected = msg.Value
		m.confirmed = true
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	confirmBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)
)

func (m model) View() string {
	if m.quit {
		return ""
	}

	s := titleStyle.Render("SearchInput Demo")
	s += "\n\n"
	s += "Page:\n"
	s += m.input.View()
	s += "\n\n"

	if m.selected != "" {
		s += "Selected: " + selectedStyle.Render(m.selected)
		if m.confirmed {
			s += " " + confirmBadge.Render("(confirmed)")
		}
		s += "\n"
	}

	s += helpStyle.Render("\ntype to filter • ↑/↓ move • Enter or click select • Esc close • Esc again quit")

	return s
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
