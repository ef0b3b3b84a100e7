package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Overlay Width System
//
//	Style.Width(n)   sets the CONTENT width (padding is inside it)
//	Border           adds 2 to the visual width, outside the Width value
//
// Example: Width(48), Padding(1,2), RoundedBorder renders 50 columns wide
// with 44 usable columns of content.

// Standard overlay content widths (before padding/border).
const (
	// OverlayWidthNarrow is for prompts and short pickers.
	OverlayWidthNarrow = 40

	// OverlayWidthStandard is for most forms.
	OverlayWidthStandard = 56

	// OverlayWidthWide is for forms with embedded editors.
	OverlayWidthWide = 72

	overlayHPadding = 2
)

// OverlaySize represents standard overlay sizing presets.
type OverlaySize int

const (
	OverlaySizeNarrow OverlaySize = iota
	OverlaySizeStandard
	OverlaySizeWide
	OverlaySizeResponsive // Uses terminal width
)

// OverlayWidth returns the content width for a given size preset.
// For responsive sizing, pass the terminal width.
func OverlayWidth(size OverlaySize, termWidth int) int {
	switch size {
	case OverlaySizeNarrow:
		return OverlayWidthNarrow
	case OverlaySizeStandard:
		return OverlayWidthStandard
	case OverlaySizeWide:
		return OverlayWidthWide
	case OverlaySizeResponsive:
		return responsiveOverlayWidth(termWidth)
	default:
		return OverlayWidthStandard
	}
}

// responsiveOverlayWidth is min(120, max(56, 0.7 * termWidth)).
func responsiveOverlayWidth(termWidth int) int {
	if termWidth == 0 {
		return OverlayWidthStandard
	}
	width := int(float64(termWidth) * 0.7)
	if width < OverlayWidthStandard {
		width = OverlayWidthStandard
	}
	if width > 120 {
		width = 120
	}
	return width
}

// OverlayContentWidth returns the usable width inside an overlay's padding.
func OverlayContentWidth(boxWidth int) int {
	inner := boxWidth - (overlayHPadding * 2)
	if inner < 1 {
		return 1
	}
	return inner
}

// OverlayBuilder helps construct consistent overlay content: header,
// body lines and a footer of key hints.
type OverlayBuilder struct {
	boxWidth     int
	contentWidth int
	lines        []string
}

// NewOverlayBuilder creates a builder with the specified size preset.
func NewOverlayBuilder(size OverlaySize, termWidth int) *OverlayBuilder {
	boxWidth := OverlayWidth(size, termWidth)
	return &OverlayBuilder{
		boxWidth:     boxWidth,
		contentWidth: OverlayContentWidth(boxWidth),
		lines:        make([]string, 0, 16),
	}
}

// BoxWidth returns the lipgloss Width value for styling containers.
func (b *OverlayBuilder) BoxWidth() int {
	return b.boxWidth
}

// ContentWidth returns the usable width for text content.
func (b *OverlayBuilder) ContentWidth() int {
	return b.contentWidth
}

// Header adds a styled title and divider.
func (b *OverlayBuilder) Header(title string) *OverlayBuilder {
	b.lines = append(b.lines, styleOverlayTitle().Render(title))
	b.lines = append(b.lines, b.Divider())
	b.lines = append(b.lines, "")
	return b
}

// Divider returns a styled horizontal divider line.
func (b *OverlayBuilder) Divider() string {
	return styleOverlayDivider().Render(strings.Repeat("─", b.contentWidth))
}

// Line adds a content line.
func (b *OverlayBuilder) Line(content string) *OverlayBuilder {
	b.lines = append(b.lines, content)
	return b
}

// BlankLine adds an empty line for spacing.
func (b *OverlayBuilder) BlankLine() *OverlayBuilder {
	return b.Line("")
}

// Section adds a labeled section with header and content.
func (b *OverlayBuilder) Section(label string, content string) *OverlayBuilder {
	b.lines = append(b.lines, label)
	b.lines = append(b.lines, content)
	b.lines = append(b.lines, "")
	return b
}

// Footer adds a divider and the key hints.
func (b *OverlayBuilder) Footer(hints []footerHint) *OverlayBuilder {
	b.lines = append(b.lines, b.Divider())
	b.lines = append(b.lines, renderHints(hints))
	return b
}

// FooterText adds a divider and custom footer text.
func (b *OverlayBuilder) FooterText(text string) *OverlayBuilder {
	b.lines = append(b.lines, b.Divider())
	b.lines = append(b.lines, styleMuted.Render(text))
	return b
}

// Build returns the final styled overlay content.
func (b *OverlayBuilder) Build() string {
	content := strings.Join(b.lines, "\n")
	return styleOverlay().Width(b.boxWidth).Render(content)
}

// BuildDanger returns the content with a red border.
func (b *OverlayBuilder) BuildDanger() string {
	content := strings.Join(b.lines, "\n")
	return styleOverlayDanger().Width(b.boxWidth).Render(content)
}

// Overlay Styles

func styleOverlay() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(cSurface).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cPurple).
		Padding(1, overlayHPadding)
}

func styleOverlayDanger() lipgloss.Style {
	return styleOverlay().
		BorderForeground(cRed)
}

func styleOverlayTitle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(cGold).
		Bold(true)
}

func styleOverlayDivider() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(cPurple)
}

// centerOverlay places rendered overlay content in the middle of a
// width x height area.
func centerOverlay(content string, width, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// footerHint is a key plus its short description.
type footerHint struct {
	key  string
	desc string
}

// keyPill renders a single key hint as a pill with description.
func keyPill(key, desc string) string {
	return styleKeyPill.Render(" "+key+" ") + " " + styleKeyDesc.Render(desc)
}

func renderHints(hints []footerHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyPill(h.key, h.desc))
	}
	return strings.Join(parts, "  ")
}
