package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by the report table, the inspect view and status lines.
var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as a report's source name.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue renders statistic values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// status writes one-line outcome messages for commands whose real output
// goes to a file.
type status struct{ w io.Writer }

func (s status) line(icon lipgloss.Style, glyph, format string, args ...any) {
	fmt.Fprintln(s.w, icon.Render(glyph)+" "+fmt.Sprintf(format, args...))
}

func (s status) success(format string, args ...any) {
	s.line(lipgloss.NewStyle().Foreground(colorGreen), iconSuccess, format, args...)
}

func (s status) failure(format string, args ...any) {
	s.line(lipgloss.NewStyle().Foreground(colorRed), iconError, format, args...)
}

func (s status) info(format string, args ...any) {
	s.line(lipgloss.NewStyle().Foreground(colorGray), iconInfo, format, args...)
}

// file prints an indented "→ path" line.
func (s status) file(path string) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}
