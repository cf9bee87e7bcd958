package ui

import "github.com/charmbracelet/lipgloss"

// Palette groups the colors the scan view renders with.
type Palette struct {
	Text      lipgloss.Color
	Subtle    lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Highlight lipgloss.Color
}

// NewPalette builds a palette from hex color strings.
func NewPalette(text, subtle, err, warning, highlight string) Palette {
	return Palette{
		Text:      lipgloss.Color(text),
		Subtle:    lipgloss.Color(subtle),
		Error:     lipgloss.Color(err),
		Warning:   lipgloss.Color(warning),
		Highlight: lipgloss.Color(highlight),
	}
}

// DefaultPalette is the scan view's color scheme.
func DefaultPalette() Palette {
	return NewPalette("#E8E8EF", "#6C6C80", "#FF6B6B", "#F2C14E", "#1DB954")
}

// NewStyle creates a foreground style for the given color.
func NewStyle(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// NewBold creates a bold foreground style for the given color.
func NewBold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// NewEm creates an italic foreground style for the given color.
func NewEm(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Italic(true)
}
