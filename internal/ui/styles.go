// Package ui provides terminal styling for the nvsearch CLI.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - single accent color for a quiet, readable CLI.
const (
	ColorAccent   = "75"  // Soft blue for titles and scores
	ColorWhite    = "255" // Important text
	ColorGray     = "245" // Secondary text, snippets
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds the styles used when rendering search results.
type Styles struct {
	Title   lipgloss.Style
	Score   lipgloss.Style
	Snippet lipgloss.Style
	Dim     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the styles used by the CLI output.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccent)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent)),
		Snippet: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}
