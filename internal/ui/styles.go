package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	colorAccent   = "#A3E635"
	colorDim      = "#6B7280"
	colorDarkGray = "#374151"
	colorWarning  = "#FBBF24"
)

// Styles groups the lipgloss styles the view renders with.
type Styles struct {
	Header      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Query       lipgloss.Style
	RowSelected lipgloss.Style
	Row         lipgloss.Style
	Tag         lipgloss.Style
	Count       lipgloss.Style
	Dim         lipgloss.Style
	Warning     lipgloss.Style
	Border      lipgloss.Style
}

// DefaultStyles returns the standard color styles.
func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)).Underline(true),
		TabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		Query:       lipgloss.NewStyle().Bold(true),
		RowSelected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Row:         lipgloss.NewStyle(),
		Tag:         lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		Count:       lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
		Warning:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning)),
		Border:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
	}
}

// NoColorStyles returns styles without color for dumb terminals.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:      plain.Bold(true),
		TabActive:   plain.Bold(true).Underline(true),
		TabInactive: plain,
		Query:       plain.Bold(true),
		RowSelected: plain.Bold(true).Reverse(true),
		Row:         plain,
		Tag:         plain,
		Count:       plain,
		Dim:         plain,
		Warning:     plain,
		Border:      plain,
	}
}
