package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// ProgressColor maps an overall progress label to its badge color.
func ProgressColor(p analysis.Progress) color.Color {
	switch p {
	case analysis.ProgressExcellent:
		return Success
	case analysis.ProgressGood:
		return Secondary
	case analysis.ProgressNeedsImprovement:
		return Warning
	default:
		return Error
	}
}

// ProgressBadge renders p as a colored pill.
func ProgressBadge(p analysis.Progress) string {
	return lipgloss.NewStyle().
		Background(ProgressColor(p)).
		Foreground(lipgloss.Color("#0F172A")).
		Bold(true).
		Padding(0, 1).
		Render(string(p))
}
