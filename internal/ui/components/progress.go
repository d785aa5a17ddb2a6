package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/riddhika-19/openboxcodelearn/internal/ui/theme"
)

// CountBar displays a labelled horizontal bar sized by Count/Total.
type CountBar struct {
	Label      string
	LabelWidth int
	Count      int
	Total      int
	Width      int
}

// Fraction returns Count/Total clamped to [0, 1].
func (b CountBar) Fraction() float64 {
	if b.Total <= 0 || b.Count <= 0 {
		return 0
	}
	if b.Count >= b.Total {
		return 1
	}
	return float64(b.Count) / float64(b.Total)
}

// View renders the bar.
func (b CountBar) View() string {
	label := lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(b.LabelWidth).
		Render(b.Label)
	count := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %d", b.Count))

	barWidth := b.Width - lipgloss.Width(label) - lipgloss.Width(count) - 2
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * b.Fraction())
	if filled == 0 && b.Count > 0 {
		filled = 1
	}

	bar := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled))

	return label + "  " + bar + count
}
