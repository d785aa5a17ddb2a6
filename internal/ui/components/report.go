package components

import (
	"sort"
	"strconv"

	"charm.land/lipgloss/v2"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/ui/theme"
)

// ReportCard renders a learner report for the terminal.
func ReportCard(r analysis.Report, width int) string {
	if width < 40 {
		width = 40
	}
	inner := width - 6 // border + padding

	name := r.LearnerName
	if name == "" {
		name = r.LearnerID
	}

	var sections []string
	sections = append(sections,
		theme.Title.Render(name)+"  "+theme.ProgressBadge(r.OverallProgress),
		theme.Label.Render(r.LearnerID+" · "+r.ReportDate.Local().Format("2006-01-02 15:04")),
		"",
		theme.Heading.Render("Mistakes by type"),
	)

	types := make([]mistake.Type, 0, len(r.MistakesByType))
	for t := range r.MistakesByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		sections = append(sections, CountBar{
			Label:      string(t),
			LabelWidth: 14,
			Count:      r.MistakesByType[t],
			Total:      r.TotalMistakes,
			Width:      inner,
		}.View())
	}
	sections = append(sections, theme.Label.Render("total: ")+theme.Body.Render(strconv.Itoa(r.TotalMistakes)))

	sections = append(sections, listSection("Most common", typeStrings(r.MostCommonMistakes))...)
	sections = append(sections, listSection("Struggling topics", r.StrugglingTopics)...)
	sections = append(sections, listSection("Improvement areas", r.ImprovementAreas)...)
	sections = append(sections, listSection("Recommended lessons", r.RecommendedLessons)...)

	return theme.Card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func listSection(title string, items []string) []string {
	out := []string{"", theme.Heading.Render(title)}
	if len(items) == 0 {
		return append(out, theme.Hint.Render("none"))
	}
	for _, item := range items {
		out = append(out, theme.Body.Render("• "+item))
	}
	return out
}

func typeStrings(ts []mistake.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
