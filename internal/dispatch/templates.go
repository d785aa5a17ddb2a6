package dispatch

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

var templateFuncs = template.FuncMap{
	"minutes": func(seconds int) int { return (seconds + 30) / 60 },
	"orNA": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "N/A"
		}
		return s
	},
	"stamp": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
	"bullets": func(items []string) string {
		if len(items) == 0 {
			return "  (none)\n"
		}
		var b strings.Builder
		for _, it := range items {
			b.WriteString("  - " + it + "\n")
		}
		return b.String()
	},
}

const firstMistakeAdminText = `First Mistake Alert

A learner just made their first coding mistake and may need help.

Learner
  Name:      {{.Event.LearnerName}}
  Email:     {{.Event.LearnerEmail}}
  ID:        {{.Event.LearnerID}}
  Recorded:  {{stamp .Event.Timestamp}}

Mistake
  Type:        {{.Event.Type}}
  Topic:       {{.Event.Topic}}
  Difficulty:  {{.Event.Difficulty}}
  Lesson:      {{orNA .Event.LessonRef}}
  Attempts:    {{.Event.Attempts}}
  Time spent:  {{minutes .Event.TimeSpentSeconds}} minutes
  Hints used:  {{.Event.HintsUsed}}

Error message:
{{.Event.Message}}

Learner's code:
{{.Event.UserCode}}

The learner has been sent a consultation offer. Early outreach within 24
hours helps prevent frustration and dropout.
`

const firstMistakeLearnerText = `Hi {{.Event.LearnerName}},

We noticed you ran into a {{.Event.Type}} error while working on {{.Event.Topic}}.
That is completely normal, and a sign you are pushing yourself.

As part of the OpenBox Community you can book a free 15-minute session with a
C++ mentor to review your code, get learning material tailored to where you
are stuck, and ask questions in our Discord community.

Quick tips for now:
  - Take a short break and come back with fresh eyes
  - Read the error message carefully, it often names the fix
  - Break your code into smaller pieces you can test

Keep coding,
The OpenBox Community Team
`

const consultationText = `Hi {{.Report.LearnerName}},

Here is a summary of your C++ learning so far.

  Total mistakes:    {{.Report.TotalMistakes}}
  Overall progress:  {{.Report.OverallProgress}}

Topics you are working through:
{{bullets .Report.StrugglingTopics}}
Where to focus:
{{bullets .Report.ImprovementAreas}}
Recommended lessons:
{{bullets .Report.RecommendedLessons}}
We would like to offer you a free consultation with a C++ mentor to go over
these together. Reply to this email to pick a time.

The OpenBox Community Team
`

const weeklyReportText = `Weekly Mistake Report

Learner:           {{.Report.LearnerName}} <{{.Report.LearnerEmail}}>
Learner ID:        {{.Report.LearnerID}}
Report date:       {{stamp .Report.ReportDate}}
Overall progress:  {{.Report.OverallProgress}}
Total mistakes:    {{.Report.TotalMistakes}}

Mistakes by type:
{{range $type, $n := .Report.MistakesByType}}  {{$type}}: {{$n}}
{{end}}
Most common mistakes:
{{range .Report.MostCommonMistakes}}  - {{.}}
{{else}}  (none)
{{end}}
Struggling topics:
{{bullets .Report.StrugglingTopics}}
Improvement areas:
{{bullets .Report.ImprovementAreas}}
Recommended lessons:
{{bullets .Report.RecommendedLessons}}`

var (
	firstMistakeAdminTmpl   = template.Must(template.New("first-mistake-admin").Funcs(templateFuncs).Parse(firstMistakeAdminText))
	firstMistakeLearnerTmpl = template.Must(template.New("first-mistake-learner").Funcs(templateFuncs).Parse(firstMistakeLearnerText))
	consultationTmpl        = template.Must(template.New("consultation").Funcs(templateFuncs).Parse(consultationText))
	weeklyReportTmpl        = template.Must(template.New("weekly-report").Funcs(templateFuncs).Parse(weeklyReportText))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
