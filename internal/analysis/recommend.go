package analysis

import (
	"strings"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

// MaxRecommendedLessons caps Recommendations.Lessons.
const MaxRecommendedLessons = 3

// Rule pairs a predicate over an Aggregate with the advice it contributes.
type Rule struct {
	Name   string
	Match  func(Aggregate) bool
	Advice string
}

// TopicContains matches when any struggling topic contains substr.
func TopicContains(substr string) func(Aggregate) bool {
	return func(a Aggregate) bool {
		for _, topic := range a.StrugglingTopics {
			if strings.Contains(topic, substr) {
				return true
			}
		}
		return false
	}
}

// CommonType matches when t is among the most common mistake types.
func CommonType(t mistake.Type) func(Aggregate) bool {
	return func(a Aggregate) bool { return a.HasType(t) }
}

// DefaultLessonRules returns the lesson rules in declaration order.
func DefaultLessonRules() []Rule {
	return []Rule{
		{Name: "variables-topic", Match: TopicContains("Variables"), Advice: "Review: C++ Data Types and Variable Declaration"},
		{Name: "loops-topic", Match: TopicContains("Loops"), Advice: "Practice: Loop Control and Iteration Patterns"},
		{Name: "syntax-type", Match: CommonType(mistake.TypeSyntax), Advice: "C++ Syntax Fundamentals Refresher"},
		{Name: "compilation-type", Match: CommonType(mistake.TypeCompilation), Advice: "Understanding Compiler Errors and Debugging"},
	}
}

// DefaultAreaRules returns the improvement-area rules in declaration order.
func DefaultAreaRules() []Rule {
	return []Rule{
		{Name: "syntax", Match: CommonType(mistake.TypeSyntax), Advice: "Focus on C++ syntax rules and proper formatting"},
		{Name: "logic", Match: CommonType(mistake.TypeLogic), Advice: "Practice problem-solving and algorithm thinking"},
		{Name: "compilation", Match: CommonType(mistake.TypeCompilation), Advice: "Learn to read and understand compiler error messages"},
	}
}

// Recommendations is the advice derived from one Aggregate.
type Recommendations struct {
	Lessons          []string
	ImprovementAreas []string
}

// Recommender maps an Aggregate to advice through two ordered rule tables.
type Recommender struct {
	lessons []Rule
	areas   []Rule
}

// NewRecommender builds a Recommender from caller-supplied rule tables.
func NewRecommender(lessonRules, areaRules []Rule) *Recommender {
	return &Recommender{lessons: lessonRules, areas: areaRules}
}

// DefaultRecommender uses DefaultLessonRules and DefaultAreaRules.
func DefaultRecommender() *Recommender {
	return NewRecommender(DefaultLessonRules(), DefaultAreaRules())
}

// Recommend evaluates both tables. Lessons are the first
// MaxRecommendedLessons matches; improvement areas are uncapped.
func (r *Recommender) Recommend(a Aggregate) Recommendations {
	return Recommendations{
		Lessons:          applyRules(r.lessons, a, MaxRecommendedLessons),
		ImprovementAreas: applyRules(r.areas, a, 0),
	}
}

// applyRules collects the advice of matching rules; limit 0 means no cap.
func applyRules(rules []Rule, a Aggregate, limit int) []string {
	out := []string{}
	for _, rule := range rules {
		if limit > 0 && len(out) == limit {
			break
		}
		if rule.Match != nil && rule.Match(a) {
			out = append(out, rule.Advice)
		}
	}
	return out
}
