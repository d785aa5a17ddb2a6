package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

func TestRecommend_DeclarationOrderAndCap(t *testing.T) {
	agg := Aggregate{
		MostCommonMistakes: []mistake.Type{mistake.TypeCompilation, mistake.TypeSyntax},
		StrugglingTopics:   []string{"Loops & Iterations", "Variables & Data Types"},
	}
	got := DefaultRecommender().Recommend(agg)

	assert.Equal(t, []string{
		"Review: C++ Data Types and Variable Declaration",
		"Practice: Loop Control and Iteration Patterns",
		"C++ Syntax Fundamentals Refresher",
	}, got.Lessons)
	assert.Equal(t, []string{
		"Focus on C++ syntax rules and proper formatting",
		"Learn to read and understand compiler error messages",
	}, got.ImprovementAreas)
}

func TestRecommend_NoMatches(t *testing.T) {
	agg := Aggregate{
		MostCommonMistakes: []mistake.Type{mistake.TypeRuntime, mistake.TypeBestPractice},
		StrugglingTopics:   []string{"Pointers"},
	}
	got := DefaultRecommender().Recommend(agg)
	assert.NotNil(t, got.Lessons)
	assert.Empty(t, got.Lessons)
	assert.Empty(t, got.ImprovementAreas)
}

func TestRecommend_TopicSubstring(t *testing.T) {
	agg := Aggregate{StrugglingTopics: []string{"Nested Loops"}}
	got := DefaultRecommender().Recommend(agg)
	assert.Equal(t, []string{"Practice: Loop Control and Iteration Patterns"}, got.Lessons)
}

func TestRecommend_AreasUncapped(t *testing.T) {
	agg := Aggregate{MostCommonMistakes: []mistake.Type{mistake.TypeLogic, mistake.TypeSyntax, mistake.TypeCompilation}}
	got := DefaultRecommender().Recommend(agg)
	assert.Len(t, got.ImprovementAreas, 3)
	assert.Equal(t, "Focus on C++ syntax rules and proper formatting", got.ImprovementAreas[0])
}

func TestRecommend_CustomTables(t *testing.T) {
	r := NewRecommender(
		[]Rule{
			{Name: "pointers", Match: TopicContains("Pointer"), Advice: "Pointer drills"},
			{Name: "nil match", Advice: "never"},
		},
		[]Rule{{Name: "runtime", Match: CommonType(mistake.TypeRuntime), Advice: "Use a debugger"}},
	)
	got := r.Recommend(Aggregate{
		MostCommonMistakes: []mistake.Type{mistake.TypeRuntime},
		StrugglingTopics:   []string{"Pointers"},
	})
	assert.Equal(t, []string{"Pointer drills"}, got.Lessons)
	assert.Equal(t, []string{"Use a debugger"}, got.ImprovementAreas)
}
