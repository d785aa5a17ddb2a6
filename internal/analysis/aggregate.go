package analysis

import (
	"cmp"
	"slices"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

// TopN is how many entries MostCommonMistakes and StrugglingTopics keep.
const TopN = 3

// Aggregate holds the per-type and per-topic counts of a history.
type Aggregate struct {
	Total              int
	ByType             map[mistake.Type]int // sparse: absent types are omitted
	ByTopic            map[string]int
	MostCommonMistakes []mistake.Type
	StrugglingTopics   []string
}

// Summarize counts a history by type and topic. Ranked lists are ordered by
// count descending, ties broken by first occurrence in history.
func Summarize(history []mistake.Event) Aggregate {
	byType := make(map[mistake.Type]int)
	byTopic := make(map[string]int)
	var typeOrder []mistake.Type
	var topicOrder []string

	for _, ev := range history {
		if _, ok := byType[ev.Type]; !ok {
			typeOrder = append(typeOrder, ev.Type)
		}
		byType[ev.Type]++

		if _, ok := byTopic[ev.Topic]; !ok {
			topicOrder = append(topicOrder, ev.Topic)
		}
		byTopic[ev.Topic]++
	}

	return Aggregate{
		Total:              len(history),
		ByType:             byType,
		ByTopic:            byTopic,
		MostCommonMistakes: topByCount(typeOrder, byType, TopN),
		StrugglingTopics:   topByCount(topicOrder, byTopic, TopN),
	}
}

// topByCount ranks keys (given in first-seen order) by count descending.
// The sort is stable, so equal counts keep first-seen order.
func topByCount[K comparable](firstSeen []K, counts map[K]int, n int) []K {
	ranked := slices.Clone(firstSeen)
	slices.SortStableFunc(ranked, func(a, b K) int {
		return cmp.Compare(counts[b], counts[a])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []K{}
	}
	return ranked
}

// HasType reports whether t is among the most common mistake types.
func (a Aggregate) HasType(t mistake.Type) bool {
	return slices.Contains(a.MostCommonMistakes, t)
}
