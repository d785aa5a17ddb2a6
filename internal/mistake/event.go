package mistake

import "time"

// Type is the closed set of mistake categories a learner can make.
type Type string

const (
	TypeSyntax       Type = "syntax"
	TypeLogic        Type = "logic"
	TypeCompilation  Type = "compilation"
	TypeRuntime      Type = "runtime"
	TypeBestPractice Type = "best-practice"
)

// AllTypes returns every mistake type in declaration order.
func AllTypes() []Type {
	return []Type{TypeSyntax, TypeLogic, TypeCompilation, TypeRuntime, TypeBestPractice}
}

// Valid reports whether t is a member of the enumeration.
func (t Type) Valid() bool {
	switch t {
	case TypeSyntax, TypeLogic, TypeCompilation, TypeRuntime, TypeBestPractice:
		return true
	}
	return false
}

// Difficulty is the level of the lesson content the mistake was made on.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is a member of the enumeration.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// New is a mistake event as submitted for insertion, before the store
// assigns its ID and timestamp.
type New struct {
	LearnerID        string     `json:"learnerId" validate:"notblank"`
	LearnerName      string     `json:"learnerName"`
	LearnerEmail     string     `json:"learnerEmail"`
	LessonRef        string     `json:"lessonRef,omitempty"`
	Type             Type       `json:"mistakeType" validate:"required,oneof=syntax logic compilation runtime best-practice"`
	Message          string     `json:"message" validate:"notblank"`
	UserCode         string     `json:"userCode"`
	CorrectCode      string     `json:"correctCode,omitempty"`
	Difficulty       Difficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Topic            string     `json:"topic" validate:"notblank"`
	Resolved         bool       `json:"resolved"`
	Attempts         int        `json:"attempts" validate:"min=1"`
	TimeSpentSeconds int        `json:"timeSpentSeconds" validate:"min=0"`
	HintsUsed        int        `json:"hintsUsed" validate:"min=0"`
}

// Event is one recorded learner mistake. Once stored, its LearnerID never
// changes; only Resolved may be toggled through the store.
type Event struct {
	ID               string     `json:"id"`
	LearnerID        string     `json:"learnerId"`
	LearnerName      string     `json:"learnerName"`
	LearnerEmail     string     `json:"learnerEmail"`
	Timestamp        time.Time  `json:"timestamp"`
	LessonRef        string     `json:"lessonRef,omitempty"`
	Type             Type       `json:"mistakeType"`
	Message          string     `json:"message"`
	UserCode         string     `json:"userCode"`
	CorrectCode      string     `json:"correctCode,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	Topic            string     `json:"topic"`
	Resolved         bool       `json:"resolved"`
	Attempts         int        `json:"attempts"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`
	HintsUsed        int        `json:"hintsUsed"`
}

// Stamp finalizes n into an Event with the given identity and creation time.
func (n New) Stamp(id string, ts time.Time) Event {
	return Event{
		ID:               id,
		LearnerID:        n.LearnerID,
		LearnerName:      n.LearnerName,
		LearnerEmail:     n.LearnerEmail,
		Timestamp:        ts,
		LessonRef:        n.LessonRef,
		Type:             n.Type,
		Message:          n.Message,
		UserCode:         n.UserCode,
		CorrectCode:      n.CorrectCode,
		Difficulty:       n.Difficulty,
		Topic:            n.Topic,
		Resolved:         n.Resolved,
		Attempts:         n.Attempts,
		TimeSpentSeconds: n.TimeSpentSeconds,
		HintsUsed:        n.HintsUsed,
	}
}
