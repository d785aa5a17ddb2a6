package mistake

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validNew() New {
	return New{
		LearnerID:    "ada@example.com",
		LearnerName:  "Ada",
		LearnerEmail: "ada@example.com",
		Type:         TypeSyntax,
		Message:      "expected ';' before '}' token",
		UserCode:     "int main() { return 0 }",
		Difficulty:   DifficultyBeginner,
		Topic:        "Basic Syntax",
		Attempts:     1,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validNew()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*New)
		field string
	}{
		{"blank learner", func(n *New) { n.LearnerID = "  " }, "learnerId"},
		{"missing type", func(n *New) { n.Type = "" }, "mistakeType"},
		{"unknown type", func(n *New) { n.Type = "typo" }, "mistakeType"},
		{"blank message", func(n *New) { n.Message = "" }, "message"},
		{"unknown difficulty", func(n *New) { n.Difficulty = "expert" }, "difficulty"},
		{"blank topic", func(n *New) { n.Topic = "" }, "topic"},
		{"zero attempts", func(n *New) { n.Attempts = 0 }, "attempts"},
		{"negative time", func(n *New) { n.TimeSpentSeconds = -1 }, "timeSpentSeconds"},
		{"negative hints", func(n *New) { n.HintsUsed = -2 }, "hintsUsed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := validNew()
			tt.edit(&n)
			err := Validate(n)
			var inv *InvalidEventError
			if !errors.As(err, &inv) {
				t.Fatalf("got %v, want *InvalidEventError", err)
			}
			if !inv.Has(tt.field) {
				t.Errorf("fields = %+v, want %q among them", inv.Fields, tt.field)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := Validate(New{})
	var inv *InvalidEventError
	if !errors.As(err, &inv) {
		t.Fatalf("got %v, want *InvalidEventError", err)
	}
	for _, f := range []string{"learnerId", "mistakeType", "message", "difficulty", "topic", "attempts"} {
		if !inv.Has(f) {
			t.Errorf("missing violation for %q in %+v", f, inv.Fields)
		}
	}
	if !strings.HasPrefix(inv.Error(), "invalid mistake event: ") {
		t.Errorf("error text = %q", inv.Error())
	}
}

func TestStamp(t *testing.T) {
	n := validNew()
	n.CorrectCode = "int main() { return 0; }"
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	ev := n.Stamp("evt-1", ts)
	if ev.ID != "evt-1" || !ev.Timestamp.Equal(ts) {
		t.Errorf("identity = (%q, %v)", ev.ID, ev.Timestamp)
	}
	if ev.LearnerID != n.LearnerID || ev.Type != n.Type || ev.Topic != n.Topic || ev.CorrectCode != n.CorrectCode {
		t.Errorf("fields not copied: %+v", ev)
	}
}

func TestTypeValid(t *testing.T) {
	for _, ty := range AllTypes() {
		if !ty.Valid() {
			t.Errorf("%q should be valid", ty)
		}
	}
	if Type("style").Valid() {
		t.Error("unknown type reported valid")
	}
	if !DifficultyAdvanced.Valid() || Difficulty("hard").Valid() {
		t.Error("difficulty validity wrong")
	}
}
