package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
	"github.com/riddhika-19/openboxcodelearn/internal/store/storetest"
)

func TestMistakeRepoContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.MistakeRepo {
		return New(WithClock(now))
	})
}

func TestHistoryForReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, _, err := s.Insert(ctx, storetest.Event("ada", mistake.TypeSyntax, "Basic Syntax")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hist, _ := s.HistoryFor(ctx, "ada")
	hist[0].Topic = "mutated"

	again, _ := s.HistoryFor(ctx, "ada")
	if again[0].Topic != "Basic Syntax" {
		t.Errorf("stored event mutated through returned slice: %q", again[0].Topic)
	}
}
