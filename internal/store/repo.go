package store

import (
	"context"
	"errors"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

// ErrEventNotFound is returned when an operation names an event ID the store
// has never assigned.
var ErrEventNotFound = errors.New("mistake event not found")

// MistakeRepo is the append-mostly log of learner mistakes.
type MistakeRepo interface {
	// Insert validates n, assigns its ID and timestamp, and appends it to the
	// learner's history. The returned size is the learner's history length
	// including this event, observed atomically with the insert.
	Insert(ctx context.Context, n mistake.New) (mistake.Event, int, error)

	// HistoryFor returns the learner's events in insertion order. Unknown
	// learners yield an empty slice.
	HistoryFor(ctx context.Context, learnerID string) ([]mistake.Event, error)

	// SetResolved flips the resolved flag of one event.
	SetResolved(ctx context.Context, eventID string, resolved bool) error

	// Learners lists every learner with at least one event, in order of
	// first appearance.
	Learners(ctx context.Context) ([]string, error)
}
