// Package memstore keeps mistake history in process memory. It backs tests
// and one-shot runs that should leave nothing on disk.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
)

type (
	// Store implements store.MistakeRepo.
	Store struct {
		mu       sync.RWMutex
		now      func() time.Time
		history  map[string][]mistake.Event
		index    map[string]eventRef
		learners []string
	}

	eventRef struct {
		learnerID string
		pos       int
	}

	// Option configures a Store.
	Option func(*Store)
)

var _ store.MistakeRepo = (*Store)(nil)

// WithClock overrides the clock used to timestamp inserted events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:     func() time.Time { return time.Now().UTC() },
		history: make(map[string][]mistake.Event),
		index:   make(map[string]eventRef),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Insert(_ context.Context, n mistake.New) (mistake.Event, int, error) {
	if err := mistake.Validate(n); err != nil {
		return mistake.Event{}, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := n.Stamp(uuid.NewString(), s.now().UTC())
	hist, seen := s.history[ev.LearnerID]
	if !seen {
		s.learners = append(s.learners, ev.LearnerID)
	}
	s.index[ev.ID] = eventRef{learnerID: ev.LearnerID, pos: len(hist)}
	hist = append(hist, ev)
	s.history[ev.LearnerID] = hist
	return ev, len(hist), nil
}

func (s *Store) HistoryFor(_ context.Context, learnerID string) ([]mistake.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]mistake.Event, len(s.history[learnerID]))
	copy(out, s.history[learnerID])
	return out, nil
}

func (s *Store) SetResolved(_ context.Context, eventID string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.index[eventID]
	if !ok {
		return fmt.Errorf("resolve %s: %w", eventID, store.ErrEventNotFound)
	}
	s.history[ref.learnerID][ref.pos].Resolved = resolved
	return nil
}

func (s *Store) Learners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.learners))
	copy(out, s.learners)
	return out, nil
}
