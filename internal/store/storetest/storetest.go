// Package storetest holds the behavioral contract every store.MistakeRepo
// implementation must satisfy.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
)

// Factory returns an empty repo whose inserts are stamped with now.
type Factory func(t *testing.T, now func() time.Time) store.MistakeRepo

// Clock is a manually advanced time source safe for concurrent use.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock starts a clock at t.
func NewClock(t time.Time) *Clock { return &Clock{t: t} }

// Now returns the current clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Event returns a valid insert for learnerID with the given type and topic.
func Event(learnerID string, typ mistake.Type, topic string) mistake.New {
	return mistake.New{
		LearnerID:    learnerID,
		LearnerName:  "Learner " + learnerID,
		LearnerEmail: learnerID + "@example.com",
		Type:         typ,
		Message:      "expected ';' before '}' token",
		UserCode:     "int main() { return 0 }",
		Difficulty:   mistake.DifficultyBeginner,
		Topic:        topic,
		Attempts:     1,
	}
}

// Run exercises the MistakeRepo contract against repos built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("InsertAssignsIdentity", func(t *testing.T) { testInsertAssignsIdentity(t, newRepo) })
	t.Run("InsertRejectsInvalid", func(t *testing.T) { testInsertRejectsInvalid(t, newRepo) })
	t.Run("HistorySizePerLearner", func(t *testing.T) { testHistorySize(t, newRepo) })
	t.Run("HistoryUnknownLearner", func(t *testing.T) { testHistoryUnknown(t, newRepo) })
	t.Run("HistoryInsertionOrder", func(t *testing.T) { testInsertionOrder(t, newRepo) })
	t.Run("RoundTripsFields", func(t *testing.T) { testRoundTrip(t, newRepo) })
	t.Run("SetResolved", func(t *testing.T) { testSetResolved(t, newRepo) })
	t.Run("SetResolvedUnknown", func(t *testing.T) { testSetResolvedUnknown(t, newRepo) })
	t.Run("Learners", func(t *testing.T) { testLearners(t, newRepo) })
	t.Run("ConcurrentFirstInsert", func(t *testing.T) { testConcurrentFirstInsert(t, newRepo) })
}

var epoch = time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

func testInsertAssignsIdentity(t *testing.T, newRepo Factory) {
	clock := NewClock(epoch)
	repo := newRepo(t, clock.Now)
	ctx := context.Background()

	a, _, err := repo.Insert(ctx, Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, _, err := repo.Insert(ctx, Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.Timestamp.Equal(epoch), "timestamp = %v", a.Timestamp)
	assert.True(t, b.Timestamp.Equal(epoch.Add(time.Minute)), "timestamp = %v", b.Timestamp)
}

func testInsertRejectsInvalid(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)
	ctx := context.Background()

	bad := Event("ada", mistake.TypeSyntax, "Basic Syntax")
	bad.Attempts = 0
	_, _, err := repo.Insert(ctx, bad)

	var inv *mistake.InvalidEventError
	require.True(t, errors.As(err, &inv), "got %v", err)
	assert.True(t, inv.Has("attempts"))

	hist, err := repo.HistoryFor(ctx, "ada")
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func testHistorySize(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)
	ctx := context.Background()

	_, n, err := repo.Insert(ctx, Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, n, err = repo.Insert(ctx, Event("bob", mistake.TypeLogic, "Loops"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, n, err = repo.Insert(ctx, Event("ada", mistake.TypeLogic, "Loops"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func testHistoryUnknown(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)

	hist, err := repo.HistoryFor(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, hist)
	assert.Len(t, hist, 0)
}

func testInsertionOrder(t *testing.T, newRepo Factory) {
	// Identical timestamps: order must follow insertion.
	repo := newRepo(t, NewClock(epoch).Now)
	ctx := context.Background()

	var want []string
	for i := 0; i < 5; i++ {
		n := Event("ada", mistake.TypeSyntax, fmt.Sprintf("Topic %d", i))
		ev, _, err := repo.Insert(ctx, n)
		require.NoError(t, err)
		want = append(want, ev.ID)
	}
	_, _, err := repo.Insert(ctx, Event("bob", mistake.TypeSyntax, "Other"))
	require.NoError(t, err)

	hist, err := repo.HistoryFor(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, hist, 5)
	for i, ev := range hist {
		assert.Equal(t, want[i], ev.ID)
		assert.Equal(t, fmt.Sprintf("Topic %d", i), ev.Topic)
	}
}

func testRoundTrip(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)
	ctx := context.Background()

	n := Event("ada", mistake.TypeCompilation, "Functions")
	n.LessonRef = "lesson-7"
	n.CorrectCode = "int main() { return 0; }"
	n.Difficulty = mistake.DifficultyAdvanced
	n.Resolved = true
	n.Attempts = 4
	n.TimeSpentSeconds = 310
	n.HintsUsed = 2

	inserted, _, err := repo.Insert(ctx, n)
	require.NoError(t, err)
	plain, _, err := repo.Insert(ctx, Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)

	hist, err := repo.HistoryFor(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, hist, 2)

	got := hist[0]
	assert.Equal(t, inserted.ID, got.ID)
	assert.True(t, got.Timestamp.Equal(inserted.Timestamp))
	got.Timestamp = inserted.Timestamp
	assert.Equal(t, inserted, got)

	assert.Empty(t, hist[1].LessonRef)
	assert.Empty(t, hist[1].CorrectCode)
	assert.Equal(t, plain.ID, hist[1].ID)
}

func testSetResolved(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)
	ctx := context.Background()

	ev, _, err := repo.Insert(ctx, Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)
	require.False(t, ev.Resolved)

	require.NoError(t, repo.SetResolved(ctx, ev.ID, true))
	hist, err := repo.HistoryFor(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, hist[0].Resolved)

	require.NoError(t, repo.SetResolved(ctx, ev.ID, false))
	hist, err = repo.HistoryFor(ctx, "ada")
	require.NoError(t, err)
	assert.False(t, hist[0].Resolved)
}

func testSetResolvedUnknown(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)

	err := repo.SetResolved(context.Background(), "does-not-exist", true)
	assert.ErrorIs(t, err, store.ErrEventNotFound)
}

func testLearners(t *testing.T, newRepo Factory) {
	clock := NewClock(epoch)
	repo := newRepo(t, clock.Now)
	ctx := context.Background()

	empty, err := repo.Learners(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"carol", "ada", "carol", "bob", "ada"} {
		_, _, err := repo.Insert(ctx, Event(id, mistake.TypeLogic, "Loops"))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	learners, err := repo.Learners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "ada", "bob"}, learners)
}

func testConcurrentFirstInsert(t *testing.T, newRepo Factory) {
	repo := newRepo(t, NewClock(epoch).Now)
	ctx := context.Background()

	const writers = 8
	sizes := make([]int, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, sizes[i], errs[i] = repo.Insert(ctx, Event("ada", mistake.TypeRuntime, "Pointers"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Ints(sizes)
	for i, n := range sizes {
		assert.Equal(t, i+1, n, "each insert must observe a distinct history size")
	}
}
