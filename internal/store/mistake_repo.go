package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

const mistakeTable = "mistake_events"

var mistakeColumns = []string{
	"id", "learner_id", "learner_name", "learner_email", "created_at",
	"lesson_ref", "mistake_type", "message", "user_code", "correct_code",
	"difficulty", "topic", "resolved", "attempts", "time_spent_seconds",
	"hints_used",
}

// mistakeRepo implements MistakeRepo over the mistake_events table. The
// autoincrement seq column is the insertion order.
type mistakeRepo struct {
	s *Store
}

func (r *mistakeRepo) Insert(ctx context.Context, n mistake.New) (mistake.Event, int, error) {
	if err := mistake.Validate(n); err != nil {
		return mistake.Event{}, 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev := n.Stamp(uuid.NewString(), r.s.now().UTC())

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return mistake.Event{}, 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(mistakeTable).
		Columns(mistakeColumns...).
		Values(
			ev.ID, ev.LearnerID, ev.LearnerName, ev.LearnerEmail, ev.Timestamp.UnixNano(),
			nullString(ev.LessonRef), string(ev.Type), ev.Message, ev.UserCode, nullString(ev.CorrectCode),
			string(ev.Difficulty), ev.Topic, ev.Resolved, ev.Attempts, ev.TimeSpentSeconds,
			ev.HintsUsed,
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return mistake.Event{}, 0, fmt.Errorf("insert mistake event: %w", err)
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(mistakeTable)).
		Where(entsql.EQ("learner_id", ev.LearnerID)).
		Query()
	var size int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&size); err != nil {
		return mistake.Event{}, 0, fmt.Errorf("count learner history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return mistake.Event{}, 0, fmt.Errorf("commit insert: %w", err)
	}
	return ev, size, nil
}

func (r *mistakeRepo) HistoryFor(ctx context.Context, learnerID string) ([]mistake.Event, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(mistakeColumns...).
		From(entsql.Table(mistakeTable)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Asc("seq")).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	events := []mistake.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mistake event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return events, nil
}

func (r *mistakeRepo) SetResolved(ctx context.Context, eventID string, resolved bool) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Update(mistakeTable).
		Set("resolved", resolved).
		Where(entsql.EQ("id", eventID)).
		Query()

	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update resolved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update resolved: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("resolve %s: %w", eventID, ErrEventNotFound)
	}
	return nil
}

func (r *mistakeRepo) Learners(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("learner_id", entsql.As(entsql.Min("seq"), "first_seq")).
		From(entsql.Table(mistakeTable)).
		GroupBy("learner_id").
		OrderBy(entsql.Asc("first_seq")).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	learners := []string{}
	for rows.Next() {
		var (
			id    string
			first int64
		)
		if err := rows.Scan(&id, &first); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		learners = append(learners, id)
	}
	return learners, rows.Err()
}

func scanEvent(rows *sql.Rows) (mistake.Event, error) {
	var (
		ev          mistake.Event
		createdAt   int64
		lessonRef   sql.NullString
		correctCode sql.NullString
		typ, diff   string
	)
	err := rows.Scan(
		&ev.ID, &ev.LearnerID, &ev.LearnerName, &ev.LearnerEmail, &createdAt,
		&lessonRef, &typ, &ev.Message, &ev.UserCode, &correctCode,
		&diff, &ev.Topic, &ev.Resolved, &ev.Attempts, &ev.TimeSpentSeconds,
		&ev.HintsUsed,
	)
	if err != nil {
		return mistake.Event{}, err
	}
	ev.Timestamp = time.Unix(0, createdAt).UTC()
	ev.LessonRef = lessonRef.String
	ev.CorrectCode = correctCode.String
	ev.Type = mistake.Type(typ)
	ev.Difficulty = mistake.Difficulty(diff)
	return ev, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
