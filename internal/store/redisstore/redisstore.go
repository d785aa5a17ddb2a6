// Package redisstore keeps mistake history in Redis so several openbox
// processes can share one log.
//
// Layout under the key prefix:
//
//	<prefix>:learner:<id>  list of JSON events, insertion order
//	<prefix>:events        hash eventID -> learnerID
//	<prefix>:learners      list of learner IDs, first-appearance order
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
)

// DefaultPrefix namespaces keys when none is configured.
const DefaultPrefix = "openbox"

// appendScript appends an event and registers the learner on first sight in
// one atomic step. It returns the learner's new history length.
var appendScript = goredis.NewScript(`
local n = redis.call('RPUSH', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
if n == 1 then
	redis.call('RPUSH', KEYS[3], ARGV[3])
end
return n
`)

// Store implements store.MistakeRepo over a Redis client.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ store.MistakeRepo = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the clock used to timestamp inserted events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps an existing client. The caller owns the client.
func New(rdb goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		rdb:    rdb,
		prefix: DefaultPrefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, opts...), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) learnerKey(id string) string { return s.prefix + ":learner:" + id }
func (s *Store) eventsKey() string           { return s.prefix + ":events" }
func (s *Store) learnersKey() string         { return s.prefix + ":learners" }

func (s *Store) Insert(ctx context.Context, n mistake.New) (mistake.Event, int, error) {
	if err := mistake.Validate(n); err != nil {
		return mistake.Event{}, 0, err
	}

	ev := n.Stamp(uuid.NewString(), s.now().UTC())
	raw, err := json.Marshal(ev)
	if err != nil {
		return mistake.Event{}, 0, fmt.Errorf("marshal mistake event: %w", err)
	}

	size, err := appendScript.Run(ctx, s.rdb,
		[]string{s.learnerKey(ev.LearnerID), s.eventsKey(), s.learnersKey()},
		raw, ev.ID, ev.LearnerID,
	).Int()
	if err != nil {
		return mistake.Event{}, 0, fmt.Errorf("append mistake event: %w", err)
	}
	return ev, size, nil
}

func (s *Store) HistoryFor(ctx context.Context, learnerID string) ([]mistake.Event, error) {
	raws, err := s.rdb.LRange(ctx, s.learnerKey(learnerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	events := make([]mistake.Event, 0, len(raws))
	for _, raw := range raws {
		var ev mistake.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode mistake event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *Store) SetResolved(ctx context.Context, eventID string, resolved bool) error {
	learnerID, err := s.rdb.HGet(ctx, s.eventsKey(), eventID).Result()
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("resolve %s: %w", eventID, store.ErrEventNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup event: %w", err)
	}

	key := s.learnerKey(learnerID)
	txf := func(tx *goredis.Tx) error {
		raws, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		for i, raw := range raws {
			var ev mistake.Event
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				return fmt.Errorf("decode mistake event: %w", err)
			}
			if ev.ID != eventID {
				continue
			}
			ev.Resolved = resolved
			updated, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("marshal mistake event: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
				p.LSet(ctx, key, int64(i), updated)
				return nil
			})
			return err
		}
		return fmt.Errorf("resolve %s: %w", eventID, store.ErrEventNotFound)
	}

	for attempt := 0; attempt < 3; attempt++ {
		err = s.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, goredis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("resolve %s: %w", eventID, err)
}

func (s *Store) Learners(ctx context.Context) ([]string, error) {
	learners, err := s.rdb.LRange(ctx, s.learnersKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	if learners == nil {
		learners = []string{}
	}
	return learners, nil
}
