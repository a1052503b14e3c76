package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
)

// maxUpdateRetries bounds optimistic retries when two writers race on a session.
const maxUpdateRetries = 5

var (
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrSessionConflict = errors.New("quiz session was modified concurrently")
)

// SessionStore keeps live quiz sessions and their drafts.
type SessionStore interface {
	Create(ctx context.Context, s *quiz.Session) error
	Load(ctx context.Context, id uuid.UUID) (*quiz.Session, error)
	// Update applies fn to the stored session atomically. If fn returns an
	// error nothing is written and the error is returned unchanged.
	Update(ctx context.Context, id uuid.UUID, fn func(*quiz.Session) error) (*quiz.Session, error)
	// UpdateWithDraft is Update with the saved draft read in the same
	// transaction; a draft written meanwhile retries fn with the new draft.
	UpdateWithDraft(ctx context.Context, id uuid.UUID, fn func(s *quiz.Session, draft string) error) (*quiz.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SaveDraft(ctx context.Context, id uuid.UUID, answer string) error
	ClearDraft(ctx context.Context, id uuid.UUID) error
}

// AttemptQueue hands graded answers to the persistence worker.
type AttemptQueue interface {
	PushAttempt(ctx context.Context, a model.Attempt) error
}

// RedisSessionStore stores sessions as JSON with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a RedisSessionStore.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (st *RedisSessionStore) Create(ctx context.Context, s *quiz.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := st.rdb.SetNX(ctx, config.CacheKey.QuizSessionKey(s.ID), raw, st.ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return fmt.Errorf("store session %s: %w", s.ID, ErrSessionConflict)
	}
	return nil
}

func (st *RedisSessionStore) Load(ctx context.Context, id uuid.UUID) (*quiz.Session, error) {
	raw, err := st.rdb.Get(ctx, config.CacheKey.QuizSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(raw)
}

func (st *RedisSessionStore) Update(ctx context.Context, id uuid.UUID, fn func(*quiz.Session) error) (*quiz.Session, error) {
	return st.update(ctx, id, false, func(s *quiz.Session, _ string) error { return fn(s) })
}

func (st *RedisSessionStore) UpdateWithDraft(ctx context.Context, id uuid.UUID, fn func(s *quiz.Session, draft string) error) (*quiz.Session, error) {
	return st.update(ctx, id, true, fn)
}

// update runs fn under WATCH on the session key, plus the draft key when
// withDraft is set.
func (st *RedisSessionStore) update(ctx context.Context, id uuid.UUID, withDraft bool, fn func(*quiz.Session, string) error) (*quiz.Session, error) {
	key := config.CacheKey.QuizSessionKey(id)
	draftKey := config.CacheKey.QuizDraftKey(id)
	keys := []string{key}
	if withDraft {
		keys = append(keys, draftKey)
	}
	var updated *quiz.Session

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var draft string
		if withDraft {
			draft, err = tx.Get(ctx, draftKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("get draft: %w", err)
			}
		}

		s, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if err := fn(s, draft); err != nil {
			return err
		}

		out, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, st.ttl)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := st.rdb.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrSessionConflict
}

// Delete drops a session and its draft.
func (st *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return st.rdb.Del(ctx, config.CacheKey.QuizSessionKey(id), config.CacheKey.QuizDraftKey(id)).Err()
}

func (st *RedisSessionStore) SaveDraft(ctx context.Context, id uuid.UUID, answer string) error {
	return st.rdb.Set(ctx, config.CacheKey.QuizDraftKey(id), answer, st.ttl).Err()
}

func (st *RedisSessionStore) ClearDraft(ctx context.Context, id uuid.UUID) error {
	return st.rdb.Del(ctx, config.CacheKey.QuizDraftKey(id)).Err()
}

// PushAttempt queues an attempt for the attempt worker.
func (st *RedisSessionStore) PushAttempt(ctx context.Context, a model.Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	return st.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err()
}

func decodeSession(raw []byte) (*quiz.Session, error) {
	var s quiz.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
