package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/result"
)

// memStore round-trips sessions through JSON like the Redis store does.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID][]byte
	drafts   map[uuid.UUID]string
	attempts []model.Attempt

	// beforeUpdate runs ahead of each update, outside the lock.
	beforeUpdate func()
}

func newMemStore() *memStore {
	return &memStore{sessions: map[uuid.UUID][]byte{}, drafts: map[uuid.UUID]string{}}
}

func (m *memStore) Create(_ context.Context, s *quiz.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrSessionConflict
	}
	raw, _ := json.Marshal(s)
	m.sessions[s.ID] = raw
	return nil
}

func (m *memStore) Load(_ context.Context, id uuid.UUID) (*quiz.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(raw)
}

func (m *memStore) Update(ctx context.Context, id uuid.UUID, fn func(*quiz.Session) error) (*quiz.Session, error) {
	return m.UpdateWithDraft(ctx, id, func(s *quiz.Session, _ string) error { return fn(s) })
}

func (m *memStore) UpdateWithDraft(_ context.Context, id uuid.UUID, fn func(*quiz.Session, string) error) (*quiz.Session, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, err := decodeSession(raw)
	if err != nil {
		return nil, err
	}
	if err := fn(s, m.drafts[id]); err != nil {
		return nil, err
	}
	m.sessions[id], _ = json.Marshal(s)
	return s, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.drafts, id)
	return nil
}

func (m *memStore) SaveDraft(_ context.Context, id uuid.UUID, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[id] = answer
	return nil
}

func (m *memStore) Draft(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drafts[id], nil
}

func (m *memStore) ClearDraft(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
	return nil
}

func (m *memStore) PushAttempt(_ context.Context, a model.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return nil
}

type memRecorder struct {
	created   []model.QuizSession
	completed map[uuid.UUID]result.Summary
	createErr error
}

func newMemRecorder() *memRecorder {
	return &memRecorder{completed: map[uuid.UUID]result.Summary{}}
}

func (r *memRecorder) Create(_ context.Context, s *model.QuizSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *s)
	return nil
}

func (r *memRecorder) Complete(_ context.Context, id uuid.UUID, summary result.Summary, _ time.Time) error {
	r.completed[id] = summary
	return nil
}

// memQuestions is an in-memory QuestionStore.
type memQuestions struct {
	questions []model.Question
	upserts   int
}

func (m *memQuestions) List(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	var out []model.Question
	for _, q := range m.questions {
		if filter.Match(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuestions) ListPage(ctx context.Context, filter model.QuestionFilter, limit, offset int) ([]model.Question, int, error) {
	all, _ := m.List(ctx, filter)
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *memQuestions) UpsertBatch(_ context.Context, questions []model.Question) (int64, error) {
	m.upserts++
	byID := make(map[uuid.UUID]int, len(m.questions))
	for i, q := range m.questions {
		byID[q.ID] = i
	}
	for _, q := range questions {
		if i, ok := byID[q.ID]; ok {
			m.questions[i] = q
			continue
		}
		m.questions = append(m.questions, q)
	}
	return int64(len(questions)), nil
}

func (m *memQuestions) UpdateKeywords(_ context.Context, keywords map[uuid.UUID]string) error {
	for i, q := range m.questions {
		if kw, ok := keywords[q.ID]; ok {
			m.questions[i].Keywords = kw
		}
	}
	return nil
}

func (m *memQuestions) Stats(_ context.Context) (*model.QuestionStats, error) {
	stats := &model.QuestionStats{ByType: map[model.QuestionType]int{}, ByYear: map[int]int{}}
	for _, q := range m.questions {
		stats.Total++
		stats.ByType[q.Type]++
		stats.ByYear[q.Year]++
	}
	return stats, nil
}
