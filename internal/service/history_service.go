package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// ErrHistoryNotFound is returned when no session row exists for an id.
var ErrHistoryNotFound = errors.New("session history not found")

// HistoryStore reads persisted session rows and attempts.
type HistoryStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuizSession, error)
	ListAttempts(ctx context.Context, sessionID uuid.UUID) ([]model.Attempt, error)
}

// HistoryService serves finished and abandoned sessions from Postgres,
// after their live state has expired from Redis.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// SessionHistory is a stored session with its attempts.
type SessionHistory struct {
	Session  *model.QuizSession `json:"session"`
	Attempts []model.Attempt    `json:"attempts"`
}

// Get returns the session row and its attempts in answer order.
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID) (*SessionHistory, error) {
	row, err := s.store.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session row: %w", err)
	}

	attempts, err := s.store.ListAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	return &SessionHistory{Session: row, Attempts: attempts}, nil
}
