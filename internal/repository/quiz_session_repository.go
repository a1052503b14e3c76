package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/result"
)

// QuizSessionRepository handles quiz session and attempt data access.
type QuizSessionRepository struct {
	pool *pgxpool.Pool
}

// NewQuizSessionRepository creates a new QuizSessionRepository.
func NewQuizSessionRepository(pool *pgxpool.Pool) *QuizSessionRepository {
	return &QuizSessionRepository{pool: pool}
}

// Create inserts the summary row of a newly started session.
func (r *QuizSessionRepository) Create(ctx context.Context, s *model.QuizSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (id, parent_id, mode, question_count, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.ParentID, s.Mode, s.Questions, s.StartedAt,
	)
	return err
}

// Complete stores the final totals of a finished session.
func (r *QuizSessionRepository) Complete(ctx context.Context, id uuid.UUID, summary result.Summary, finishedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions
		 SET finished_at = $1, final_score = $2, max_score = $3, percentage = $4, tier = $5
		 WHERE id = $6`,
		finishedAt, summary.TotalScore, summary.MaxScore, summary.Percentage, summary.Tier, id,
	)
	return err
}

// GetByID retrieves a session summary row.
func (r *QuizSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, parent_id, mode, question_count, started_at, finished_at, final_score, max_score, percentage, tier
		 FROM quiz_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.ParentID, &s.Mode, &s.Questions, &s.StartedAt, &s.FinishedAt, &s.FinalScore, &s.MaxScore, &s.Percentage, &s.Tier)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// BulkInsertAttempts stores attempts in one statement. Re-delivered attempts
// are ignored by their (session_id, position) key.
func (r *QuizSessionRepository) BulkInsertAttempts(ctx context.Context, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}

	n := len(attempts)
	sessionIDs := make([]uuid.UUID, n)
	questionIDs := make([]uuid.UUID, n)
	positions := make([]int32, n)
	answers := make([]string, n)
	correct := make([]bool, n)
	scores := make([]int32, n)
	maxScores := make([]int32, n)
	elapsed := make([]int64, n)
	timedOut := make([]bool, n)
	submittedAt := make([]time.Time, n)

	for i, a := range attempts {
		sessionIDs[i] = a.SessionID
		questionIDs[i] = a.QuestionID
		positions[i] = int32(a.Position)
		answers[i] = a.UserAnswer
		correct[i] = a.IsCorrect
		scores[i] = int32(a.Score)
		maxScores[i] = int32(a.MaxScore)
		elapsed[i] = a.ElapsedMs
		timedOut[i] = a.TimedOut
		submittedAt[i] = a.SubmittedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO attempts (session_id, question_id, position, user_answer, is_correct,
		                      score, max_score, elapsed_ms, timed_out, submitted_at)
		SELECT * FROM UNNEST(
			$1::uuid[], $2::uuid[], $3::int[], $4::text[], $5::bool[],
			$6::int[], $7::int[], $8::bigint[], $9::bool[], $10::timestamptz[]
		)
		ON CONFLICT (session_id, position) DO NOTHING`,
		sessionIDs, questionIDs, positions, answers, correct,
		scores, maxScores, elapsed, timedOut, submittedAt,
	)
	return err
}

// InsertAttempt stores a single attempt; used when a bulk insert fails.
func (r *QuizSessionRepository) InsertAttempt(ctx context.Context, a model.Attempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (session_id, question_id, position, user_answer, is_correct,
		                       score, max_score, elapsed_ms, timed_out, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (session_id, position) DO NOTHING`,
		a.SessionID, a.QuestionID, a.Position, a.UserAnswer, a.IsCorrect,
		a.Score, a.MaxScore, a.ElapsedMs, a.TimedOut, a.SubmittedAt,
	)
	return err
}

// ListAttempts returns a session's persisted attempts in answer order.
func (r *QuizSessionRepository) ListAttempts(ctx context.Context, sessionID uuid.UUID) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, position, user_answer, is_correct,
		        score, max_score, elapsed_ms, timed_out, submitted_at
		 FROM attempts WHERE session_id = $1
		 ORDER BY position`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.Attempt])
}
