package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// MonitorRepository aggregates persisted sessions and attempts for the admin dashboard.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// SessionActivity counts sessions started at or after since.
func (r *MonitorRepository) SessionActivity(ctx context.Context, since time.Time) (model.SessionActivity, error) {
	var a model.SessionActivity
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE finished_at IS NOT NULL),
		        COUNT(*) FILTER (WHERE mode = 'REVIEW'),
		        COALESCE(AVG(percentage) FILTER (WHERE finished_at IS NOT NULL), 0)
		 FROM quiz_sessions
		 WHERE started_at >= $1`,
		since,
	).Scan(&a.Started, &a.Finished, &a.Reviews, &a.AveragePercentage)
	return a, err
}

// TierCounts returns how many finished sessions landed in each tier.
func (r *MonitorRepository) TierCounts(ctx context.Context, since time.Time) (map[model.ResultTier]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tier, COUNT(*)
		 FROM quiz_sessions
		 WHERE started_at >= $1 AND tier IS NOT NULL
		 GROUP BY tier`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ResultTier]int64)
	for rows.Next() {
		var tier model.ResultTier
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		counts[tier] = count
	}
	return counts, rows.Err()
}

// HardestQuestions returns the questions with the lowest average score ratio.
// Attempts for questions no longer in the bank are skipped.
func (r *MonitorRepository) HardestQuestions(ctx context.Context, since time.Time, limit int) ([]model.QuestionDifficulty, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.question, COUNT(*),
		        AVG(CASE WHEN a.max_score > 0 THEN a.score::float8 / a.max_score ELSE 0 END),
		        COUNT(*) FILTER (WHERE a.timed_out)
		 FROM attempts a
		 JOIN questions q ON q.id = a.question_id
		 WHERE a.submitted_at >= $1
		 GROUP BY q.id, q.question
		 ORDER BY 4 ASC, 3 DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.QuestionDifficulty])
}
