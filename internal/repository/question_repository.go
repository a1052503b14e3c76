package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

const questionColumns = `id, question, answer, type, type_label, points, time_limit_seconds, year, keywords`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// List retrieves every question matching the filter, oldest import first.
func (r *QuestionRepository) List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	where, args := questionWhere(filter)
	return r.query(ctx, `SELECT `+questionColumns+` FROM questions`+where+` ORDER BY created_at, id`, args...)
}

// ListPage retrieves one page of questions matching the filter plus the total match count.
func (r *QuestionRepository) ListPage(ctx context.Context, filter model.QuestionFilter, limit, offset int) ([]model.Question, int, error) {
	where, args := questionWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM questions%s ORDER BY year DESC, created_at, id LIMIT $%d OFFSET $%d`,
		questionColumns, where, len(args)-1, len(args))

	questions, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func questionWhere(filter model.QuestionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conds = append(conds, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *QuestionRepository) query(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Answer, &q.Type, &q.TypeLabel, &q.Points, &q.TimeLimitSeconds, &q.Year, &q.Keywords); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Text, &q.Answer, &q.Type, &q.TypeLabel, &q.Points, &q.TimeLimitSeconds, &q.Year, &q.Keywords)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// UpsertBatch inserts or replaces questions by id in a single statement.
func (r *QuestionRepository) UpsertBatch(ctx context.Context, questions []model.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	n := len(questions)
	ids := make([]uuid.UUID, n)
	texts := make([]string, n)
	answers := make([]string, n)
	types := make([]string, n)
	labels := make([]string, n)
	points := make([]int32, n)
	limits := make([]int32, n)
	years := make([]int32, n)
	keywords := make([]string, n)

	for i, q := range questions {
		ids[i] = q.ID
		texts[i] = q.Text
		answers[i] = q.Answer
		types[i] = string(q.Type)
		labels[i] = q.TypeLabel
		points[i] = int32(q.Points)
		limits[i] = int32(q.TimeLimitSeconds)
		years[i] = int32(q.Year)
		keywords[i] = q.Keywords
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO questions (id, question, answer, type, type_label, points, time_limit_seconds, year, keywords)
		SELECT * FROM UNNEST(
			$1::uuid[], $2::text[], $3::text[], $4::varchar[], $5::varchar[],
			$6::int[], $7::int[], $8::int[], $9::text[]
		)
		ON CONFLICT (id) DO UPDATE SET
			question           = EXCLUDED.question,
			answer             = EXCLUDED.answer,
			type               = EXCLUDED.type,
			type_label         = EXCLUDED.type_label,
			points             = EXCLUDED.points,
			time_limit_seconds = EXCLUDED.time_limit_seconds,
			year               = EXCLUDED.year,
			keywords           = EXCLUDED.keywords,
			updated_at         = NOW()`,
		ids, texts, answers, types, labels, points, limits, years, keywords,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpdateKeywords rewrites the keyword string of each question in the map.
func (r *QuestionRepository) UpdateKeywords(ctx context.Context, keywords map[uuid.UUID]string) error {
	if len(keywords) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(keywords))
	values := make([]string, 0, len(keywords))
	for id, kw := range keywords {
		ids = append(ids, id)
		values = append(values, kw)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE questions AS q
		SET keywords = t.keywords,
		    updated_at = NOW()
		FROM UNNEST($1::uuid[], $2::text[]) AS t (id, keywords)
		WHERE q.id = t.id`,
		ids, values,
	)
	return err
}

// Stats counts questions overall, by type and by year.
func (r *QuestionRepository) Stats(ctx context.Context) (*model.QuestionStats, error) {
	stats := &model.QuestionStats{
		ByType: make(map[model.QuestionType]int),
		ByYear: make(map[int]int),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT type, year, COUNT(*) FROM questions GROUP BY type, year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			qt    model.QuestionType
			year  int
			count int
		)
		if err := rows.Scan(&qt, &year, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByType[qt] += count
		stats.ByYear[year] += count
	}
	return stats, rows.Err()
}
