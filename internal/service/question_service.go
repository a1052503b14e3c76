package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/loader"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/scoring"
)

// poolCacheTTL bounds how long a cached question pool may be served.
const poolCacheTTL = 10 * time.Minute

// ErrEmptyImport is returned when a question source yields no usable rows.
var ErrEmptyImport = errors.New("question source contains no questions")

// QuestionStore is the persistence the question service needs.
type QuestionStore interface {
	List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
	ListPage(ctx context.Context, filter model.QuestionFilter, limit, offset int) ([]model.Question, int, error)
	UpsertBatch(ctx context.Context, questions []model.Question) (int64, error)
	UpdateKeywords(ctx context.Context, keywords map[uuid.UUID]string) error
	Stats(ctx context.Context) (*model.QuestionStats, error)
}

// QuestionService handles question import, keywords and listing.
type QuestionService struct {
	questionRepo QuestionStore
	rdb          *redis.Client
	loadOpts     loader.Options
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService. A nil rdb disables pool caching.
func NewQuestionService(questionRepo QuestionStore, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		rdb:          rdb,
		loadOpts: loader.Options{
			DefaultPoints:    cfg.DefaultPoints,
			DefaultTimeLimit: cfg.DefaultTimeLimit,
		},
		log: log.With().Str("component", "question_service").Logger(),
	}
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Imported          int `json:"imported"`
	KeywordsGenerated int `json:"keywords_generated"`
}

// ImportFile reads a question source and imports it. The format is taken
// from filename's extension.
func (s *QuestionService) ImportFile(ctx context.Context, filename string, r io.Reader, regenerate bool) (*ImportResult, error) {
	format, err := loader.FormatFromPath(filename)
	if err != nil {
		return nil, err
	}
	questions, err := loader.Read(r, format, s.loadOpts)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, questions, regenerate)
}

// ImportPath imports the question file at path.
func (s *QuestionService) ImportPath(ctx context.Context, path string, regenerate bool) (*ImportResult, error) {
	questions, err := loader.Load(path, s.loadOpts)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, questions, regenerate)
}

// Import upserts questions, filling blank keyword strings from the reference
// answer (or every keyword string when regenerate is set).
func (s *QuestionService) Import(ctx context.Context, questions []model.Question, regenerate bool) (*ImportResult, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyImport
	}

	res := &ImportResult{}
	for i := range questions {
		q := &questions[i]
		if regenerate || strings.TrimSpace(q.Keywords) == "" {
			q.Keywords = scoring.ExtractKeywords(q.Answer, q.Type)
			res.KeywordsGenerated++
		}
	}

	n, err := s.questionRepo.UpsertBatch(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("upsert questions: %w", err)
	}
	res.Imported = int(n)

	s.invalidatePool(ctx)

	s.log.Info().
		Int("imported", res.Imported).
		Int("keywords_generated", res.KeywordsGenerated).
		Msg("Questions imported")
	return res, nil
}

// RegenerateKeywords re-derives every stored keyword string from its answer.
func (s *QuestionService) RegenerateKeywords(ctx context.Context) (int, error) {
	questions, err := s.questionRepo.List(ctx, model.QuestionFilter{})
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}

	changed := make(map[uuid.UUID]string)
	for _, q := range questions {
		kw := scoring.ExtractKeywords(q.Answer, q.Type)
		if kw != q.Keywords {
			changed[q.ID] = kw
		}
	}

	if err := s.questionRepo.UpdateKeywords(ctx, changed); err != nil {
		return 0, fmt.Errorf("update keywords: %w", err)
	}
	s.invalidatePool(ctx)

	s.log.Info().Int("changed", len(changed)).Int("total", len(questions)).Msg("Keywords regenerated")
	return len(changed), nil
}

// List retrieves a page of questions for administration.
func (s *QuestionService) List(ctx context.Context, filter model.QuestionFilter, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.questionRepo.ListPage(ctx, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	return questions, response.NewPagination(page, perPage, total), nil
}

// Stats returns question counts by type and year.
func (s *QuestionService) Stats(ctx context.Context) (*model.QuestionStats, error) {
	return s.questionRepo.Stats(ctx)
}

// Pool returns the questions matching filter, served from the Redis pool
// cache when it is warm.
func (s *QuestionService) Pool(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	all, err := s.cachedPool(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]model.Question, 0, len(all))
	for _, q := range all {
		if filter.Match(q) {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

func (s *QuestionService) cachedPool(ctx context.Context) ([]model.Question, error) {
	key := config.CacheKey.QuestionPoolKey()

	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var questions []model.Question
			if err := json.Unmarshal(raw, &questions); err == nil {
				return questions, nil
			}
			s.log.Warn().Msg("Corrupt question pool cache, reloading")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Msg("Question pool cache unavailable")
		}
	}

	questions, err := s.questionRepo.List(ctx, model.QuestionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(questions); err == nil {
			if err := s.rdb.Set(ctx, key, raw, poolCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache question pool")
			}
		}
	}
	return questions, nil
}

func (s *QuestionService) invalidatePool(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.QuestionPoolKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate question pool cache")
	}
}
