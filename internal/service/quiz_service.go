package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/result"
)

// ErrNotExpired is returned by ExpireCurrent while the question still has time.
var ErrNotExpired = errors.New("current question has time remaining")

// QuestionPool supplies the questions a session is drawn from.
type QuestionPool interface {
	Pool(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)
}

// SessionRecorder persists session summary rows.
type SessionRecorder interface {
	Create(ctx context.Context, s *model.QuizSession) error
	Complete(ctx context.Context, id uuid.UUID, summary result.Summary, finishedAt time.Time) error
}

// QuizService orchestrates quiz sessions: live state in the SessionStore,
// graded attempts onto the queue, summaries into Postgres.
type QuizService struct {
	questions QuestionPool
	store     SessionStore
	queue     AttemptQueue
	recorder  SessionRecorder

	grace          time.Duration
	reviewMultiple int
	now            func() time.Time
	log            zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	questions QuestionPool,
	store SessionStore,
	queue AttemptQueue,
	recorder SessionRecorder,
	cfg *config.Config,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		questions:      questions,
		store:          store,
		queue:          queue,
		recorder:       recorder,
		grace:          cfg.SubmitGrace,
		reviewMultiple: cfg.ReviewTimeMultiplier,
		now:            time.Now,
		log:            log.With().Str("component", "quiz_service").Logger(),
	}
}

// Now is the service clock.
func (s *QuizService) Now() time.Time {
	return s.now()
}

// Start draws questions and opens a new exam session.
func (s *QuizService) Start(ctx context.Context, req model.StartSessionRequest) (*quiz.Session, error) {
	filter := model.QuestionFilter{Year: req.Year}
	if req.Type != "" {
		qt := model.ParseQuestionType(req.Type)
		filter.Type = &qt
	}

	pool, err := s.questions.Pool(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	selected := quiz.Select(pool, req.Count, req.Shuffle, req.Seed)
	sess, err := quiz.NewSession(uuid.New(), selected, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.open(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// StartReview opens a review session over a finished session's missed questions.
func (s *QuizService) StartReview(ctx context.Context, parentID uuid.UUID) (*quiz.Session, error) {
	parent, err := s.store.Load(ctx, parentID)
	if err != nil {
		return nil, err
	}

	sess, err := quiz.NewReviewSession(uuid.New(), parent, s.reviewMultiple, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.open(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *QuizService) open(ctx context.Context, sess *quiz.Session) error {
	if err := s.store.Create(ctx, sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	row := &model.QuizSession{
		ID:        sess.ID,
		ParentID:  sess.ParentID,
		Mode:      sess.Mode,
		Questions: len(sess.Questions),
		StartedAt: sess.CreatedAt,
	}
	if err := s.recorder.Create(ctx, row); err != nil {
		if delErr := s.store.Delete(ctx, sess.ID); delErr != nil {
			s.log.Warn().Err(delErr).Str("session_id", sess.ID.String()).Msg("Failed to drop unrecorded session")
		}
		return fmt.Errorf("record session: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("mode", string(sess.Mode)).
		Int("questions", len(sess.Questions)).
		Msg("Quiz session started")
	return nil
}

// Get returns the live session.
func (s *QuizService) Get(ctx context.Context, id uuid.UUID) (*quiz.Session, error) {
	return s.store.Load(ctx, id)
}

// Submit grades answer for the current question.
func (s *QuizService) Submit(ctx context.Context, id uuid.UUID, answer string) (model.AnswerRecord, *quiz.Session, error) {
	now := s.now()
	var rec model.AnswerRecord

	sess, err := s.store.Update(ctx, id, func(sess *quiz.Session) error {
		var err error
		rec, err = sess.Submit(answer, now, s.grace)
		return err
	})
	if err != nil {
		return model.AnswerRecord{}, nil, err
	}

	s.afterSubmit(ctx, sess, rec)
	return rec, sess, nil
}

// SaveDraft stores the in-progress answer so it can be graded on timeout.
func (s *QuizService) SaveDraft(ctx context.Context, id uuid.UUID, answer string) error {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	switch sess.Phase {
	case model.PhaseFinished:
		return quiz.ErrSessionFinished
	case model.PhaseShowingResult:
		return quiz.ErrNotAsking
	}
	return s.store.SaveDraft(ctx, id, answer)
}

// ExpireCurrent grades the saved draft once the current question's time is up.
// It returns ErrNotExpired while time remains.
func (s *QuizService) ExpireCurrent(ctx context.Context, id uuid.UUID) (model.AnswerRecord, *quiz.Session, error) {
	now := s.now()
	var rec model.AnswerRecord

	sess, err := s.store.UpdateWithDraft(ctx, id, func(sess *quiz.Session, draft string) error {
		if !sess.Expired(now) {
			return ErrNotExpired
		}
		// Graded as of the deadline, not the tick time.
		deadline := sess.QuestionStartedAt.Add(sess.TimeLimit())
		var err error
		rec, err = sess.Submit(draft, deadline, 0)
		return err
	})
	if err != nil {
		return model.AnswerRecord{}, nil, err
	}

	s.afterSubmit(ctx, sess, rec)
	return rec, sess, nil
}

func (s *QuizService) afterSubmit(ctx context.Context, sess *quiz.Session, rec model.AnswerRecord) {
	if err := s.store.ClearDraft(ctx, sess.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to clear draft")
	}

	attempt := model.Attempt{
		SessionID:   sess.ID,
		QuestionID:  rec.QuestionID,
		Position:    len(sess.Answers) - 1,
		UserAnswer:  rec.UserAnswer,
		IsCorrect:   rec.IsCorrect,
		Score:       rec.Score,
		MaxScore:    rec.MaxScore,
		ElapsedMs:   rec.Elapsed.Milliseconds(),
		TimedOut:    rec.TimedOut,
		SubmittedAt: rec.SubmittedAt,
	}
	if err := s.queue.PushAttempt(ctx, attempt); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to queue attempt")
	}
}

// Next moves past a graded question, recording the summary when the session ends.
func (s *QuizService) Next(ctx context.Context, id uuid.UUID) (*quiz.Session, error) {
	now := s.now()

	sess, err := s.store.Update(ctx, id, func(sess *quiz.Session) error {
		return sess.Next(now)
	})
	if err != nil {
		return nil, err
	}

	if sess.Phase == model.PhaseFinished {
		summary := sess.Summary()
		if err := s.recorder.Complete(ctx, sess.ID, summary, *sess.FinishedAt); err != nil {
			return nil, fmt.Errorf("record completion: %w", err)
		}
		s.log.Info().
			Str("session_id", sess.ID.String()).
			Int("score", summary.TotalScore).
			Int("max_score", summary.MaxScore).
			Str("tier", string(summary.Tier)).
			Msg("Quiz session finished")
	}
	return sess, nil
}

// Results is the end-of-session report.
type Results struct {
	SessionID   uuid.UUID            `json:"session_id"`
	Mode        model.SessionMode    `json:"mode"`
	Summary     result.Summary       `json:"summary"`
	Answers     []model.AnswerRecord `json:"answers"`
	ReviewSet   []uuid.UUID          `json:"review_set"`
	Improvement *result.Improvement  `json:"improvement,omitempty"`
}

// Results reports a finished session. Review sessions are compared with their
// parent while the parent is still live.
func (s *QuizService) Results(ctx context.Context, id uuid.UUID) (*Results, error) {
	sess, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Phase != model.PhaseFinished {
		return nil, quiz.ErrSessionRunning
	}

	res := &Results{
		SessionID: sess.ID,
		Mode:      sess.Mode,
		Summary:   sess.Summary(),
		Answers:   sess.Answers,
		ReviewSet: result.ReviewSet(sess.Answers),
	}
	if res.ReviewSet == nil {
		res.ReviewSet = []uuid.UUID{}
	}

	if sess.ParentID != nil {
		parent, err := s.store.Load(ctx, *sess.ParentID)
		switch {
		case err == nil:
			imp := result.Compare(parent.Answers, sess.Answers)
			res.Improvement = &imp
		case errors.Is(err, ErrSessionNotFound):
			s.log.Debug().Str("parent_id", sess.ParentID.String()).Msg("Parent session expired, skipping comparison")
		default:
			return nil, fmt.Errorf("load parent session: %w", err)
		}
	}

	return res, nil
}
