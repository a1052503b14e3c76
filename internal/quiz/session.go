// Package quiz holds the per-session state machine: question sequencing,
// countdown timing and submission bookkeeping. It never touches storage;
// callers pass the clock in and persist the Session themselves.
package quiz

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/result"
	"github.com/anatomyace/anatomy-ace/internal/scoring"
)

// ReviewTimeMultiplier stretches time limits for review sessions.
const ReviewTimeMultiplier = 2

var (
	ErrNoQuestions      = errors.New("session has no questions")
	ErrNothingToReview  = errors.New("no wrong or partial answers to review")
	ErrNotAsking        = errors.New("current question is not awaiting an answer")
	ErrNotShowingResult = errors.New("current question has not been answered")
	ErrSessionFinished  = errors.New("session is finished")
	ErrSessionRunning   = errors.New("session is not finished")
)

// Session is the full mutable state of one quiz run.
type Session struct {
	ID                uuid.UUID            `json:"id"`
	ParentID          *uuid.UUID           `json:"parent_id,omitempty"`
	Mode              model.SessionMode    `json:"mode"`
	Questions         []model.Question     `json:"questions"`
	Current           int                  `json:"current"`
	Phase             model.SessionPhase   `json:"phase"`
	TimeMultiplier    int                  `json:"time_multiplier"`
	QuestionStartedAt time.Time            `json:"question_started_at"`
	Answers           []model.AnswerRecord `json:"answers"`
	Score             int                  `json:"score"`
	CreatedAt         time.Time            `json:"created_at"`
	FinishedAt        *time.Time           `json:"finished_at,omitempty"`
}

// NewSession starts an exam over questions, in the given order.
func NewSession(id uuid.UUID, questions []model.Question, now time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{
		ID:                id,
		Mode:              model.SessionModeExam,
		Questions:         append([]model.Question(nil), questions...),
		Phase:             model.PhaseAsking,
		TimeMultiplier:    1,
		QuestionStartedAt: now,
		CreatedAt:         now,
	}, nil
}

// NewReviewSession starts a review over parent's wrong and partial answers.
// multiplier <= 0 uses ReviewTimeMultiplier.
func NewReviewSession(id uuid.UUID, parent *Session, multiplier int, now time.Time) (*Session, error) {
	if parent.Phase != model.PhaseFinished {
		return nil, ErrSessionRunning
	}

	byID := make(map[uuid.UUID]model.Question, len(parent.Questions))
	for _, q := range parent.Questions {
		byID[q.ID] = q
	}

	var questions []model.Question
	for _, qid := range result.ReviewSet(parent.Answers) {
		if q, ok := byID[qid]; ok {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, ErrNothingToReview
	}

	if multiplier <= 0 {
		multiplier = ReviewTimeMultiplier
	}

	s, err := NewSession(id, questions, now)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	s.ParentID = &parentID
	s.Mode = model.SessionModeReview
	s.TimeMultiplier = multiplier
	return s, nil
}

// CurrentQuestion returns the question at the cursor; ok is false once finished.
func (s *Session) CurrentQuestion() (model.Question, bool) {
	if s.Phase == model.PhaseFinished || s.Current >= len(s.Questions) {
		return model.Question{}, false
	}
	return s.Questions[s.Current], true
}

// TimeLimit is the current question's limit after the session multiplier.
func (s *Session) TimeLimit() time.Duration {
	q, ok := s.CurrentQuestion()
	if !ok {
		return 0
	}
	mult := s.TimeMultiplier
	if mult < 1 {
		mult = 1
	}
	return time.Duration(q.TimeLimitSeconds*mult) * time.Second
}

// Remaining is the countdown for the current question, never negative.
// It is zero outside the asking phase.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.Phase != model.PhaseAsking {
		return 0
	}
	remaining := s.TimeLimit() - now.Sub(s.QuestionStartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingSeconds truncates Remaining to whole seconds.
func (s *Session) RemainingSeconds(now time.Time) int {
	return int(s.Remaining(now) / time.Second)
}

// Expired reports whether the current question's time is up.
func (s *Session) Expired(now time.Time) bool {
	return s.Phase == model.PhaseAsking && s.Remaining(now) == 0
}

// Submit grades answer for the current question. An answer arriving later
// than the limit plus grace is graded as empty.
func (s *Session) Submit(answer string, now time.Time, grace time.Duration) (model.AnswerRecord, error) {
	switch s.Phase {
	case model.PhaseFinished:
		return model.AnswerRecord{}, ErrSessionFinished
	case model.PhaseShowingResult:
		return model.AnswerRecord{}, ErrNotAsking
	}

	q, _ := s.CurrentQuestion()
	elapsed := now.Sub(s.QuestionStartedAt)
	late := elapsed > s.TimeLimit()+grace

	rec := model.AnswerRecord{
		QuestionID:    q.ID,
		Question:      q.Text,
		UserAnswer:    answer,
		CorrectAnswer: q.Answer,
		MaxScore:      q.Points,
		Elapsed:       elapsed,
		TimedOut:      elapsed >= s.TimeLimit(),
		SubmittedAt:   now,
	}

	if !late && strings.TrimSpace(answer) != "" {
		res := scoring.CheckAnswer(answer, q)
		rec.IsCorrect = res.IsCorrect
		rec.Score = res.Score
	}

	s.Answers = append(s.Answers, rec)
	s.Score += rec.Score
	s.Phase = model.PhaseShowingResult
	return rec, nil
}

// Next advances past an answered question, finishing after the last one.
func (s *Session) Next(now time.Time) error {
	switch s.Phase {
	case model.PhaseFinished:
		return ErrSessionFinished
	case model.PhaseAsking:
		return ErrNotShowingResult
	}

	s.Current++
	if s.Current >= len(s.Questions) {
		s.Phase = model.PhaseFinished
		s.FinishedAt = &now
		return nil
	}

	s.Phase = model.PhaseAsking
	s.QuestionStartedAt = now
	return nil
}

// LastAnswer returns the most recent graded answer.
func (s *Session) LastAnswer() (model.AnswerRecord, bool) {
	if len(s.Answers) == 0 {
		return model.AnswerRecord{}, false
	}
	return s.Answers[len(s.Answers)-1], true
}

// MaxScore sums the points of every question in the session.
func (s *Session) MaxScore() int {
	total := 0
	for _, q := range s.Questions {
		total += q.Points
	}
	return total
}

// Summary aggregates the answers given so far.
func (s *Session) Summary() result.Summary {
	return result.Summarize(s.Answers)
}
