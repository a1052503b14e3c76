package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionMode distinguishes a first attempt from a review of missed questions.
type SessionMode string

const (
	SessionModeExam   SessionMode = "EXAM"
	SessionModeReview SessionMode = "REVIEW"
)

// SessionPhase enumerates the per-question states of a quiz session.
type SessionPhase string

const (
	PhaseAsking        SessionPhase = "ASKING"
	PhaseShowingResult SessionPhase = "SHOWING_RESULT"
	PhaseFinished      SessionPhase = "FINISHED"
)

// ResultTier classifies a final percentage.
type ResultTier string

const (
	TierMaster        ResultTier = "MASTER"
	TierGood          ResultTier = "GOOD"
	TierFair          ResultTier = "FAIR"
	TierNeedsPractice ResultTier = "NEEDS_PRACTICE"
)

// AnswerRecord is one graded submission inside a session.
type AnswerRecord struct {
	QuestionID    uuid.UUID     `json:"question_id"`
	Question      string        `json:"question"`
	UserAnswer    string        `json:"user_answer"`
	CorrectAnswer string        `json:"correct_answer"`
	IsCorrect     bool          `json:"is_correct"`
	Score         int           `json:"score"`
	MaxScore      int           `json:"max_score"`
	Elapsed       time.Duration `json:"elapsed"`
	TimedOut      bool          `json:"timed_out"`
	SubmittedAt   time.Time     `json:"submitted_at"`
}

// QuizSession is the persisted summary row of a session.
type QuizSession struct {
	ID         uuid.UUID   `json:"id"`
	ParentID   *uuid.UUID  `json:"parent_id,omitempty"`
	Mode       SessionMode `json:"mode"`
	Questions  int         `json:"questions"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	FinalScore *int        `json:"final_score,omitempty"`
	MaxScore   *int        `json:"max_score,omitempty"`
	Percentage *float64    `json:"percentage,omitempty"`
	Tier       *ResultTier `json:"tier,omitempty"`
}

// Attempt is the persisted form of an AnswerRecord.
type Attempt struct {
	SessionID   uuid.UUID `json:"session_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	Position    int       `json:"position"`
	UserAnswer  string    `json:"user_answer"`
	IsCorrect   bool      `json:"is_correct"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	TimedOut    bool      `json:"timed_out"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// StartSessionRequest is the payload for starting a quiz.
type StartSessionRequest struct {
	Count   int    `json:"count" binding:"min=0,max=500"`
	Year    *int   `json:"year" binding:"omitempty,min=0"`
	Type    string `json:"type" binding:"omitempty,question_type"`
	Shuffle bool   `json:"shuffle"`
	Seed    *int64 `json:"seed"`
}

// SubmitAnswerRequest is the payload for answering the current question.
type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"max=10000"`
}

// SaveDraftRequest stores the in-progress answer for auto-submission.
type SaveDraftRequest struct {
	Answer string `json:"answer" binding:"max=10000"`
}
