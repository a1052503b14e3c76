package model

import (
	"strings"

	"github.com/google/uuid"
)

// Question is one quiz item. Immutable once loaded.
type Question struct {
	ID               uuid.UUID    `json:"id" yaml:"id"`
	Text             string       `json:"question" yaml:"question"`
	Answer           string       `json:"answer" yaml:"answer"`
	Type             QuestionType `json:"type" yaml:"type"`
	TypeLabel        string       `json:"type_label,omitempty" yaml:"type_label,omitempty"`
	Points           int          `json:"points" yaml:"points"`
	TimeLimitSeconds int          `json:"time_limit_seconds" yaml:"time_limit_seconds"`
	Year             int          `json:"year" yaml:"year"`
	// Keywords is the semicolon-joined keyword string; empty means derive at scoring time.
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// QuestionType is the closed set of grading policies.
type QuestionType string

const (
	QuestionTypeShortAnswer QuestionType = "SHORT_ANSWER"
	QuestionTypeEssay       QuestionType = "ESSAY"
	QuestionTypeOther       QuestionType = "OTHER"
)

// Display labels used by the Korean question sheets.
const (
	LabelShortAnswer = "단답형"
	LabelEssay       = "서술형"
)

// ParseQuestionType maps a sheet label or enum name onto a QuestionType.
// Unrecognized labels become QuestionTypeOther.
func ParseQuestionType(label string) QuestionType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelShortAnswer, "short_answer", "short", "shortanswer":
		return QuestionTypeShortAnswer
	case LabelEssay, "essay":
		return QuestionTypeEssay
	default:
		return QuestionTypeOther
	}
}

// Valid reports whether t is one of the known types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeShortAnswer, QuestionTypeEssay, QuestionTypeOther:
		return true
	}
	return false
}

// Label returns the sheet label for t.
func (t QuestionType) Label() string {
	switch t {
	case QuestionTypeShortAnswer:
		return LabelShortAnswer
	case QuestionTypeEssay:
		return LabelEssay
	default:
		return string(QuestionTypeOther)
	}
}

// QuestionForTaker is the question as shown while it is being answered.
type QuestionForTaker struct {
	ID               uuid.UUID    `json:"id"`
	Text             string       `json:"question"`
	Type             QuestionType `json:"type"`
	Points           int          `json:"points"`
	TimeLimitSeconds int          `json:"time_limit_seconds"`
	Year             int          `json:"year"`
}

// ForTaker strips the reference answer and keywords.
func (q Question) ForTaker() QuestionForTaker {
	return QuestionForTaker{
		ID:               q.ID,
		Text:             q.Text,
		Type:             q.Type,
		Points:           q.Points,
		TimeLimitSeconds: q.TimeLimitSeconds,
		Year:             q.Year,
	}
}

// QuestionFilter narrows question listings and session selection.
type QuestionFilter struct {
	Year *int
	Type *QuestionType
}

// Match reports whether q passes the filter.
func (f QuestionFilter) Match(q Question) bool {
	if f.Year != nil && q.Year != *f.Year {
		return false
	}
	if f.Type != nil && q.Type != *f.Type {
		return false
	}
	return true
}

// QuestionStats are the landing-page counts.
type QuestionStats struct {
	Total  int                  `json:"total"`
	ByType map[QuestionType]int `json:"by_type"`
	ByYear map[int]int          `json:"by_year"`
}

// ScoreRequest is the payload for stateless scoring.
type ScoreRequest struct {
	Answer   string             `json:"answer"`
	Question ScoreQuestionInput `json:"question" binding:"required"`
}

// ScoreQuestionInput is the subset of a question needed for grading.
type ScoreQuestionInput struct {
	Answer   string `json:"answer"`
	Type     string `json:"type" binding:"omitempty,question_type"`
	Points   int    `json:"points" binding:"min=0"`
	Keywords string `json:"keywords"`
}

// ToQuestion converts the input into a Question for the scorer.
func (in ScoreQuestionInput) ToQuestion() Question {
	return Question{
		Answer:   in.Answer,
		Type:     ParseQuestionType(in.Type),
		Points:   in.Points,
		Keywords: in.Keywords,
	}
}

// ExtractKeywordsRequest is the payload for keyword extraction.
type ExtractKeywordsRequest struct {
	Answer string `json:"answer" binding:"max=10000"`
	Type   string `json:"type" binding:"required,question_type"`
}

// QuestionQuery is the query string of question listings.
type QuestionQuery struct {
	Page    int    `json:"page" form:"page" binding:"omitempty,min=1"`
	PerPage int    `json:"per_page" form:"per_page" binding:"omitempty,min=1,max=100"`
	Year    *int   `json:"year" form:"year" binding:"omitempty,min=0"`
	Type    string `json:"type" form:"type" binding:"omitempty,question_type"`
}

// Filter converts the query into a QuestionFilter.
func (q QuestionQuery) Filter() QuestionFilter {
	f := QuestionFilter{Year: q.Year}
	if q.Type != "" {
		qt := ParseQuestionType(q.Type)
		f.Type = &qt
	}
	return f
}
