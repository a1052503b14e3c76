package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/anatomyace/anatomy-ace/internal/model"
)

// View is the client-facing projection of a session. The correct answer of
// the current question is only present once it has been graded.
type View struct {
	ID               uuid.UUID               `json:"id"`
	ParentID         *uuid.UUID              `json:"parent_id,omitempty"`
	Mode             model.SessionMode       `json:"mode"`
	Phase            model.SessionPhase      `json:"phase"`
	Index            int                     `json:"index"`
	Total            int                     `json:"total"`
	Score            int                     `json:"score"`
	MaxScore         int                     `json:"max_score"`
	TimeLimitSeconds int                     `json:"time_limit_seconds"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	Question         *model.QuestionForTaker `json:"question,omitempty"`
	LastAnswer       *model.AnswerRecord     `json:"last_answer,omitempty"`
	FinishedAt       *time.Time              `json:"finished_at,omitempty"`
}

// View projects s at now.
func (s *Session) View(now time.Time) View {
	v := View{
		ID:         s.ID,
		ParentID:   s.ParentID,
		Mode:       s.Mode,
		Phase:      s.Phase,
		Index:      s.Current,
		Total:      len(s.Questions),
		Score:      s.Score,
		MaxScore:   s.MaxScore(),
		FinishedAt: s.FinishedAt,
	}

	if q, ok := s.CurrentQuestion(); ok {
		taker := q.ForTaker()
		taker.TimeLimitSeconds = int(s.TimeLimit() / time.Second)
		v.Question = &taker
		v.TimeLimitSeconds = taker.TimeLimitSeconds
		v.RemainingSeconds = s.RemainingSeconds(now)
	}

	if s.Phase == model.PhaseShowingResult {
		if last, ok := s.LastAnswer(); ok {
			v.LastAnswer = &last
		}
	}

	return v
}
