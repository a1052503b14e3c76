package websocket

import (
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/result"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionDraft  Action = "draft"
	ActionSubmit Action = "submit"
	ActionNext   Action = "next"
	ActionPing   Action = "ping"
)

// Request is every client message; Answer is only read by draft and submit.
type Request struct {
	Action Action `json:"action"`
	Answer string `json:"answer"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventTick     Event = "tick"
	EventGraded   Event = "graded"
	EventAdvanced Event = "advanced"
	EventFinished Event = "finished"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// StateResponse is sent once on connect and after every transition.
type StateResponse struct {
	Event Event     `json:"event"`
	View  quiz.View `json:"view"`
}

type TickResponse struct {
	Event            Event              `json:"event"`
	Phase            model.SessionPhase `json:"phase"`
	Index            int                `json:"index"`
	RemainingSeconds int                `json:"remaining_seconds"`
}

// GradedResponse reports a graded answer. Auto is set when the countdown
// ran out and the saved draft was submitted on the player's behalf.
type GradedResponse struct {
	Event  Event              `json:"event"`
	Auto   bool               `json:"auto"`
	Record model.AnswerRecord `json:"record"`
	View   quiz.View          `json:"view"`
}

type FinishedResponse struct {
	Event   Event          `json:"event"`
	Summary result.Summary `json:"summary"`
}

type ErrorResponse struct {
	Event   Event            `json:"event"`
	Code    response.ErrCode `json:"code"`
	Message string           `json:"message"`
}

// NewErrorResponse builds an error event with the code's default message.
func NewErrorResponse(code response.ErrCode) ErrorResponse {
	return ErrorResponse{Event: EventError, Code: code, Message: response.GetMessage(code)}
}

type PongResponse struct {
	Event Event `json:"event"`
}
