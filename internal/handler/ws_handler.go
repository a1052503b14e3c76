package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/middleware"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	ws "github.com/anatomyace/anatomy-ace/internal/websocket"
)

const tickInterval = time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a quiz session: countdown ticks, grading and
// auto-submission when time runs out.
type WSHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizService *service.QuizService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizService: quizService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream?token=
// Upgrades to WebSocket for the live countdown and answer flow.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	// Reject unknown sessions before upgrading so the client gets a status code.
	sess, err := h.quizService.Get(c.Request.Context(), sessionID)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Player connected")

	_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventState, View: sess.View(h.quizService.Now())})

	ctx, cancel := context.WithCancel(c.Request.Context())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.runTicker(ctx, conn, wsLog, sessionID)
	}()

	h.readLoop(ctx, conn, wsLog, sessionID)

	cancel()
	wg.Wait()
}

// readLoop dispatches client actions until the connection closes.
func (h *WSHandler) readLoop(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, sessionID uuid.UUID) {
	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionDraft:
			h.handleDraft(ctx, conn, wsLog, sessionID, msg.Answer)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, conn, wsLog, sessionID, msg.Answer)
		case ws.ActionNext:
			h.handleNext(ctx, conn, wsLog, sessionID)
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = conn.WriteError(response.ErrInvalidPayload)
		}
	}
}

func (h *WSHandler) handleDraft(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, sessionID uuid.UUID, answer string) {
	if err := h.quizService.SaveDraft(ctx, sessionID, answer); err != nil {
		h.writeQuizError(conn, wsLog, err)
	}
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, sessionID uuid.UUID, answer string) {
	rec, sess, err := h.quizService.Submit(ctx, sessionID, answer)
	if err != nil {
		h.writeQuizError(conn, wsLog, err)
		return
	}
	_ = conn.WriteTyped(ws.GradedResponse{
		Event:  ws.EventGraded,
		Record: rec,
		View:   sess.View(h.quizService.Now()),
	})
}

func (h *WSHandler) handleNext(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, sessionID uuid.UUID) {
	sess, err := h.quizService.Next(ctx, sessionID)
	if err != nil {
		h.writeQuizError(conn, wsLog, err)
		return
	}

	if sess.Phase == model.PhaseFinished {
		_ = conn.WriteTyped(ws.FinishedResponse{Event: ws.EventFinished, Summary: sess.Summary()})
		return
	}
	_ = conn.WriteTyped(ws.StateResponse{Event: ws.EventAdvanced, View: sess.View(h.quizService.Now())})
}

// runTicker pushes the countdown every second and auto-submits the saved
// draft once the current question's time is up.
func (h *WSHandler) runTicker(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, sessionID uuid.UUID) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		sess, err := h.quizService.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				_ = conn.WriteError(response.ErrSessionNotFound)
				return
			}
			if ctx.Err() == nil {
				wsLog.Warn().Err(err).Msg("Tick load failed")
			}
			continue
		}
		if sess.Phase != model.PhaseAsking {
			continue
		}

		now := h.quizService.Now()
		if !sess.Expired(now) {
			_ = conn.WriteTyped(ws.TickResponse{
				Event:            ws.EventTick,
				Phase:            sess.Phase,
				Index:            sess.Current,
				RemainingSeconds: sess.RemainingSeconds(now),
			})
			continue
		}

		rec, updated, err := h.quizService.ExpireCurrent(ctx, sessionID)
		switch {
		case err == nil:
			wsLog.Debug().Int("index", sess.Current).Msg("Question timed out, draft submitted")
			_ = conn.WriteTyped(ws.GradedResponse{
				Event:  ws.EventGraded,
				Auto:   true,
				Record: rec,
				View:   updated.View(h.quizService.Now()),
			})
		case errors.Is(err, quiz.ErrNotAsking), errors.Is(err, service.ErrNotExpired):
			// A submit raced the tick; the reader already answered.
		default:
			if ctx.Err() == nil {
				wsLog.Error().Err(err).Msg("Auto-submit failed")
			}
		}
	}
}

func (h *WSHandler) writeQuizError(conn *ws.Conn, wsLog zerolog.Logger, err error) {
	status, code := quizErrorStatus(err)
	if status == http.StatusInternalServerError {
		wsLog.Error().Err(err).Msg("Quiz action failed")
	}
	_ = conn.WriteError(code)
}
