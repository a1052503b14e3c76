package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/middleware"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	"github.com/anatomyace/anatomy-ace/internal/validator"
)

// QuizHandler handles quiz session endpoints. Every route under
// /sessions/:id is guarded by a session token issued at start.
type QuizHandler struct {
	quizService    *service.QuizService
	authService    *service.AuthService
	historyService *service.HistoryService
	log            zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	quizService *service.QuizService,
	authService *service.AuthService,
	historyService *service.HistoryService,
	log zerolog.Logger,
) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		authService:    authService,
		historyService: historyService,
		log:            log.With().Str("component", "quiz_handler").Logger(),
	}
}

// StartSession godoc
// POST /api/v1/sessions
// Draws questions and starts an exam. Returns the first view and a session token.
func (h *QuizHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.quizService.Start(c.Request.Context(), req)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}
	h.respondStarted(c, sess)
}

// StartReview godoc
// POST /api/v1/sessions/:id/review
// Starts a review session over the wrong and partial answers of :id.
func (h *QuizHandler) StartReview(c *gin.Context) {
	parentID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sess, err := h.quizService.StartReview(c.Request.Context(), parentID)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}
	h.respondStarted(c, sess)
}

func (h *QuizHandler) respondStarted(c *gin.Context, sess *quiz.Session) {
	token, err := h.authService.GenerateSessionToken(sess.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Issue session token failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session": sess.View(h.quizService.Now()),
		"token":   token,
	})
}

// GetSession godoc
// GET /api/v1/sessions/:id
// Returns the current view, including the countdown.
func (h *QuizHandler) GetSession(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sess, err := h.quizService.Get(c.Request.Context(), id)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess.View(h.quizService.Now())})
}

// SubmitAnswer godoc
// POST /api/v1/sessions/:id/answer
// Grades the answer to the current question.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, sess, err := h.quizService.Submit(c.Request.Context(), id, req.Answer)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"record":  rec,
		"session": sess.View(h.quizService.Now()),
	})
}

// SaveDraft godoc
// PUT /api/v1/sessions/:id/draft
// Stores the in-progress answer, graded automatically if time runs out.
func (h *QuizHandler) SaveDraft(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SaveDraftRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.quizService.SaveDraft(c.Request.Context(), id, req.Answer); err != nil {
		failQuiz(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// ExpireQuestion godoc
// POST /api/v1/sessions/:id/expire
// Grades the saved draft once the countdown has run out. Polling clients
// call this; WebSocket clients get it from the stream.
func (h *QuizHandler) ExpireQuestion(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	rec, sess, err := h.quizService.ExpireCurrent(c.Request.Context(), id)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"record":  rec,
		"session": sess.View(h.quizService.Now()),
	})
}

// NextQuestion godoc
// POST /api/v1/sessions/:id/next
// Advances past a graded question.
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sess, err := h.quizService.Next(c.Request.Context(), id)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess.View(h.quizService.Now())})
}

// GetResults godoc
// GET /api/v1/sessions/:id/results
// Returns the score summary, tier, answers and review set of a finished session.
func (h *QuizHandler) GetResults(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	res, err := h.quizService.Results(c.Request.Context(), id)
	if err != nil {
		failQuiz(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// GetSessionHistory godoc
// GET /api/v1/admin/sessions/:id
// Returns the persisted row and attempts of any session.
func (h *QuizHandler) GetSessionHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	history, err := h.historyService.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrHistoryNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("session_id", id.String()).Msg("Get session history failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, history)
}
