package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/loader"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
)

// quizErrorStatus maps session errors onto HTTP status and error code.
func quizErrorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, quiz.ErrNoQuestions):
		return http.StatusUnprocessableEntity, response.ErrNoQuestions
	case errors.Is(err, quiz.ErrNothingToReview):
		return http.StatusUnprocessableEntity, response.ErrNothingToReview
	case errors.Is(err, quiz.ErrNotAsking):
		return http.StatusConflict, response.ErrQuestionAnswered
	case errors.Is(err, quiz.ErrNotShowingResult):
		return http.StatusConflict, response.ErrQuestionPending
	case errors.Is(err, quiz.ErrSessionFinished):
		return http.StatusConflict, response.ErrSessionFinished
	case errors.Is(err, quiz.ErrSessionRunning):
		return http.StatusConflict, response.ErrSessionRunning
	case errors.Is(err, service.ErrNotExpired):
		return http.StatusConflict, response.ErrTimeRemaining
	case errors.Is(err, service.ErrSessionConflict):
		return http.StatusConflict, response.ErrConflict
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

func failQuiz(c *gin.Context, log zerolog.Logger, err error) {
	status, code := quizErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Quiz request failed")
	}
	response.Fail(c, status, code)
}

// importErrorStatus maps loader errors onto HTTP status and error code.
func importErrorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, response.ErrUnsupportedFile
	case errors.Is(err, loader.ErrMissingColumn), errors.Is(err, service.ErrEmptyImport):
		return http.StatusUnprocessableEntity, response.ErrInvalidSheet
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}
