package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/loader"
	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	"github.com/anatomyace/anatomy-ace/internal/validator"
)

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	maxUploadBytes  int64
	log             zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, maxUploadBytes int64, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		maxUploadBytes:  maxUploadBytes,
		log:             log.With().Str("component", "question_handler").Logger(),
	}
}

// ListQuestions godoc
// GET /api/v1/admin/questions?page=&per_page=&year=&type=
// Lists the question bank, including reference answers and keywords.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var q model.QuestionQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, pagination, err := h.questionService.List(c.Request.Context(), q.Filter(), q.Page, q.PerPage)
	if err != nil {
		h.log.Error().Err(err).Msg("List questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// ImportQuestions godoc
// POST /api/v1/admin/questions/import (multipart: file, regenerate)
// Upserts questions from a CSV, XLSX, JSON or YAML sheet.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	regenerate, _ := strconv.ParseBool(c.PostForm("regenerate"))

	f, err := fh.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer f.Close()

	res, err := h.questionService.ImportFile(c.Request.Context(), fh.Filename, f, regenerate)
	if err != nil {
		status, code := importErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("file", fh.Filename).Msg("Question import failed")
			response.Fail(c, status, code)
			return
		}
		response.FailWithDetail(c, status, code, err.Error())
		return
	}

	response.Success(c, http.StatusOK, res)
}

// RegenerateKeywords godoc
// POST /api/v1/admin/questions/keywords/regenerate
// Re-derives keywords for every stored question.
func (h *QuestionHandler) RegenerateKeywords(c *gin.Context) {
	updated, err := h.questionService.RegenerateKeywords(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Regenerate keywords failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// ExportQuestions godoc
// GET /api/v1/admin/questions/export?year=&type=
// Downloads the matching questions as a CSV sheet with keywords.
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	var q model.QuestionQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questionService.Pool(c.Request.Context(), q.Filter())
	if err != nil {
		h.log.Error().Err(err).Msg("Export questions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
	c.Status(http.StatusOK)
	if err := loader.WriteCSV(c.Writer, questions); err != nil {
		h.log.Error().Err(err).Msg("Write question export failed")
	}
}

// Stats godoc
// GET /api/v1/questions/stats
// Question counts by type and year for the landing page.
func (h *QuestionHandler) Stats(c *gin.Context) {
	stats, err := h.questionService.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Question stats failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
