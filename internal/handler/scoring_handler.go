package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anatomyace/anatomy-ace/internal/model"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/scoring"
	"github.com/anatomyace/anatomy-ace/internal/validator"
)

// ScoringHandler exposes the stateless scorer and keyword extractor.
type ScoringHandler struct{}

// NewScoringHandler creates a new ScoringHandler.
func NewScoringHandler() *ScoringHandler {
	return &ScoringHandler{}
}

// Score godoc
// POST /api/v1/score
// Grades one answer against an ad-hoc question.
func (h *ScoringHandler) Score(c *gin.Context) {
	var req model.ScoreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q := req.Question.ToQuestion()
	res := scoring.CheckAnswer(req.Answer, q)

	keywords := scoring.Keywords(q)
	if keywords == nil {
		keywords = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"is_correct": res.IsCorrect,
		"score":      res.Score,
		"max_score":  q.Points,
		"keywords":   keywords,
	})
}

// ExtractKeywords godoc
// POST /api/v1/keywords
// Derives the keyword list for a reference answer.
func (h *ScoringHandler) ExtractKeywords(c *gin.Context) {
	var req model.ExtractKeywordsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	list := scoring.ExtractKeywordList(req.Answer, model.ParseQuestionType(req.Type))
	if list == nil {
		list = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"keywords": strings.Join(list, scoring.KeywordDelimiter),
		"list":     list,
	})
}
