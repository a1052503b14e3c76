package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/anatomyace/anatomy-ace/internal/loader"
	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	"github.com/anatomyace/anatomy-ace/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

func scoringRouter() *gin.Engine {
	h := NewScoringHandler()
	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.POST("/score", h.Score)
	r.POST("/keywords", h.ExtractKeywords)
	return r
}

type envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Error *response.ErrorBody        `json:"error"`
}

func post(t *testing.T, r http.Handler, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return w, env
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		score   int
		correct bool
	}{
		{
			name: "exact short answer",
			body: map[string]any{
				"answer":   "Femur",
				"question": map[string]any{"answer": "femur", "type": "단답형", "points": 3},
			},
			score: 3, correct: true,
		},
		{
			name: "partial essay",
			body: map[string]any{
				"answer":   "heart and lungs",
				"question": map[string]any{"type": "essay", "points": 9, "keywords": "heart;lungs;thymus"},
			},
			score: 6,
		},
		{
			name: "blank answer",
			body: map[string]any{
				"answer":   "   ",
				"question": map[string]any{"answer": "femur", "type": "short_answer", "points": 3},
			},
			score: 0,
		},
	}

	r := scoringRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, env := post(t, r, "/score", tc.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			var score int
			var correct bool
			_ = json.Unmarshal(env.Data["score"], &score)
			_ = json.Unmarshal(env.Data["is_correct"], &correct)
			if score != tc.score || correct != tc.correct {
				t.Errorf("score = %d correct = %v, want %d %v", score, correct, tc.score, tc.correct)
			}
		})
	}
}

func TestScore_InvalidType(t *testing.T) {
	w, env := post(t, scoringRouter(), "/score", map[string]any{
		"answer":   "x",
		"question": map[string]any{"answer": "x", "type": "multiple choice", "points": 3},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrValidation || env.Error.Fields["type"] == "" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestExtractKeywords(t *testing.T) {
	w, env := post(t, scoringRouter(), "/keywords", map[string]any{"answer": "Femur", "type": "단답형"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var list []string
	var joined string
	_ = json.Unmarshal(env.Data["list"], &list)
	_ = json.Unmarshal(env.Data["keywords"], &joined)
	if len(list) != 1 || list[0] != "femur" || joined != "femur" {
		t.Errorf("keywords = %v joined = %q", list, joined)
	}

	w, _ = post(t, scoringRouter(), "/keywords", map[string]any{"answer": "Femur"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing type status = %d", w.Code)
	}
}

func TestQuizErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrSessionNotFound, http.StatusNotFound, response.ErrSessionNotFound},
		{fmt.Errorf("load: %w", quiz.ErrNoQuestions), http.StatusUnprocessableEntity, response.ErrNoQuestions},
		{quiz.ErrNothingToReview, http.StatusUnprocessableEntity, response.ErrNothingToReview},
		{quiz.ErrNotAsking, http.StatusConflict, response.ErrQuestionAnswered},
		{quiz.ErrNotShowingResult, http.StatusConflict, response.ErrQuestionPending},
		{quiz.ErrSessionFinished, http.StatusConflict, response.ErrSessionFinished},
		{quiz.ErrSessionRunning, http.StatusConflict, response.ErrSessionRunning},
		{service.ErrNotExpired, http.StatusConflict, response.ErrTimeRemaining},
		{service.ErrSessionConflict, http.StatusConflict, response.ErrConflict},
		{errors.New("redis down"), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tc := range tests {
		status, code := quizErrorStatus(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("%v -> %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestImportErrorStatus(t *testing.T) {
	if _, code := importErrorStatus(fmt.Errorf("read: %w", loader.ErrMissingColumn)); code != response.ErrInvalidSheet {
		t.Errorf("missing column code = %s", code)
	}
	if status, _ := importErrorStatus(loader.ErrUnsupportedFormat); status != http.StatusUnsupportedMediaType {
		t.Errorf("unsupported status = %d", status)
	}
	if _, code := importErrorStatus(service.ErrEmptyImport); code != response.ErrInvalidSheet {
		t.Errorf("empty import code = %s", code)
	}
}
