package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "SESSION_TTL_HOURS", "DEFAULT_TIME_LIMIT", "DEFAULT_POINTS", "REVIEW_TIME_MULTIPLIER", "SUBMIT_GRACE_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.DefaultTimeLimit != 240 || cfg.DefaultPoints != 3 {
		t.Errorf("question defaults = %d/%d, want 240/3", cfg.DefaultTimeLimit, cfg.DefaultPoints)
	}
	if cfg.ReviewTimeMultiplier != 2 {
		t.Errorf("ReviewTimeMultiplier = %d", cfg.ReviewTimeMultiplier)
	}
	if cfg.SessionTTL != 6*time.Hour || cfg.SubmitGrace != 2*time.Second {
		t.Errorf("SessionTTL = %v SubmitGrace = %v", cfg.SessionTTL, cfg.SubmitGrace)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEFAULT_POINTS", "5")
	t.Setenv("SCORE_RATE_LIMIT", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	if cfg.DefaultPoints != 5 {
		t.Errorf("DefaultPoints = %d", cfg.DefaultPoints)
	}
	if cfg.ScoreRateLimit != 60 {
		t.Errorf("ScoreRateLimit = %d, want fallback 60", cfg.ScoreRateLimit)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestCacheKeys(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	if got := CacheKey.QuizSessionKey(id); got != "quiz:session:00000000-0000-0000-0000-000000000001" {
		t.Errorf("QuizSessionKey = %q", got)
	}
	if got := CacheKey.QuizDraftKey(id); got != "quiz:session:00000000-0000-0000-0000-000000000001:draft" {
		t.Errorf("QuizDraftKey = %q", got)
	}
}
