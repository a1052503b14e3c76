package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiter(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewMemoryLimiter(2, time.Minute)
	rl.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("request %d rejected", i)
		}
	}
	if ok, _ := rl.Allow(ctx, "1.2.3.4"); ok {
		t.Error("third request allowed")
	}
	if ok, _ := rl.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("other ip shares the bucket")
	}

	clock = clock.Add(time.Minute)
	if ok, _ := rl.Allow(ctx, "1.2.3.4"); !ok {
		t.Error("bucket not refilled after interval")
	}

	clock = clock.Add(10 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Errorf("visitors after cleanup = %d", len(rl.visitors))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit_Middleware(t *testing.T) {
	r := gin.New()
	r.GET("/limited", RateLimit(NewMemoryLimiter(1, time.Hour), zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/open", RateLimit(failingLimiter{}, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusOK {
		t.Errorf("limiter error did not fail open: %d", w.Code)
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("femur tibia fibula ", 200)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("Content-Encoding = %q", w.Header().Get("Content-Encoding"))
	}
	body, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body) != large {
		t.Error("decoded body differs")
	}

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("small body = %q encoding %q", w.Body.String(), w.Header().Get("Content-Encoding"))
	}

	req = httptest.NewRequest(http.MethodGet, "/large", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != large {
		t.Error("compressed for a client without br")
	}
}

func TestRequireSessionToken(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "test", SessionTTL: time.Hour, JWTExpiry: time.Hour})
	id := uuid.New()
	token, _ := auth.GenerateSessionToken(id)
	other, _ := auth.GenerateSessionToken(uuid.New())

	r := gin.New()
	r.GET("/sessions/:id", RequireSessionToken(auth), func(c *gin.Context) {
		got, ok := GetSessionID(c)
		if !ok || got != id {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "bearer header", path: "/sessions/" + id.String(), header: "Bearer " + token, want: http.StatusOK},
		{name: "query token", path: "/sessions/" + id.String() + "?token=" + token, want: http.StatusOK},
		{name: "missing token", path: "/sessions/" + id.String(), want: http.StatusUnauthorized},
		{name: "other session", path: "/sessions/" + id.String(), header: "Bearer " + other, want: http.StatusForbidden},
		{name: "garbage token", path: "/sessions/" + id.String(), header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "bad id", path: "/sessions/not-a-uuid", header: "Bearer " + token, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
