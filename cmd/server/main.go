package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/database"
	"github.com/anatomyace/anatomy-ace/internal/handler"
	"github.com/anatomyace/anatomy-ace/internal/logger"
	"github.com/anatomyace/anatomy-ace/internal/middleware"
	"github.com/anatomyace/anatomy-ace/internal/repository"
	"github.com/anatomyace/anatomy-ace/internal/router"
	"github.com/anatomyace/anatomy-ace/internal/service"
	"github.com/anatomyace/anatomy-ace/internal/validator"
	"github.com/anatomyace/anatomy-ace/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Anatomy Ace")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewQuizSessionRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	sessionStore := service.NewRedisSessionStore(rdb, cfg.SessionTTL)
	authService := service.NewAuthService(cfg)
	questionService := service.NewQuestionService(questionRepo, rdb, cfg, log)
	quizService := service.NewQuizService(questionService, sessionStore, sessionStore, sessionRepo, cfg, log)
	historyService := service.NewHistoryService(sessionRepo)
	monitorService := service.NewMonitorService(monitorRepo, log)

	// ─── Import Question Source ───────────────────────────────────────
	// QUESTION_SOURCE seeds the bank at startup; re-imports upsert by ID.
	if cfg.QuestionSource != "" {
		res, err := questionService.ImportPath(ctx, cfg.QuestionSource, false)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.QuestionSource).Msg("Failed to import question source")
		}
		log.Info().Int("imported", res.Imported).Str("path", cfg.QuestionSource).Msg("Question source imported")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, log),
		Scoring:  handler.NewScoringHandler(),
		Question: handler.NewQuestionHandler(questionService, cfg.MaxUploadBytes, log),
		Quiz:     handler.NewQuizHandler(quizService, authService, historyService, log),
		WS:       handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
		Monitor:  handler.NewMonitorHandler(monitorService, log),
		System:   handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	attemptWorker := worker.NewAttemptWorker(sessionRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		attemptWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	scoreLimiter := middleware.NewRedisLimiter(rdb, cfg.ScoreRateLimit, time.Minute)
	loginLimiter := middleware.NewMemoryLimiter(cfg.LoginRateLimit, time.Minute)
	workers.Add(1)
	go func() {
		defer workers.Done()
		loginLimiter.RunCleanup(workerCtx)
	}()
	r := router.SetupRouter(authService, scoreLimiter, loginLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the attempt worker; it flushes its current batch before returning.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
