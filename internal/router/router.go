package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/handler"
	"github.com/anatomyace/anatomy-ace/internal/middleware"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Scoring  *handler.ScoringHandler
	Question *handler.QuestionHandler
	Quiz     *handler.QuizHandler
	WS       *handler.WSHandler
	Monitor  *handler.MonitorHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	scoreLimiter middleware.Limiter,
	loginLimiter middleware.Limiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the logger and every envelope can see it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	router.NoRoute(handler.NotFound)
	router.GET("/health", handlers.System.Health)

	// ─── 1. Public Group ───────────────────────────────────────────────
	public := router.Group("/api/v1")
	{
		public.GET("/questions/stats", middleware.CacheControl(time.Minute), handlers.Question.Stats)

		scoring := public.Group("")
		scoring.Use(middleware.RateLimit(scoreLimiter, log))
		{
			scoring.POST("/score", handlers.Scoring.Score)
			scoring.POST("/keywords", handlers.Scoring.ExtractKeywords)
		}
	}

	// ─── 2. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", middleware.RateLimit(loginLimiter, log), handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 3. Session Group (Session Token) ──────────────────────────────
	router.POST("/api/v1/sessions", middleware.NoStore(), handlers.Quiz.StartSession)

	sessions := router.Group("/api/v1/sessions/:id")
	sessions.Use(middleware.NoStore(), middleware.RequireSessionToken(authService))
	{
		sessions.GET("", handlers.Quiz.GetSession)
		sessions.POST("/answer", handlers.Quiz.SubmitAnswer)
		sessions.PUT("/draft", handlers.Quiz.SaveDraft)
		sessions.POST("/expire", handlers.Quiz.ExpireQuestion)
		sessions.POST("/next", handlers.Quiz.NextQuestion)
		sessions.POST("/review", handlers.Quiz.StartReview)
		sessions.GET("/results", middleware.Brotli(), handlers.Quiz.GetResults)
	}

	// ─── 4. WebSocket Group (Session Token via ?token=) ────────────────
	ws := router.Group("/ws/v1/sessions/:id")
	ws.Use(middleware.RequireSessionToken(authService))
	{
		ws.GET("/stream", handlers.WS.SessionStream)
	}

	// ─── 5. Admin Group (Admin JWT) ────────────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdminJWT(authService))
	{
		// SSE must flush unbuffered, so it stays outside the brotli group.
		admin.GET("/system/metrics", handlers.System.SystemMetricsSSE)

		compressed := admin.Group("")
		compressed.Use(middleware.Brotli(), middleware.NoStore())
		{
			compressed.GET("/questions", handlers.Question.ListQuestions)
			compressed.GET("/questions/export", handlers.Question.ExportQuestions)
			compressed.POST("/questions/import", handlers.Question.ImportQuestions)
			compressed.POST("/questions/keywords/regenerate", handlers.Question.RegenerateKeywords)
			compressed.GET("/sessions/:id", handlers.Quiz.GetSessionHistory)
			compressed.GET("/monitor", handlers.Monitor.GetActivity)
		}
	}

	return router
}
