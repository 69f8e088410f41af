package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/crackit/crackit-backend/internal/auth"
	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/handler"
	"github.com/crackit/crackit-backend/internal/middleware"
	"github.com/crackit/crackit-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Catalog     *handler.CatalogHandler
	Exam        *handler.ExamHandler
	Profile     *handler.ProfileHandler
	Leaderboard *handler.LeaderboardHandler
	Live        *handler.LiveHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(verifier *auth.Verifier, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 1. Catalog Group (Public, Cached) ─────────────────────────────
	// The question catalog changes rarely; let clients cache it briefly.
	catalogAPI := router.Group("/api/v1")
	catalogAPI.Use(middleware.CacheControl(300))
	{
		catalogAPI.GET("/subjects", handlers.Catalog.GetSubjects)
		catalogAPI.GET("/subjects/stats", handlers.Catalog.GetStats)
		catalogAPI.GET("/topics", handlers.Catalog.GetTopics)
		catalogAPI.GET("/questions", handlers.Catalog.GetQuestions)
	}

	// Rate limiter for exam starts (30 requests per minute per IP).
	startLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 2. Exam Group (JWT) ───────────────────────────────────────────
	examAPI := router.Group("/api/v1/exams")
	examAPI.Use(middleware.RequireUserJWT(verifier))
	{
		examAPI.POST("/start", startLimiter.Middleware(), handlers.Exam.Start)
		examAPI.GET("/session", handlers.Exam.GetSession)
		examAPI.DELETE("/session", handlers.Exam.Abandon)
		examAPI.POST("/session/answer", handlers.Exam.Answer)
		examAPI.POST("/session/review", handlers.Exam.ToggleReview)
		examAPI.POST("/session/goto", handlers.Exam.GoTo)
		examAPI.POST("/session/next", handlers.Exam.Next)
		examAPI.POST("/session/prev", handlers.Exam.Prev)
		examAPI.POST("/session/palette", handlers.Exam.TogglePalette)
		examAPI.POST("/submit", handlers.Exam.Submit)
		examAPI.GET("/result", handlers.Exam.GetResult)
		examAPI.GET("/history", handlers.Exam.GetHistory)
	}

	// ─── 3. Live Exam Group (JWT) ──────────────────────────────────────
	liveAPI := router.Group("/api/v1/live")
	liveAPI.Use(middleware.RequireUserJWT(verifier))
	{
		liveAPI.GET("", handlers.Live.List)
		liveAPI.GET("/:id", handlers.Live.Get)
		liveAPI.POST("/:id/register", handlers.Live.Register)
	}

	// ─── 4. Profile & Leaderboard Group (JWT) ──────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(verifier))
	{
		userAPI.GET("/profile", handlers.Profile.GetProfile)
		userAPI.PUT("/profile", handlers.Profile.UpdateProfile)
		userAPI.GET("/profile/settings", handlers.Profile.GetSettings)
		userAPI.PUT("/profile/settings", handlers.Profile.UpdateSettings)
		userAPI.GET("/profile/stats", handlers.Profile.GetStats)
		userAPI.GET("/leaderboard", handlers.Leaderboard.Get)
		userAPI.GET("/system/status", handlers.System.Status)
	}

	// ─── 5. WebSocket Group (WS Auth via query token) ──────────────────
	wsAPI := router.Group("/ws/v1")
	wsAPI.Use(middleware.RequireUserWSAuth(verifier))
	{
		wsAPI.GET("/session/stream", handlers.WS.SessionStream)
	}

	return router
}
