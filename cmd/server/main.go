package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/crackit/crackit-backend/internal/auth"
	"github.com/crackit/crackit-backend/internal/cache"
	"github.com/crackit/crackit-backend/internal/catalog"
	"github.com/crackit/crackit-backend/internal/config"
	"github.com/crackit/crackit-backend/internal/database"
	"github.com/crackit/crackit-backend/internal/handler"
	"github.com/crackit/crackit-backend/internal/logger"
	"github.com/crackit/crackit-backend/internal/remote"
	"github.com/crackit/crackit-backend/internal/repository"
	"github.com/crackit/crackit-backend/internal/router"
	"github.com/crackit/crackit-backend/internal/service"
	"github.com/crackit/crackit-backend/internal/session"
	"github.com/crackit/crackit-backend/internal/validator"
	"github.com/crackit/crackit-backend/internal/worker"
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
		Msg("Starting CrackIt Backend")

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

	// ─── Load Bundled Catalog ──────────────────────────────────────────
	static, err := catalog.LoadStatic()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load bundled catalog")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	liveRepo := repository.NewLiveExamRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	verifier := auth.NewVerifier(cfg.JWTSecret)
	contentClient := remote.NewClient(cfg.ContentAPIURL, cfg.ContentAPITimeout, log)
	offlineStore := cache.NewStore(rdb, cfg.CatalogCacheTTL, log)
	catalogService := catalog.NewService(contentClient, offlineStore, static, log)
	// Session clocks run on the server's lifetime context, never on a
	// request context: the ticker must survive the start request.
	sessionManager := session.NewManager(ctx, log)

	profileService := service.NewProfileService(profileRepo, attemptRepo, log)
	boardService := service.NewLeaderboardService(rdb, profileRepo, attemptRepo, contentClient, log)
	liveService := service.NewLiveService(liveRepo, contentClient, rdb, log)
	examService := service.NewExamService(
		sessionManager, catalogService, liveRepo, attemptRepo,
		profileService, boardService, contentClient, rdb, cfg.ResultTTL, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Catalog:     handler.NewCatalogHandler(catalogService),
		Exam:        handler.NewExamHandler(examService),
		Profile:     handler.NewProfileHandler(profileService),
		Leaderboard: handler.NewLeaderboardHandler(boardService),
		Live:        handler.NewLiveHandler(liveService),
		WS:          handler.NewWSHandler(examService, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)
	rewardsWorker := worker.NewRewardsWorker(profileRepo, rdb, log)

	go attemptWorker.Start(workerCtx)
	go rewardsWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(verifier, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	// 2. Stop session tickers so no auto-submit fires mid-shutdown.
	sessionManager.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
