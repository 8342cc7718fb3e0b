// cmd/api/main.go
// Main entry point for the matching API
// Bootstraps all components and starts the server

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emberlyapp/emberly-backend/internal/common/database"
	"github.com/emberlyapp/emberly-backend/internal/common/logger"
	"github.com/emberlyapp/emberly-backend/internal/common/utils"
	"github.com/emberlyapp/emberly-backend/internal/config"
	"github.com/emberlyapp/emberly-backend/internal/matching"
)

func main() {
	// Load environment variables; absence of .env is fine in production
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration validation failed", zap.Error(err))
	}

	// PostgreSQL
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	// Redis is optional; without it engagement reads go straight to the store
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, continuing without engagement cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("connected to Redis")
		}
	}

	// Wire the matching engine
	repo := matching.NewPostgresRepository(db)

	var engagement matching.EngagementSource = repo
	if redisClient != nil {
		engagement = matching.NewCachedEngagementSource(redisClient, repo, cfg.Scoring.EngagementCacheTTL, log)
	}

	engine := matching.NewEngine(cfg.Scoring, engagement, log)
	ranker := matching.NewRanker(repo, engine, cfg.Scoring, log)
	calculator := matching.NewCalculator(repo, engine, log)
	picks := matching.NewPicksGenerator(ranker, repo, log, cfg.PicksPerUser, cfg.PicksExpiry, cfg.PicksActiveWindow)
	service := matching.NewService(repo, ranker, calculator, picks)
	handler := matching.NewHandler(service)

	// Router
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware(log))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matching.RegisterRoutes(router, handler)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := matching.NewScheduler(service, log)
	scheduler.Start(ctx)

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// requestIDMiddleware tags each request with an id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			log.Debug("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", w.Header().Get("X-Request-ID")))
		})
	}
}
