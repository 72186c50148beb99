package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"storyfeed-backend/internal/common/config"
	"storyfeed-backend/internal/common/logger"
	apphttp "storyfeed-backend/internal/http"
	"storyfeed-backend/internal/platform/redis"
	"storyfeed-backend/internal/platform/store"
)

//go:generate swag init -g cmd/api/main.go -o docs --parseInternal -d ../../

// @title           Storyfeed API
// @version         1.0
// @description     Social content platform: feeds, engagement, stories, usage limits and statistics.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token issued by /auth/login, sent as "Bearer <token>"

// @tag.name auth
// @tag.description Registration and sessions

// @tag.name users
// @tag.description User management and statistics

// @tag.name feed
// @tag.description Feed entries, comments, likes and retweets

// @tag.name catalog
// @tag.description Categories and stories

// @tag.name guess
// @tag.description Anonymous guesses with a daily limit

func main() {
	// Create cancellable root context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config load: %v", err))
	}

	logger.Init(logger.Options{Service: "storyfeed-backend", Level: cfg.LogLevel, Pretty: cfg.Debug})
	logger.Info().Bool("debug", cfg.Debug).Str("store", cfg.Store.Driver).Msg("Starting Storyfeed Backend")

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open content store")
	}
	defer st.Close()

	rdb, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	app := apphttp.NewApp(st, rdb, cfg)

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		app.PaymentWorker.Start(ctx)
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	workers.Wait()

	logger.Info().Msg("Server exited")
}
