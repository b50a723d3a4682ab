package main

import (
	"context"
	apirepository "ctchen222/knn-tic-tac-toe/internal/api/repository"
	"ctchen222/knn-tic-tac-toe/internal/api/service"
	"ctchen222/knn-tic-tac-toe/internal/bot"
	"ctchen222/knn-tic-tac-toe/internal/config"
	"ctchen222/knn-tic-tac-toe/internal/db"
	"ctchen222/knn-tic-tac-toe/internal/hub"
	"ctchen222/knn-tic-tac-toe/internal/logger"
	"ctchen222/knn-tic-tac-toe/internal/repository"
	"ctchen222/knn-tic-tac-toe/internal/server"
	"ctchen222/knn-tic-tac-toe/internal/telemetry"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to the YAML config file, empty to read the environment only")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	ctx := context.Background()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Otel)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.SlogLevel())

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.Redis.GetRedisAddr())
	if err != nil {
		slog.Error("failed to initialize redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Initialize SQLite DB
	DB, err := db.Connect(ctx, cfg.SQLiteStoragePath)
	if err != nil {
		slog.Error("failed to open sqlite db", "path", cfg.SQLiteStoragePath, "error", err)
		os.Exit(1)
	}
	defer DB.Close()
	if err := db.Migrate(ctx, DB); err != nil {
		slog.Error("failed to migrate sqlite db", "error", err)
		os.Exit(1)
	}

	// Create repositories
	sessionRepo := repository.NewSessionRepository(rdb, cfg.Game.SessionTTL)
	resultRepo := repository.NewResultRepository(DB)
	userRepo := apirepository.NewUserRepository(DB)

	// Create hub
	hubCtx, stopHub := context.WithCancel(ctx)
	h := hub.NewHub()
	go h.Run(hubCtx)

	// Create the Gin-based server
	srv := server.NewServer(server.Deps{
		Hub:          h,
		UserService:  service.NewUserService(userRepo, cfg.JWTSecretKey),
		StatsService: service.NewStatsService(resultRepo),
		Sessions:     sessionRepo,
		Results:      resultRepo,
		Examples:     bot.DefaultExamples(),
		Neighbors:    cfg.Game.Neighbors,
	})

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", httpServer.Addr, "neighbors", cfg.Game.Neighbors)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown.
	stopHub()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
