package main

import (
	"buzzer/internal/app"
	"buzzer/internal/config"
	"buzzer/internal/logging"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect dependencies", zap.Error(err))
	}

	a := app.New(cfg, logger, deps)
	a.RunBackground(ctx)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("staticDir", cfg.StaticDir),
		)
		logger.Info("endpoints",
			zap.Strings("routes", []string{
				"GET  /health",
				"POST /api/v1/rooms/create",
				"GET  /api/v1/rooms/{code}",
				"GET  /api/v1/rooms/{code}/cpr",
				"WS   /api/v1/rooms/{code}/ws",
				"GET  /api/v1/results/{code}",
				"GET  /api/v1/results/{code}/leaderboard",
				"POST /api/v1/auth/login",
				"POST/GET /api/v1/boards",
				"GET/PUT/DELETE /api/v1/boards/{boardId}",
			}),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	a.Close(shutdownCtx)

	logger.Info("server exited")
}
