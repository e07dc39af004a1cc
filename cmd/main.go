package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notification-service/internal/config"
	"notification-service/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Notification service configuration error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Notification service failed to start", zap.Error(err))
	}
	defer srv.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Notification service HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.HTTP.ListenAndServe()
	}()

	workerDone := make(chan struct{})
	go func() {
		srv.Worker.Run(ctx)
		close(workerDone)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Notification service shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.HTTP.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown error", zap.Error(err))
		}

		// let in-flight dispatches finish before closing connections
		select {
		case <-workerDone:
		case <-time.After(30 * time.Second):
			logger.Warn("Worker drain timed out")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Notification service failed", zap.Error(err))
		}
	}
}
