package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workbooster/internal/config"
	"workbooster/internal/logger"
	"workbooster/internal/server"
)

func main() {
	cfg := config.Load()
	logger.SetDefault(logger.New(cfg.LogLevel, os.Stdout))
	log := logger.Default()

	srv, err := server.NewServer(context.Background(), cfg)
	if err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	log.Info("server exiting")
}
