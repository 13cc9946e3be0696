package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statement-reader/internal/config"
	"statement-reader/internal/handler"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container := config.NewContainer()
	cfg := container.Config

	// Handlers
	presenter := handler.NewPresenter(
		container.Extractor,
		container.Inspector,
		container.Summarizer,
		container.Metrics,
		cfg,
		container.Logger,
	)

	statementHandler := handler.NewStatementHandler(
		container.Extractor,
		container.Inspector,
		container.Summarizer,
		container.Exporter,
		container.Metrics,
		cfg.GetMaxFileSize(),
		container.Logger,
	)

	opts := handler.RouterOptions{
		AllowedOrigins: cfg.GetAllowedOrigins(),
		UploadLimit: handler.RateLimit(
			rate.NewLimiter(rate.Limit(cfg.GetRateLimitPerSecond()), cfg.GetRateLimitBurst()),
		),
		Middleware: []mux.MiddlewareFunc{
			handler.RequestID,
			handler.AccessLog(container.Logger, container.Metrics),
		},
	}
	if cfg.GetMetricsEnabled() {
		opts.Metrics = container.Metrics.Handler()
	}

	// Router
	router := handler.NewRouter(presenter, statementHandler, opts)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()
	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
