package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/aa-data-gateway/internal/application/services"
	"github.com/DanielPopoola/aa-data-gateway/internal/config"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/aa"
	"github.com/DanielPopoola/aa-data-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/aa-data-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/aa-data-gateway/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/aa-data-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting data gateway",
		"port", cfg.Server.Port,
		"aa_base_url", cfg.AAClient.BaseURL,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	consentStore := postgres.NewConsentStore(db)
	sessionStore := postgres.NewSessionStore(db)

	aaClient := aa.NewClient(cfg.AAClient)
	retryAAClient := aa.NewRetryClient(aaClient, cfg.Retry)

	consentService := services.NewConsentService(consentStore, retryAAClient, cfg.Consent, logger)
	fetchService := services.NewFetchService(consentService, sessionStore, retryAAClient, cfg.Consent, logger)

	h := handlers.NewHandlers(consentService, fetchService, logger)

	mux := http.NewServeMux()
	h.Register(mux)

	router := http.Handler(mux)

	handler := middleware.Recovery(logger)(router)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	expirationWorker := worker.NewExpirationWorker(
		consentStore,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go expirationWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
