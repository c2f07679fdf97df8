// Package main is the entry point for the mirror webhook service
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baely/mirror/internal/common/errors"
	"github.com/baely/mirror/internal/common/logger"
	"github.com/baely/mirror/internal/config"
	"github.com/baely/mirror/internal/firefly"
	"github.com/baely/mirror/internal/history"
	"github.com/baely/mirror/internal/mirror"
	"github.com/baely/mirror/internal/server"
	"github.com/baely/mirror/internal/up"
)

func main() {
	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.LevelInfo),
	)
	slog.SetDefault(log)

	// Load and validate configuration; invalid configuration is fatal
	cfg, err := config.Load()
	if err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	accounts, err := mirror.ParseAccountMap(cfg.AccountMap)
	if err != nil {
		log.Error("Invalid account map", "error", err)
		os.Exit(1)
	}

	// Initialize clients
	upClient := up.NewClient(cfg.UpAccessToken, cfg.Timeout)
	fireflyClient := firefly.NewClient(cfg.FireflyBaseURL, cfg.FireflyAccessToken, cfg.Timeout)

	// Optional sync history store
	var recorder mirror.Recorder = mirror.NopRecorder{}
	var store *history.Store
	if cfg.DBHost != "" {
		store, err = history.NewStore(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, log)
		if err != nil {
			log.Error("Failed to open history store", "error", err)
			errors.Must(err) // This will panic
		}
		recorder = store
	}

	// Initialize engine
	metrics := mirror.NewMetrics()
	engine := mirror.NewEngine(mirror.EngineConfig{
		Accounts: accounts,
		Lister:   upClient,
		Searcher: fireflyClient,
		Ledger:   fireflyClient,
		Recorder: recorder,
		Metrics:  metrics,
		Logger:   log,
	})

	// Initialize webhook service
	webhookService := up.NewWebhookService(&up.WebhookConfig{
		Client:  upClient,
		Secret:  cfg.UpWebhookSecret,
		Handler: engine,
		Logger:  log,
	})

	r := webhookService.Chi()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	if store != nil {
		r.Mount("/history", store.Chi())
	}

	// Initialize server
	s := server.New(cfg.Addr)
	s.RegisterDomain("*", r)

	// Start server
	log.Info("Starting mirror server", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil {
		log.Error("Server failed", "error", err)
		errors.Must(err) // This will panic
		os.Exit(1)
	}
}
