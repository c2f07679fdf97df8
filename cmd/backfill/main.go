// Package main is the entry point for the backfill tool. It feeds historical
// transactions through the same engine as the webhook path.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/baely/mirror/internal/common/logger"
	"github.com/baely/mirror/internal/config"
	"github.com/baely/mirror/internal/firefly"
	"github.com/baely/mirror/internal/mirror"
	"github.com/baely/mirror/internal/up"
)

func main() {
	accountID := flag.String("account", "", "Up account ID to backfill")
	since := flag.String("since", "", "start of range (RFC3339), optional")
	until := flag.String("until", "", "end of range (RFC3339), optional")
	flag.Parse()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.LevelInfo),
	)
	slog.SetDefault(log)

	if *accountID == "" {
		log.Error("Missing required -account flag")
		os.Exit(2)
	}

	sinceTime, err := parseFlagTime(*since)
	if err != nil {
		log.Error("Invalid -since value", "error", err)
		os.Exit(2)
	}
	untilTime, err := parseFlagTime(*until)
	if err != nil {
		log.Error("Invalid -until value", "error", err)
		os.Exit(2)
	}

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

	upClient := up.NewClient(cfg.UpAccessToken, cfg.Timeout)
	fireflyClient := firefly.NewClient(cfg.FireflyBaseURL, cfg.FireflyAccessToken, cfg.Timeout)

	engine := mirror.NewEngine(mirror.EngineConfig{
		Accounts: accounts,
		Lister:   upClient,
		Searcher: fireflyClient,
		Ledger:   fireflyClient,
		Metrics:  mirror.NewMetrics(),
		Logger:   log,
	})

	ctx := context.Background()

	transactions, err := upClient.ListTransactions(ctx, *accountID, sinceTime, untilTime)
	if err != nil {
		log.Error("Failed to list transactions", "account", *accountID, "error", err)
		os.Exit(1)
	}
	log.Info("Backfilling transactions", "account", *accountID, "count", len(transactions))

	failed := 0
	for _, tx := range transactions {
		if tx.Attributes.Status == up.StatusSettled {
			err = engine.HandleSettled(ctx, tx)
		} else {
			err = engine.HandleCreated(ctx, tx)
		}
		if err != nil {
			// One unprocessable transaction must not stop the run.
			log.Error("Failed to backfill transaction", "id", tx.ID, "error", err)
			failed++
		}
	}

	log.Info("Backfill complete", "processed", len(transactions)-failed, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func parseFlagTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
