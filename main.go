package main

import (
	"os"

	"github.com/bmsujon/play-store-data-collector/config"
	"github.com/bmsujon/play-store-data-collector/scraper/playstore"
	"github.com/bmsujon/play-store-data-collector/server"
	"github.com/bmsujon/play-store-data-collector/services"
	"github.com/bmsujon/play-store-data-collector/storage"
	"github.com/bmsujon/play-store-data-collector/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Play Store Data Collector starting ===")
	logger.Info("Config — storefront: %s | fetcher: %s | similar limit: %d | concurrency: %d | rate: %dms",
		cfg.PlayBaseURL, cfg.PlayFetcher, cfg.SimilarLimit, cfg.MaxConcurrency, cfg.RateLimitMs)

	var rawSink storage.RawAppWriter
	if cfg.CSVOutputPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV audit writer: %v", err)
			os.Exit(1)
		}
		defer csvWriter.Close()
		rawSink = csvWriter
		logger.Info("CSV audit sink enabled: %s", cfg.CSVOutputPath)
	}

	var appSink storage.AppWriter
	if cfg.AuditDBEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		defer pgWriter.Close()
		appSink = pgWriter
		logger.Info("PostgreSQL audit sink enabled (table: analyzed_apps)")
	}

	store := playstore.New(cfg, logger)
	analyzer := services.NewAnalyzer(cfg, logger, store, rawSink, appSink)

	srv := server.New(cfg, logger, analyzer)
	if err := srv.Run(); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
