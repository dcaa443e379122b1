package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"bookmarket/internal/config"
	"bookmarket/internal/logger"
	"bookmarket/internal/scraper"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting scrape run",
		zap.Int("page_limit", cfg.Scraper.PageLimit),
		zap.Int("max_retries", cfg.Scraper.MaxRetries),
		zap.String("output_dir", cfg.Scraper.OutputDir),
	)

	client := scraper.NewClient(cfg.Scraper.MaxRetries, log)

	for _, source := range scraper.DefaultSources(log) {
		records, err := source.Scrape(ctx, client, cfg.Scraper.PageLimit)
		if err != nil {
			// A partial result is still worth writing; one broken source
			// should not kill the whole run.
			log.Warn("Source finished with error",
				zap.String("source", source.Name()),
				zap.Int("records", len(records)),
				zap.Error(err),
			)
		}

		if len(records) == 0 {
			log.Warn("Source produced no records", zap.String("source", source.Name()))
			continue
		}

		if err := scraper.WriteCSV(cfg.Scraper.OutputDir, source.FileName(), records); err != nil {
			log.Error("Failed to write export",
				zap.String("source", source.Name()),
				zap.Error(err),
			)
			continue
		}

		log.Info("Source complete",
			zap.String("source", source.Name()),
			zap.String("file", source.FileName()),
			zap.Int("records", len(records)),
		)
	}

	log.Info("Scrape run finished")
}
