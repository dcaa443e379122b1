package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bookmarket/internal/config"
	"bookmarket/internal/database"
	"bookmarket/internal/domain"
	"bookmarket/internal/ingest"
	"bookmarket/internal/logger"
	"bookmarket/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	godotenv.Load()

	fresh := flag.Bool("fresh", false, "delete the database file before ingesting")
	dataDir := flag.String("data-dir", "", "directory with the per-site CSV exports (overrides DATA_DIR)")
	flag.Parse()

	cfg := config.Load()
	if *dataDir != "" {
		cfg.Ingest.DataDir = *dataDir
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting catalog ingestion",
		zap.String("data_dir", cfg.Ingest.DataDir),
		zap.String("db_path", cfg.Database.Path),
		zap.Bool("fresh", *fresh),
	)

	if *fresh {
		if err := os.Remove(cfg.Database.Path); err != nil && !os.IsNotExist(err) {
			log.Fatal("Failed to remove database file", zap.Error(err))
		}
	}

	var records []domain.Record
	totalInvalid := 0

	for _, source := range ingest.DefaultSources(cfg.Ingest.DataDir) {
		loaded, invalid, err := ingest.LoadSource(source)
		totalInvalid += invalid
		if err != nil {
			// A missing export is not fatal, the run proceeds with the
			// sources that are present.
			log.Warn("Skipping source",
				zap.String("website", source.Website),
				zap.String("path", source.Path),
				zap.Error(err),
			)
			continue
		}

		log.Info("Loaded source",
			zap.String("website", source.Website),
			zap.Int("valid_records", len(loaded)),
			zap.Int("invalid_records", invalid),
		)
		records = append(records, loaded...)
	}

	if len(records) == 0 {
		log.Warn("No valid records found, nothing to ingest",
			zap.Int("invalid_records", totalInvalid),
		)
		return
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()

	// One transaction per run: a crash mid-ingest leaves the previous
	// catalog intact instead of a half-written one.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatal("Failed to begin transaction", zap.Error(err))
	}

	ingestor := ingest.New(
		repository.NewProductRepository(tx),
		repository.NewOfferRepository(tx),
		log,
	)
	stats := ingestor.Run(ctx, records)

	if err := tx.Commit(); err != nil {
		log.Fatal("Failed to commit ingestion", zap.Error(err))
	}

	log.Info("Ingestion complete",
		zap.String("run_id", ingestor.RunID().String()),
		zap.Int("records_in", stats.RecordsIn),
		zap.Int("products_added", stats.ProductsAdded),
		zap.Int("offers_added", stats.OffersAdded),
		zap.Int("duplicates_rejected", stats.DuplicatesRejected),
		zap.Int("invalid_records", totalInvalid),
		zap.Int("errors", stats.Errors),
	)
}
