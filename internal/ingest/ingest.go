// Package ingest builds the canonical catalog from per-site CSV exports:
// records are matched to existing products by ISBN first, then by the
// normalized title+author key, and every listing becomes a per-site offer.
//
// A run is not idempotent. The dedup state below starts empty on every run
// and is never rebuilt from the store, so ingesting into an already
// populated database duplicates products. Refresh by recreating the
// database file first.
package ingest

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookmarket/internal/domain"
	"bookmarket/internal/repository"
)

// Stats is the cumulative tally of one ingestion run.
type Stats struct {
	RecordsIn          int
	ProductsAdded      int
	OffersAdded        int
	DuplicatesRejected int
	Errors             int
}

// Ingestor consumes normalized valid records and writes the deduplicated
// products/offers tables. All dedup state lives on the Ingestor and spans
// exactly one run; construct a fresh one per run.
type Ingestor struct {
	products repository.ProductRepository
	offers   repository.OfferRepository
	logger   *zap.Logger
	runID    uuid.UUID

	isbnToID        map[string]int64
	titleAuthorToID map[string]int64
	seenURLs        map[string]struct{}

	stats Stats
}

// New creates an Ingestor for a single run.
func New(products repository.ProductRepository, offers repository.OfferRepository, logger *zap.Logger) *Ingestor {
	runID := uuid.New()
	return &Ingestor{
		products:        products,
		offers:          offers,
		logger:          logger.With(zap.String("run_id", runID.String())),
		runID:           runID,
		isbnToID:        make(map[string]int64),
		titleAuthorToID: make(map[string]int64),
		seenURLs:        make(map[string]struct{}),
	}
}

// RunID identifies this ingestion run in logs and summaries.
func (in *Ingestor) RunID() uuid.UUID { return in.runID }

// Stats returns the tally so far.
func (in *Ingestor) Stats() Stats { return in.stats }

// Run ingests the records in order and returns the final tally. A failing
// record is counted and skipped; it never aborts the run.
func (in *Ingestor) Run(ctx context.Context, records []domain.Record) Stats {
	for _, record := range records {
		in.ingestRecord(ctx, record)
	}
	return in.stats
}

func (in *Ingestor) ingestRecord(ctx context.Context, record domain.Record) {
	in.stats.RecordsIn++

	if _, seen := in.seenURLs[record.URL]; seen {
		in.stats.DuplicatesRejected++
		return
	}
	in.seenURLs[record.URL] = struct{}{}

	productID, err := in.resolveProduct(ctx, record)
	if err != nil {
		in.stats.Errors++
		in.logger.Warn("Failed to store product",
			zap.Error(err),
			zap.String("url", record.URL),
		)
		return
	}

	added, err := in.offers.Insert(ctx, &domain.Offer{
		ProductID: productID,
		Website:   record.Website,
		Price:     record.Price,
		URL:       record.URL,
	})
	if err != nil {
		in.stats.Errors++
		in.logger.Warn("Failed to store offer",
			zap.Error(err),
			zap.String("url", record.URL),
		)
		return
	}

	if added {
		in.stats.OffersAdded++
	} else {
		in.stats.DuplicatesRejected++
	}
}

// resolveProduct maps a record to its canonical product id, creating the
// product on first sight. ISBN is the strongest identity signal; the
// title+author key merges listings whose ISBN is absent or site-specific.
func (in *Ingestor) resolveProduct(ctx context.Context, record domain.Record) (int64, error) {
	key := titleAuthorKey(record.Title, record.Author)

	if record.ISBN != "" {
		if id, ok := in.isbnToID[record.ISBN]; ok {
			return id, nil
		}
		if id, ok := in.titleAuthorToID[key]; ok {
			// Same book under a new ISBN: index it so later records with
			// this ISBN resolve directly.
			in.isbnToID[record.ISBN] = id
			return id, nil
		}

		id, err := in.createProduct(ctx, record)
		if err != nil {
			return 0, err
		}
		in.isbnToID[record.ISBN] = id
		in.titleAuthorToID[key] = id
		return id, nil
	}

	if id, ok := in.titleAuthorToID[key]; ok {
		return id, nil
	}

	id, err := in.createProduct(ctx, record)
	if err != nil {
		return 0, err
	}
	in.titleAuthorToID[key] = id
	return id, nil
}

func (in *Ingestor) createProduct(ctx context.Context, record domain.Record) (int64, error) {
	id, err := in.products.Create(ctx, &domain.Product{
		Title:    record.Title,
		Author:   record.Author,
		ISBN:     record.ISBN,
		ImageURL: record.ImageURL,
	})
	if err != nil {
		return 0, err
	}
	in.stats.ProductsAdded++
	return id, nil
}

func titleAuthorKey(title, author string) string {
	return strings.ToLower(title) + "_" + strings.ToLower(author)
}
