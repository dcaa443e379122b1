package repository

import (
	"context"
	"fmt"
	"time"

	"bookmarket/internal/domain"
)

// OfferRepository defines the interface for offer data access.
type OfferRepository interface {
	// Insert adds an offer; it reports false when an offer with the same
	// (product, website, url) already exists, which is not an error.
	Insert(ctx context.Context, offer *domain.Offer) (bool, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Offer, error)
	StatsByProduct(ctx context.Context, productID int64) (domain.OfferStats, error)
	Websites(ctx context.Context) ([]string, error)
	CatalogStats(ctx context.Context) (*domain.CatalogStats, error)
}

type offerRepository struct {
	db DBTX
}

// NewOfferRepository creates a new instance of OfferRepository.
func NewOfferRepository(db DBTX) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Insert(ctx context.Context, offer *domain.Offer) (bool, error) {
	query := `
		INSERT OR IGNORE INTO offers (product_id, website, price, url, parsed_at)
		VALUES (?, ?, ?, ?, ?)
	`

	parsedAt := offer.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now()
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		offer.ProductID,
		offer.Website,
		offer.Price,
		offer.URL,
		formatTime(parsedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert offer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// ListByProduct returns every priced offer for a product, cheapest first.
func (r *offerRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Offer, error) {
	query := `
		SELECT id, product_id, website, price, url, parsed_at
		FROM offers
		WHERE product_id = ? AND price > 0
		ORDER BY price ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []domain.Offer{}
	for rows.Next() {
		var offer domain.Offer
		var parsedAt string
		err := rows.Scan(
			&offer.ID,
			&offer.ProductID,
			&offer.Website,
			&offer.Price,
			&offer.URL,
			&parsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offer.ParsedAt = parseTime(parsedAt)
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

func (r *offerRepository) StatsByProduct(ctx context.Context, productID int64) (domain.OfferStats, error) {
	query := `
		SELECT COUNT(DISTINCT website),
		       COALESCE(MIN(price), 0),
		       COALESCE(MAX(price), 0),
		       COALESCE(AVG(price), 0)
		FROM offers
		WHERE product_id = ? AND price > 0
	`

	var stats domain.OfferStats
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&stats.WebsitesCount,
		&stats.MinPrice,
		&stats.MaxPrice,
		&stats.AvgPrice,
	)
	if err != nil {
		return domain.OfferStats{}, fmt.Errorf("failed to get offer stats: %w", err)
	}

	return stats, nil
}

// Websites returns the distinct source sites, ordered, for the filter
// dropdown.
func (r *offerRepository) Websites(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT website FROM offers ORDER BY website`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}
	defer rows.Close()

	websites := []string{}
	for rows.Next() {
		var website string
		if err := rows.Scan(&website); err != nil {
			return nil, fmt.Errorf("failed to scan website: %w", err)
		}
		websites = append(websites, website)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating websites: %w", err)
	}

	return websites, nil
}

func (r *offerRepository) CatalogStats(ctx context.Context) (*domain.CatalogStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE title != ''),
			(SELECT COUNT(*) FROM offers WHERE price > 0),
			(SELECT COALESCE(AVG(price), 0) FROM offers WHERE price > 0),
			(SELECT COUNT(DISTINCT website) FROM offers)
	`

	stats := &domain.CatalogStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalBooks,
		&stats.TotalOffers,
		&stats.AvgPrice,
		&stats.Websites,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog stats: %w", err)
	}

	return stats, nil
}
