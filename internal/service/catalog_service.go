package service

import (
	"context"
	"errors"
	"fmt"

	"bookmarket/internal/domain"
	"bookmarket/internal/repository"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

// unknownAuthor substitutes for an empty author field in user-facing
// results.
const unknownAuthor = "Неизвестен"

// CatalogService defines the business logic for the comparison catalog.
type CatalogService interface {
	SearchBooks(ctx context.Context, filter repository.SearchFilter) ([]*domain.SearchResult, error)
	GetBookDetails(ctx context.Context, id int64) (*domain.BookDetails, error)
	Stats(ctx context.Context) (*domain.CatalogStats, error)
	Websites(ctx context.Context) ([]string, error)
}

type catalogService struct {
	products repository.ProductRepository
	offers   repository.OfferRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repository.ProductRepository, offers repository.OfferRepository) CatalogService {
	return &catalogService{
		products: products,
		offers:   offers,
	}
}

// SearchBooks runs the filtered search and attaches every qualifying offer,
// cheapest first, to each result. A product whose offer fetch comes back
// empty is dropped rather than shown without prices.
func (s *catalogService) SearchBooks(ctx context.Context, filter repository.SearchFilter) ([]*domain.SearchResult, error) {
	results, err := s.products.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	books := make([]*domain.SearchResult, 0, len(results))
	for _, result := range results {
		offers, err := s.offers.ListByProduct(ctx, result.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load offers for product %d: %w", result.ID, err)
		}
		if len(offers) == 0 {
			continue
		}

		result.Offers = offers
		if result.Author == "" {
			result.Author = unknownAuthor
		}
		books = append(books, result)
	}

	return books, nil
}

// GetBookDetails returns one product with its priced offers (ascending) and
// aggregate stats, or ErrBookNotFound.
func (s *catalogService) GetBookDetails(ctx context.Context, id int64) (*domain.BookDetails, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}

	offers, err := s.offers.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers for product %d: %w", id, err)
	}

	stats, err := s.offers.StatsByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load offer stats for product %d: %w", id, err)
	}

	author := product.Author
	if author == "" {
		author = unknownAuthor
	}

	return &domain.BookDetails{
		ID:        product.ID,
		Title:     product.Title,
		Author:    author,
		ImageURL:  product.ImageURL,
		CreatedAt: product.CreatedAt,
		Offers:    offers,
		Stats:     stats,
	}, nil
}

func (s *catalogService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	stats, err := s.offers.CatalogStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog stats: %w", err)
	}
	return stats, nil
}

func (s *catalogService) Websites(ctx context.Context) ([]string, error) {
	websites, err := s.offers.Websites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load websites: %w", err)
	}
	return websites, nil
}
