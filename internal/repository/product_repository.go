package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmarket/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortMode selects the ordering of search results.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortTitle     SortMode = "title"
	SortAuthor    SortMode = "author"
)

// ParseSortMode maps a raw query value to a known sort mode; anything
// unknown falls back to relevance.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPriceAsc, SortPriceDesc, SortTitle, SortAuthor:
		return SortMode(s)
	default:
		return SortRelevance
	}
}

// WebsiteAll is the sentinel disabling the website filter.
const WebsiteAll = "all"

// maxSearchResults caps one search page.
const maxSearchResults = 100

// SearchFilter describes one catalog search.
type SearchFilter struct {
	Query    string
	Sort     SortMode
	Website  string
	MinPrice *float64
	MaxPrice *float64
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Search(ctx context.Context, filter SearchFilter) ([]*domain.SearchResult, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and returns its generated id. An empty ISBN
// is stored as NULL so the unique index only applies to products that
// actually carry one.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (int64, error) {
	query := `
		INSERT INTO products (title, author, isbn, image_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var isbn any
	if product.ISBN != "" {
		isbn = product.ISBN
	}

	createdAt := product.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.Title,
		product.Author,
		isbn,
		product.ImageURL,
		formatTime(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get product id: %w", err)
	}

	product.ID = id
	return id, nil
}

// FindByID retrieves a product by id using parameterized queries.
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, title, COALESCE(author, ''), COALESCE(isbn, ''), COALESCE(image_url, ''), created_at
		FROM products
		WHERE id = ?
	`

	product := &domain.Product{}
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Title,
		&product.Author,
		&product.ISBN,
		&product.ImageURL,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by id: %w", err)
	}

	product.CreatedAt = parseTime(createdAt)
	return product, nil
}

// Search runs the aggregated comparison query: products joined to their
// qualifying offers, one row per product with the price range, the distinct
// website list and the offer count. Every user-supplied value is bound; the
// ORDER BY clause comes from a fixed whitelist.
func (r *productRepository) Search(ctx context.Context, filter SearchFilter) ([]*domain.SearchResult, error) {
	conditions := []string{"p.title != ''", "o.price > 0"}
	args := []any{}

	// AND across terms; within a term the title or the author may match.
	for _, term := range strings.Fields(filter.Query) {
		conditions = append(conditions,
			"(instr(ulower(p.title), ?) > 0 OR instr(ulower(p.author), ?) > 0)")
		folded := strings.ToLower(term)
		args = append(args, folded, folded)
	}

	if filter.Website != "" && filter.Website != WebsiteAll {
		conditions = append(conditions, "o.website = ?")
		args = append(args, filter.Website)
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "o.price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "o.price <= ?")
		args = append(args, *filter.MaxPrice)
	}

	orderBy := map[SortMode]string{
		SortRelevance: "offers_count DESC",
		SortPriceAsc:  "min_price ASC",
		SortPriceDesc: "min_price DESC",
		SortTitle:     "p.title ASC",
		SortAuthor:    "p.author ASC",
	}[filter.Sort]
	if orderBy == "" {
		orderBy = "offers_count DESC"
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.title, COALESCE(p.author, ''), COALESCE(p.image_url, ''),
		       MIN(o.price) AS min_price,
		       MAX(o.price) AS max_price,
		       GROUP_CONCAT(DISTINCT o.website) AS websites,
		       COUNT(o.id) AS offers_count
		FROM products p
		JOIN offers o ON o.product_id = p.id
		WHERE %s
		GROUP BY p.id
		ORDER BY %s
		LIMIT ?
	`, strings.Join(conditions, " AND "), orderBy)

	args = append(args, maxSearchResults)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	results := []*domain.SearchResult{}
	for rows.Next() {
		result := &domain.SearchResult{}
		var websites string
		err := rows.Scan(
			&result.ID,
			&result.Title,
			&result.Author,
			&result.ImageURL,
			&result.MinPrice,
			&result.MaxPrice,
			&websites,
			&result.OffersCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if websites != "" {
			result.Websites = strings.Split(websites, ",")
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
