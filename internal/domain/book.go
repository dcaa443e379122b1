package domain

import "time"

// Product is a canonical deduplicated book. Exactly one product exists per
// distinct ISBN, or per normalized title+author pair when no ISBN is known.
type Product struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	ISBN      string    `json:"isbn" db:"isbn"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Offer is one site's listing (price + link) for a product.
type Offer struct {
	ID        int64     `json:"-" db:"id"`
	ProductID int64     `json:"-" db:"product_id"`
	Website   string    `json:"website" db:"website"`
	Price     float64   `json:"price" db:"price"`
	URL       string    `json:"url" db:"url"`
	ParsedAt  time.Time `json:"-" db:"parsed_at"`
}

// Record is one raw scraped row tagged with its source website, as read
// from a per-site CSV export.
type Record struct {
	Title    string
	Author   string
	ISBN     string
	Price    float64
	URL      string
	ImageURL string
	Website  string
}

// SearchResult is one aggregated row of the comparison page: a product with
// its price range and every qualifying offer.
type SearchResult struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ImageURL    string   `json:"image_url"`
	MinPrice    float64  `json:"min_price"`
	MaxPrice    float64  `json:"max_price"`
	OffersCount int      `json:"offers_count"`
	Websites    []string `json:"websites"`
	Offers      []Offer  `json:"offers"`
}

// OfferStats aggregates the offers of a single product.
type OfferStats struct {
	WebsitesCount int     `json:"websites_count"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	AvgPrice      float64 `json:"avg_price"`
}

// BookDetails is the detail API payload for one product.
type BookDetails struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ImageURL  string     `json:"image_url"`
	CreatedAt time.Time  `json:"created_at"`
	Offers    []Offer    `json:"offers"`
	Stats     OfferStats `json:"stats"`
}

// CatalogStats is the page-header summary of the whole catalog.
type CatalogStats struct {
	TotalBooks  int     `json:"total_books"`
	TotalOffers int     `json:"total_offers"`
	AvgPrice    float64 `json:"avg_price"`
	Websites    int     `json:"websites"`
}
