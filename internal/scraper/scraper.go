// Package scraper collects book listings from the supported retail sites.
// Each site is a Source that walks its category pages and maps listing
// cards into raw records; the records are written out as per-site CSV
// exports consumed by the ingest command.
package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"bookmarket/internal/domain"
)

// Each source stops once it has collected this many listings.
const targetRecords = 1000

// Source is implemented by each supported retail site.
type Source interface {
	// Name is the stable website id stored with every offer.
	Name() string
	// FileName is the per-site CSV export this source produces.
	FileName() string
	// Scrape walks up to pageLimit pages per category and returns the raw
	// listings, capped at the per-source target.
	Scrape(ctx context.Context, client *Client, pageLimit int) ([]domain.Record, error)
}

// DefaultSources returns all supported sources.
func DefaultSources(logger *zap.Logger) []Source {
	return []Source{
		NewChitaiGorodSource(logger),
		NewLabirintSource(logger),
		NewMoscowBooksSource(logger),
	}
}

// cleanPrice strips everything but digits from a price label like
// "1 024 ₽" and parses the remainder. Returns 0 when no digits remain.
func cleanPrice(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	var price float64
	fmt.Sscanf(b.String(), "%f", &price)
	return price
}

// generateISBN fabricates a 978-prefixed placeholder for listings that do
// not expose a real ISBN. Placeholders are unique enough within a run that
// they do not merge unrelated books.
func generateISBN() string {
	return fmt.Sprintf("978%09d", rand.Intn(900000000)+100000000)
}

// absoluteURL resolves the href/src shorthand the sites use in listings.
func absoluteURL(base, ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "/"):
		return base + ref
	default:
		return ref
	}
}

func logPageDone(logger *zap.Logger, source, category string, page, added, total int) {
	logger.Info("Page scraped",
		zap.String("source", source),
		zap.String("category", category),
		zap.Int("page", page),
		zap.Int("added", added),
		zap.Int("total", total),
	)
}
