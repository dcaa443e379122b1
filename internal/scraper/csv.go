package scraper

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"bookmarket/internal/domain"
)

var csvHeader = []string{"title", "author", "isbn", "price", "url", "image_url", "website"}

// WriteCSV writes one source's records to dir/name. The file gets a UTF-8
// byte-order mark so spreadsheet tools detect the Cyrillic encoding.
func WriteCSV(dir, name string, records []domain.Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Title,
			record.Author,
			record.ISBN,
			strconv.FormatFloat(record.Price, 'f', -1, 64),
			record.URL,
			record.ImageURL,
			record.Website,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Sync()
}
