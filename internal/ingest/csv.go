package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bookmarket/internal/domain"
	"bookmarket/internal/normalizer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SourceFile pairs one CSV export with its source website id.
type SourceFile struct {
	Path    string
	Website string
}

// DefaultSources lists the per-site CSV exports an ingestion run consumes.
func DefaultSources(dir string) []SourceFile {
	return []SourceFile{
		{Path: filepath.Join(dir, "chitai_gorod_1000.csv"), Website: "chitai-gorod"},
		{Path: filepath.Join(dir, "labirint_1000.csv"), Website: "labirint"},
		{Path: filepath.Join(dir, "moscowbooks_1000.csv"), Website: "moscowbooks"},
	}
}

// LoadSource reads one per-site CSV export and returns the cleaned valid
// records in file order, plus the count of rows it rejected (malformed
// rows, unparsable prices, invalid books). The file may start with a UTF-8
// byte-order mark.
func LoadSource(source SourceFile) ([]domain.Record, int, error) {
	f, err := os.Open(source.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", source.Path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header of %s: %w", source.Path, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	records := []domain.Record{}
	invalid := 0

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				invalid++
				continue
			}
			return nil, invalid, fmt.Errorf("failed to read %s: %w", source.Path, err)
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(field(row, "price")), 64)
		if err != nil {
			invalid++
			continue
		}

		record := domain.Record{
			Title:    field(row, "title"),
			Author:   field(row, "author"),
			ISBN:     field(row, "isbn"),
			Price:    price,
			URL:      field(row, "url"),
			ImageURL: field(row, "image_url"),
			Website:  source.Website,
		}

		if !normalizer.IsValidRecord(record) {
			invalid++
			continue
		}

		records = append(records, normalizer.Normalize(record))
	}

	return records, invalid, nil
}
