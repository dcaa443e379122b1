package transport

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"bookmarket/internal/domain"
)

//go:embed templates/index.html.tmpl
var templatesFS embed.FS

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	tmpl := template.Must(template.New("index.html.tmpl").
		Funcs(template.FuncMap{
			"price": formatPrice,
		}).
		ParseFS(templatesFS, "templates/index.html.tmpl"))

	return &pageRenderer{tmpl: tmpl}
}

func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

type indexData struct {
	Query       string
	Sort        string
	Website     string
	MinPrice    string
	MaxPrice    string
	Stats       *domain.CatalogStats
	Websites    []string
	Books       []*domain.SearchResult
	Filtered    bool
	GeneratedAt string
}

func (p *pageRenderer) render(w http.ResponseWriter, req SearchRequest, stats *domain.CatalogStats, websites []string, books []*domain.SearchResult) error {
	data := indexData{
		Query:       req.Query,
		Sort:        req.Sort,
		Website:     req.Website,
		MinPrice:    req.RawMinPrice,
		MaxPrice:    req.RawMaxPrice,
		Stats:       stats,
		Websites:    websites,
		Books:       books,
		Filtered:    req.Query != "" || req.Website != "all" || req.MinPrice != nil || req.MaxPrice != nil,
		GeneratedAt: time.Now().Format("02.01.2006 15:04"),
	}

	// Render to a buffer first so a template error never leaves a half
	// written page behind a 200 status.
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}
