package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bookmarket/internal/domain"
	"bookmarket/internal/repository"
	"bookmarket/internal/service"
)

// Mock catalog service for testing
type mockCatalogService struct {
	books   []*domain.SearchResult
	details map[int64]*domain.BookDetails
}

func newMockCatalogService() *mockCatalogService {
	return &mockCatalogService{details: make(map[int64]*domain.BookDetails)}
}

func (m *mockCatalogService) SearchBooks(ctx context.Context, filter repository.SearchFilter) ([]*domain.SearchResult, error) {
	if filter.Query == "" {
		return m.books, nil
	}
	matched := []*domain.SearchResult{}
	for _, b := range m.books {
		if strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Query)) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (m *mockCatalogService) GetBookDetails(ctx context.Context, id int64) (*domain.BookDetails, error) {
	details, exists := m.details[id]
	if !exists {
		return nil, service.ErrBookNotFound
	}
	return details, nil
}

func (m *mockCatalogService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	return &domain.CatalogStats{TotalBooks: len(m.books), TotalOffers: 2, AvgPrice: 475, Websites: 2}, nil
}

func (m *mockCatalogService) Websites(ctx context.Context) ([]string, error) {
	return []string{"chitai-gorod", "labirint"}, nil
}

func newTestRouter(catalog service.CatalogService) http.Handler {
	router := chi.NewRouter()
	handler := NewCatalogHandler(catalog, zap.NewNop())
	handler.RegisterRoutes(router)
	return router
}

func TestGetBook_NonNumericID(t *testing.T) {
	router := newTestRouter(newMockCatalogService())

	req := httptest.NewRequest("GET", "/api/book/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Error.Message != "некорректный ID книги" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	router := newTestRouter(newMockCatalogService())

	req := httptest.NewRequest("GET", "/api/book/12345", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "книга не найдена") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetBook_Found(t *testing.T) {
	catalog := newMockCatalogService()
	catalog.details[7] = &domain.BookDetails{
		ID:     7,
		Title:  "Дюна",
		Author: "Фрэнк Герберт",
		Offers: []domain.Offer{
			{Website: "labirint", Price: 450, URL: "https://labirint.ru/dune"},
			{Website: "chitai-gorod", Price: 500, URL: "https://chitai-gorod.ru/dune"},
		},
		Stats: domain.OfferStats{WebsitesCount: 2, MinPrice: 450, MaxPrice: 500, AvgPrice: 475},
	}
	router := newTestRouter(catalog)

	req := httptest.NewRequest("GET", "/api/book/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var details domain.BookDetails
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if details.Title != "Дюна" || len(details.Offers) != 2 {
		t.Errorf("details = %+v", details)
	}
	if details.Stats.WebsitesCount != 2 {
		t.Errorf("stats = %+v", details.Stats)
	}

	// Internal ids never leak into the offer payload.
	if strings.Contains(w.Body.String(), "product_id") {
		t.Error("offer payload must not expose product_id")
	}
}

func TestIndex_EmptyCatalog(t *testing.T) {
	router := newTestRouter(newMockCatalogService())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Книги не найдены") {
		t.Error("empty catalog must render the no-results panel")
	}
}

func TestIndex_RendersBooksAndEscapesQuery(t *testing.T) {
	catalog := newMockCatalogService()
	catalog.books = []*domain.SearchResult{
		{
			ID: 1, Title: "Дюна", Author: "Фрэнк Герберт",
			MinPrice: 450, MaxPrice: 500, OffersCount: 2,
			Websites: []string{"labirint", "chitai-gorod"},
			Offers:   []domain.Offer{{Website: "labirint", Price: 450, URL: "u"}},
		},
	}
	router := newTestRouter(catalog)

	req := httptest.NewRequest("GET", "/?q=%D0%B4%D1%8E%D0%BD%D0%B0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Дюна") {
		t.Error("page must list the matched book")
	}
	if !strings.Contains(body, "от 450") {
		t.Error("page must render the minimum price")
	}

	// Query text is echoed through the template engine, which escapes it.
	req = httptest.NewRequest("GET", "/?q=%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if strings.Contains(w.Body.String(), "<script>alert(1)</script>") {
		t.Error("query must be HTML-escaped in the page")
	}
}

func TestParseSearchRequest_Defaults(t *testing.T) {
	req := parseSearchRequest(httptest.NewRequest("GET", "/", nil))

	if req.Sort != "relevance" {
		t.Errorf("Sort = %q, want relevance", req.Sort)
	}
	if req.Website != "all" {
		t.Errorf("Website = %q, want all", req.Website)
	}
	if req.MinPrice != nil || req.MaxPrice != nil {
		t.Error("price bounds must default to absent")
	}
}

func TestParseSearchRequest_InvalidValuesDegrade(t *testing.T) {
	r := httptest.NewRequest("GET", "/?sort=evil&website=labirint&min_price=abc&max_price=-5", nil)
	req := parseSearchRequest(r)

	if req.Sort != "relevance" {
		t.Errorf("unknown sort must degrade to relevance, got %q", req.Sort)
	}
	if req.Website != "labirint" {
		t.Errorf("Website = %q", req.Website)
	}
	if req.MinPrice != nil {
		t.Error("non-numeric min_price must be dropped")
	}
	if req.MaxPrice != nil {
		t.Error("negative max_price must be dropped")
	}
}

func TestParseSearchRequest_ValidPrices(t *testing.T) {
	r := httptest.NewRequest("GET", "/?min_price=100&max_price=900.50", nil)
	req := parseSearchRequest(r)

	if req.MinPrice == nil || *req.MinPrice != 100 {
		t.Errorf("MinPrice = %v", req.MinPrice)
	}
	if req.MaxPrice == nil || *req.MaxPrice != 900.50 {
		t.Errorf("MaxPrice = %v", req.MaxPrice)
	}
	if req.RawMinPrice != "100" || req.RawMaxPrice != "900.50" {
		t.Errorf("raw echoes = %q, %q", req.RawMinPrice, req.RawMaxPrice)
	}
}
