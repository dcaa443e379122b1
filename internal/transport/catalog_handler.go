package transport

import (
	"errors"
	"net/http"
	"strconv"

	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SearchRequest represents the query parameters of the search page.
type SearchRequest struct {
	Query    string   `validate:"omitempty,max=200"`
	Sort     string   `validate:"omitempty,oneof=relevance price_asc price_desc title author"`
	Website  string   `validate:"omitempty,max=100"`
	MinPrice *float64 `validate:"omitempty,gte=0"`
	MaxPrice *float64 `validate:"omitempty,gte=0"`

	// Raw price strings, echoed back into the form inputs.
	RawMinPrice string `validate:"-"`
	RawMaxPrice string `validate:"-"`
}

var validate = validator.New()

// parseSearchRequest reads the search parameters off the URL. This backs an
// HTML form, so invalid values degrade to their defaults instead of failing
// the whole page: an unknown sort falls back to relevance, a non-numeric
// price is treated as absent.
func parseSearchRequest(r *http.Request) SearchRequest {
	q := r.URL.Query()

	req := SearchRequest{
		Query:   q.Get("q"),
		Sort:    q.Get("sort"),
		Website: q.Get("website"),
	}

	if raw := q.Get("min_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			req.MinPrice = &v
			req.RawMinPrice = raw
		}
	}
	if raw := q.Get("max_price"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			req.MaxPrice = &v
			req.RawMaxPrice = raw
		}
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				switch fe.Field() {
				case "Query":
					req.Query = ""
				case "Sort":
					req.Sort = string(repository.SortRelevance)
				case "Website":
					req.Website = repository.WebsiteAll
				case "MinPrice":
					req.MinPrice = nil
					req.RawMinPrice = ""
				case "MaxPrice":
					req.MaxPrice = nil
					req.RawMaxPrice = ""
				}
			}
		}
	}

	if req.Sort == "" {
		req.Sort = string(repository.SortRelevance)
	}
	if req.Website == "" {
		req.Website = repository.WebsiteAll
	}

	return req
}

func (req SearchRequest) filter() repository.SearchFilter {
	return repository.SearchFilter{
		Query:    req.Query,
		Sort:     repository.ParseSortMode(req.Sort),
		Website:  req.Website,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
	}
}

// CatalogHandler handles HTTP requests for the comparison catalog.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
	page    *pageRenderer
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
		page:    newPageRenderer(),
	}
}

// RegisterRoutes registers the catalog routes. Unmatched paths fall back to
// static file serving from the working directory.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/api/book/{id}", h.GetBook)
	r.Handle("/*", http.FileServer(http.Dir(".")))
}

// Index renders the search page.
func (h *CatalogHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req := parseSearchRequest(r)

	stats, err := h.catalog.Stats(ctx)
	if err != nil {
		h.logger.Error("Failed to load catalog stats", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	websites, err := h.catalog.Websites(ctx)
	if err != nil {
		h.logger.Error("Failed to load websites", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	books, err := h.catalog.SearchBooks(ctx, req.filter())
	if err != nil {
		h.logger.Error("Search failed", zap.Error(err), zap.String("query", req.Query))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.page.render(w, req, stats, websites, books); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
	}
}

// GetBook handles the JSON detail API.
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "некорректный ID книги")
		return
	}

	details, err := h.catalog.GetBookDetails(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "книга не найдена")
			return
		}
		h.logger.Error("Failed to load book details", zap.Error(err), zap.Int64("book_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load book details")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, details)
}
