package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

const (
	defaultPageSize = 12
	maxPageSize     = 48
)

type CatalogAPI interface {
	TopBooks(ctx context.Context) ([]domain.Book, error)
	NewReleases(ctx context.Context) ([]domain.Book, error)
	RecommendedBooks(ctx context.Context) ([]domain.Book, error)
	SearchBooks(ctx context.Context, title string, page, size int) (domain.BookPage, error)
}

type CatalogHandler struct {
	api     CatalogAPI
	timeout time.Duration
}

func NewCatalogHandler(api CatalogAPI, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		api:     api,
		timeout: timeout,
	}
}

type SearchRequestDTO struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// GET /api/v1/books/top
func (h *CatalogHandler) TopBooks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.api.TopBooks)
}

// GET /api/v1/books/new
func (h *CatalogHandler) NewReleases(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.api.NewReleases)
}

// GET /api/v1/books/recommended
func (h *CatalogHandler) RecommendedBooks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.api.RecommendedBooks)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]domain.Book, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	books, err := fetch(ctx)
	if err != nil {
		handleError(w, r, err, "failed to fetch books")
		return
	}
	respondJSON(w, http.StatusOK, toBookDTOs(books))
}

// POST /api/v1/books/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SearchRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid_title", "title is required")
		return
	}
	if req.Page < 0 {
		respondError(w, http.StatusBadRequest, "invalid_page", "page must not be negative")
		return
	}
	if req.Size == 0 {
		req.Size = defaultPageSize
	}
	if req.Size < 1 || req.Size > maxPageSize {
		respondError(w, http.StatusBadRequest, "invalid_size", "size must be between 1 and 48")
		return
	}

	page, err := h.api.SearchBooks(ctx, req.Title, req.Page, req.Size)
	if err != nil {
		handleError(w, r, err, "failed to search books")
		return
	}

	respondJSON(w, http.StatusOK, BookPageDTO{
		Content:       toBookDTOs(page.Content),
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
		Number:        page.Number,
		Size:          page.Size,
	})
}

// GET /api/v1/shipping-methods
func (h *CatalogHandler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods := domain.ShippingMethods()
	out := make([]ShippingMethodDTO, 0, len(methods))
	for _, m := range methods {
		out = append(out, ShippingMethodDTO{ID: m.ID, Label: m.Label, Fee: domain.FormatAmount(m.Fee)})
	}
	respondJSON(w, http.StatusOK, out)
}
