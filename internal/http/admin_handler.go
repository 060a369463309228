package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lpdevlop/book-store-frontend/internal/bookapi"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

type AdminAPI interface {
	BookByISBN(ctx context.Context, token, isbn string) (domain.Book, error)
	SaveBook(ctx context.Context, token string, book domain.Book) (domain.Book, error)
	DeactivateBook(ctx context.Context, token string, id int64) error
}

type AdminHandler struct {
	api     AdminAPI
	timeout time.Duration
}

func NewAdminHandler(api AdminAPI, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		api:     api,
		timeout: timeout,
	}
}

// BookLookupDTO is the ISBN lookup answer. A miss is a normal result that
// invites creating the book.
type BookLookupDTO struct {
	Found  bool     `json:"found"`
	Create bool     `json:"create"`
	ISBN   string   `json:"isbn"`
	Book   *BookDTO `json:"book,omitempty"`
}

// GET /api/v1/admin/books/{isbn}
func (h *AdminHandler) LookupBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	isbn := strings.TrimSpace(chi.URLParam(r, "isbn"))
	if isbn == "" {
		respondError(w, http.StatusBadRequest, "missing_isbn", "isbn is required")
		return
	}

	token, err := getShopper(r.Context()).Session.Token(ctx)
	if err != nil {
		handleError(w, r, err, "failed to look up book")
		return
	}

	book, err := h.api.BookByISBN(ctx, token, isbn)
	if errors.Is(err, bookapi.ErrNotFound) {
		respondJSON(w, http.StatusOK, BookLookupDTO{Found: false, Create: true, ISBN: isbn})
		return
	}
	if err != nil {
		handleError(w, r, err, "failed to look up book")
		return
	}

	dto := toBookDTO(book)
	respondJSON(w, http.StatusOK, BookLookupDTO{Found: true, ISBN: isbn, Book: &dto})
}

// POST /api/v1/admin/books
func (h *AdminHandler) SaveBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Book
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ISBN = strings.TrimSpace(req.ISBN)
	req.Title = strings.TrimSpace(req.Title)
	if req.ISBN == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "ISBN and Title are required")
		return
	}

	token, err := getShopper(r.Context()).Session.Token(ctx)
	if err != nil {
		handleError(w, r, err, "failed to save book")
		return
	}

	saved, err := h.api.SaveBook(ctx, token, req)
	if err != nil {
		handleError(w, r, err, "failed to save book")
		return
	}
	respondJSON(w, http.StatusOK, toBookDTO(saved))
}

// PUT /api/v1/admin/books/{id}/deactivate
func (h *AdminHandler) DeactivateBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_book_id", "id must be a positive integer")
		return
	}

	token, err := getShopper(r.Context()).Session.Token(ctx)
	if err != nil {
		handleError(w, r, err, "failed to deactivate book")
		return
	}

	if err := h.api.DeactivateBook(ctx, token, id); err != nil {
		handleError(w, r, err, "failed to deactivate book")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "deactivated": true})
}
