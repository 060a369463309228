package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

// CartHandler serves the visitor's cart. Nothing here touches the network.
type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// AddItemRequestDTO is the catalog entry being added, as the client received it.
type AddItemRequestDTO struct {
	Book domain.Book `json:"book"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type AddItemResponseDTO struct {
	Added bool    `json:"added"`
	Cart  CartDTO `json:"cart"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sh := getShopper(r.Context())
	respondJSON(w, http.StatusOK, toCartDTO(sh.Cart.Items()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Book.ID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "book id must be positive")
		return
	}
	if req.Book.Title == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "book title is required")
		return
	}

	sh := getShopper(r.Context())
	added, err := sh.Cart.AddItem(req.Book)
	if err != nil {
		handleError(w, r, err, "failed to add item")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, AddItemResponseDTO{Added: added, Cart: toCartDTO(sh.Cart.Items())})
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	sh := getShopper(r.Context())
	if err := sh.Cart.SetQuantity(productID, req.Quantity); err != nil {
		handleError(w, r, err, "failed to update quantity")
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(sh.Cart.Items()))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	sh := getShopper(r.Context())
	sh.Cart.RemoveItem(productID)
	respondJSON(w, http.StatusOK, toCartDTO(sh.Cart.Items()))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sh := getShopper(r.Context())
	sh.Cart.Clear()
	respondJSON(w, http.StatusOK, toCartDTO(sh.Cart.Items()))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

