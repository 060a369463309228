package http

import (
	"errors"
	"net/http"

	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

// POST /api/v1/checkout
// Starts (or resumes) checkout. Signed-out visitors get route /login.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sh := getShopper(r.Context())

	flow, route := sh.BeginCheckout()
	if flow == nil {
		respondJSON(w, http.StatusOK, CheckoutDTO{Route: string(route)})
		return
	}

	dto := toCheckoutDTO(flow)
	dto.Route = string(route)
	respondJSON(w, http.StatusOK, dto)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	flow, ok := getShopper(r.Context()).Flow()
	if !ok {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutDTO(flow))
}

// POST /api/v1/checkout/shipping
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	flow, ok := getShopper(r.Context()).Flow()
	if !ok {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	var req domain.ShippingDetails
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := flow.SubmitShipping(req); err != nil {
		handleError(w, r, err, "failed to save shipping details")
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutDTO(flow))
}

// POST /api/v1/checkout/payment
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	flow, ok := getShopper(r.Context()).Flow()
	if !ok {
		respondError(w, http.StatusNotFound, "no_checkout", "no checkout in progress")
		return
	}

	var req domain.CardData
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := flow.SubmitPayment(r.Context(), req)
	if err != nil {
		handleError(w, r, err, "failed to place order")
		return
	}

	dto := toCheckoutDTO(flow)
	rd := toReceiptDTO(receipt)
	dto.Receipt = &rd
	dto.Route = string(domain.RouteConfirmation)
	respondJSON(w, http.StatusCreated, dto)
}

// GET /api/v1/checkout/receipt
// Falls back to client storage so the confirmation survives a restart.
func (h *CheckoutHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	sh := getShopper(r.Context())

	if flow, ok := sh.Flow(); ok {
		if st := flow.State(); st.Receipt != nil {
			respondJSON(w, http.StatusOK, toReceiptDTO(*st.Receipt))
			return
		}
	}

	receipt, err := checkout.LoadReceipt(r.Context(), sh.Storage())
	if err != nil {
		if !errors.Is(err, checkout.ErrNoReceipt) {
			handleError(w, r, err, "failed to load receipt")
			return
		}
		respondError(w, http.StatusNotFound, "not_found", "no order has been placed")
		return
	}
	respondJSON(w, http.StatusOK, toReceiptDTO(receipt))
}
