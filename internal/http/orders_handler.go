package http

import (
	"context"
	"net/http"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

type OrdersAPI interface {
	MyOrders(ctx context.Context, token string) ([]domain.OrderSummary, error)
	AllOrders(ctx context.Context, token string) ([]domain.OrderSummary, error)
}

type OrdersHandler struct {
	api     OrdersAPI
	timeout time.Duration
}

func NewOrdersHandler(api OrdersAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		api:     api,
		timeout: timeout,
	}
}

// GET /api/v1/orders
// Admins see every order, customers their own.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := getShopper(r.Context()).Session

	var fetch func(context.Context, string) ([]domain.OrderSummary, error)
	switch {
	case sess.Permits(domain.ActionViewAllOrders):
		fetch = h.api.AllOrders
	case sess.Permits(domain.ActionViewOwnOrders):
		fetch = h.api.MyOrders
	case !sess.Authenticated():
		respondLogin(w, "unauthenticated", "please sign in")
		return
	default:
		respondError(w, http.StatusForbidden, "permission_denied", "not allowed for your role")
		return
	}

	token, err := sess.Token(ctx)
	if err != nil {
		handleError(w, r, err, "failed to fetch orders")
		return
	}

	orders, err := fetch(ctx, token)
	if err != nil {
		handleError(w, r, err, "failed to fetch orders")
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}
