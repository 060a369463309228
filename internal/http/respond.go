package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lpdevlop/book-store-frontend/internal/bookapi"
	"github.com/lpdevlop/book-store-frontend/internal/cart"
	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/session"
	"github.com/lpdevlop/book-store-frontend/internal/validation"
)

type ErrorResponse struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code,omitempty"`
	Details string                  `json:"details,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// respondLogin tells the client to navigate to the login view.
func respondLogin(w http.ResponseWriter, code, message string) {
	respondJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: string(domain.RouteLogin),
	})
}

// handleError maps an error from the stores or the bookshop API to a status
// and code. action is the message shown for upstream failures, e.g.
// "failed to register".
func handleError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
		return
	}

	var httpStatus int
	var code string
	message := err.Error()

	switch {
	case errors.Is(err, session.ErrSessionExpired):
		respondLogin(w, "session_expired", "session expired, please sign in again")
		return
	case errors.Is(err, session.ErrNotAuthenticated):
		respondLogin(w, "unauthenticated", "please sign in")
		return
	case errors.Is(err, bookapi.ErrUnavailable):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
		message = action
	case errors.Is(err, session.ErrInvalidCredentials):
		httpStatus = http.StatusUnauthorized
		code = "invalid_credentials"
		message = session.ErrInvalidCredentials.Error()
	case errors.Is(err, cart.ErrInvalidQuantity):
		httpStatus = http.StatusBadRequest
		code = "invalid_quantity"
	case errors.Is(err, cart.ErrInvalidPrice):
		httpStatus = http.StatusBadRequest
		code = "invalid_price"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus = http.StatusBadRequest
		code = "empty_cart"
	case errors.Is(err, checkout.ErrIllegalTransition),
		errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, checkout.ErrAlreadyPlaced),
		errors.Is(err, checkout.ErrAbandoned):
		httpStatus = http.StatusConflict
		code = "checkout_conflict"
	case errors.Is(err, checkout.ErrNoReceipt):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, bookapi.ErrUnauthorized):
		respondLogin(w, "unauthenticated", "please sign in")
		return
	case errors.Is(err, bookapi.ErrForbidden):
		httpStatus = http.StatusForbidden
		code = "permission_denied"
		message = action
	case errors.Is(err, bookapi.ErrNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
		message = action
	case errors.Is(err, bookapi.ErrRejected):
		httpStatus = http.StatusUnprocessableEntity
		code = "rejected"
		message = action
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
		message = action
	default:
		var apiErr *bookapi.APIError
		if errors.As(err, &apiErr) || errors.Is(err, checkout.ErrOrderFailed) || errors.Is(err, bookapi.ErrInvalidResponse) {
			httpStatus = http.StatusBadGateway
			code = "upstream_error"
		} else {
			httpStatus = http.StatusInternalServerError
			code = "internal_error"
		}
		message = action
	}

	if httpStatus >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), action,
			slog.String("request_id", getRequestID(r.Context())),
			slog.Any("error", err))
	}
	respondError(w, httpStatus, code, message)
}
