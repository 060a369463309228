package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/validation"
)

type AccountAPI interface {
	RegisterCustomer(ctx context.Context, reg domain.CustomerRegistration) error
	RegisterAdmin(ctx context.Context, token string, reg domain.AdminRegistration) error
}

type SessionHandler struct {
	api     AccountAPI
	timeout time.Duration
}

func NewSessionHandler(api AccountAPI, timeout time.Duration) *SessionHandler {
	return &SessionHandler{
		api:     api,
		timeout: timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sh := getShopper(r.Context())
	respondJSON(w, http.StatusOK, toSessionDTO(sh.Session.Current()))
}

// POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		handleError(w, r, err, "failed to sign in")
		return
	}

	sh := getShopper(r.Context())
	sess, err := sh.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err, "failed to sign in")
		return
	}

	dto := toSessionDTO(sess, true)
	dto.Route = string(sh.Session.TakeReturn())
	respondJSON(w, http.StatusOK, dto)
}

// DELETE /api/v1/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sh := getShopper(r.Context())
	if err := sh.Logout(r.Context()); err != nil {
		handleError(w, r, err, "failed to sign out")
		return
	}
	dto := toSessionDTO(sh.Session.Current())
	dto.Route = string(domain.RouteHome)
	respondJSON(w, http.StatusOK, dto)
}

// POST /api/v1/customers
func (h *SessionHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.CustomerRegistration
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		handleError(w, r, err, "failed to register")
		return
	}

	if err := h.api.RegisterCustomer(ctx, req); err != nil {
		handleError(w, r, err, "failed to register")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"registered": true})
}

// POST /api/v1/admins
func (h *SessionHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.AdminRegistration
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		handleError(w, r, err, "failed to register admin")
		return
	}

	token, err := getShopper(r.Context()).Session.Token(ctx)
	if err != nil {
		handleError(w, r, err, "failed to register admin")
		return
	}

	if err := h.api.RegisterAdmin(ctx, token, req); err != nil {
		handleError(w, r, err, "failed to register admin")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]bool{"registered": true})
}
