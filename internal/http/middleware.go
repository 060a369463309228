package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/shopper"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	shopperKey   contextKey = "shopper"
)

// Shoppers resolves a visitor id to its state.
type Shoppers interface {
	Get(ctx context.Context, visitorID string) *shopper.Shopper
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = "req-" + uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VisitorMiddleware identifies the visitor by cookie, issuing a new id on the
// first visit, and puts its Shopper in the request context.
func VisitorMiddleware(shoppers Shoppers, cookieName string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					visitorID = id.String()
				}
			}
			if visitorID == "" {
				visitorID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    visitorID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sh := shoppers.Get(r.Context(), visitorID)
			ctx := context.WithValue(r.Context(), shopperKey, sh)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission rejects visitors whose role does not permit action.
func RequirePermission(action domain.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sh := getShopper(r.Context())
			if sh == nil {
				respondError(w, http.StatusInternalServerError, "internal_error", "missing visitor")
				return
			}
			if !sh.Session.Authenticated() {
				respondLogin(w, "unauthenticated", "please sign in")
				return
			}
			if !sh.Session.Permits(action) {
				respondError(w, http.StatusForbidden, "permission_denied", "not allowed for your role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimitBody caps request bodies at n bytes.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getShopper(ctx context.Context) *shopper.Shopper {
	if sh, ok := ctx.Value(shopperKey).(*shopper.Shopper); ok {
		return sh
	}
	return nil
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}
