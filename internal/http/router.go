package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

// BookshopAPI is everything the handlers need from the remote bookshop.
type BookshopAPI interface {
	CatalogAPI
	AccountAPI
	OrdersAPI
	AdminAPI
}

type RouterConfig struct {
	API                BookshopAPI
	Shoppers           Shoppers
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	VisitorCookie      string
	SecureCookie       bool
	// AccessLog toggles chi's request logger
	AccessLog bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	catalogHandler := NewCatalogHandler(cfg.API, cfg.RequestTimeout)
	sessionHandler := NewSessionHandler(cfg.API, cfg.RequestTimeout)
	cartHandler := NewCartHandler()
	checkoutHandler := NewCheckoutHandler()
	ordersHandler := NewOrdersHandler(cfg.API, cfg.RequestTimeout)
	adminHandler := NewAdminHandler(cfg.API, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(LimitBody(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shipping-methods", catalogHandler.ShippingMethods)
		r.Route("/books", func(r chi.Router) {
			r.Get("/top", catalogHandler.TopBooks)
			r.Get("/new", catalogHandler.NewReleases)
			r.Get("/recommended", catalogHandler.RecommendedBooks)
			r.Post("/search", catalogHandler.Search)
		})
		r.Post("/customers", sessionHandler.RegisterCustomer)

		r.Group(func(r chi.Router) {
			r.Use(VisitorMiddleware(cfg.Shoppers, cfg.VisitorCookie, cfg.SecureCookie))

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.Logout)
				r.Post("/login", sessionHandler.Login)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", checkoutHandler.Begin)
				r.Get("/", checkoutHandler.GetCheckout)
				r.With(RequirePermission(domain.ActionPlaceOrder)).Post("/shipping", checkoutHandler.SubmitShipping)
				r.With(RequirePermission(domain.ActionPlaceOrder)).Post("/payment", checkoutHandler.SubmitPayment)
				r.Get("/receipt", checkoutHandler.GetReceipt)
			})

			r.Get("/orders", ordersHandler.ListOrders)

			r.With(RequirePermission(domain.ActionRegisterAdmin)).Post("/admins", sessionHandler.RegisterAdmin)

			r.Route("/admin/books", func(r chi.Router) {
				r.Use(RequirePermission(domain.ActionManageCatalog))
				r.Get("/{isbn}", adminHandler.LookupBook)
				r.Post("/", adminHandler.SaveBook)
				r.Put("/{id}/deactivate", adminHandler.DeactivateBook)
			})
		})
	})

	return r
}
