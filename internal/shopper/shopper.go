package shopper

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/cart"
	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/session"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
)

// Shopper is everything the storefront keeps for one visitor.
type Shopper struct {
	ID      string
	Cart    *cart.Store
	Session *session.Store

	storage storage.ClientStorage
	deps    checkout.Deps

	mu       sync.Mutex
	flow     *checkout.Flow
	lastSeen time.Time
}

// Storage is the visitor's private view of client storage.
func (s *Shopper) Storage() storage.ClientStorage {
	return s.storage
}

// BeginCheckout is the checkout entry point. Signed-out visitors are sent to
// the login view and will come back to the cart afterwards.
func (s *Shopper) BeginCheckout() (*checkout.Flow, domain.Route) {
	if !s.Session.Permits(domain.ActionPlaceOrder) {
		s.Session.RememberReturn(domain.RouteCart)
		return nil, domain.RouteLogin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil || s.flow.Status().IsTerminal() {
		s.flow = checkout.NewFlow(s.Cart, s.Session, s.storage, s.deps)
	}
	return s.flow, domain.RouteShipping
}

// Flow returns the current checkout, if one was started.
func (s *Shopper) Flow() (*checkout.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow, s.flow != nil
}

// Login signs the visitor in. A checkout started by a different user is
// dropped; the cart is kept.
func (s *Shopper) Login(ctx context.Context, email, password string) (session.Session, error) {
	prev, hadPrev := s.Session.Current()

	sess, err := s.Session.Login(ctx, email, password)
	if err != nil {
		return session.Session{}, err
	}
	if !hadPrev || !strings.EqualFold(prev.Email, sess.Email) {
		s.abandonFlow()
	}
	return sess, nil
}

// Logout signs the visitor out and drops any checkout in progress. The cart
// is kept.
func (s *Shopper) Logout(ctx context.Context) error {
	s.abandonFlow()
	return s.Session.Logout(ctx)
}

func (s *Shopper) abandonFlow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow != nil {
		s.flow.Abandon()
		s.flow = nil
	}
}

func (s *Shopper) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Shopper) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
