package cart

import (
	"slices"
	"sync"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Store holds one visitor's pending selections in memory. It is the only
// writer of its items; readers get copies.
type Store struct {
	mu    sync.RWMutex
	items []domain.CartItem
}

func NewStore() *Store {
	return &Store{}
}

// AddItem inserts a snapshot of book with quantity 1. A book already in the
// cart is left untouched and false is returned. A negative price is rejected.
func (s *Store) AddItem(book domain.Book) (bool, error) {
	if book.Price.Valid && book.Price.Decimal.IsNegative() {
		return false, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(book.ID) >= 0 {
		return false, nil
	}
	s.items = append(s.items, domain.NewCartItem(book))
	return true, nil
}

// SetQuantity replaces the quantity of the item with the given id. Unknown ids
// are ignored; out of range quantities are rejected without changing the cart.
func (s *Store) SetQuantity(id int64, quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity = quantity
	}
	return nil
}

func (s *Store) RemoveItem(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// RemoveItems drops every item whose id is listed. Unknown ids are ignored.
func (s *Store) RemoveItems(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if !slices.Contains(ids, it.ID) {
			kept = append(kept, it)
		}
	}
	clear(s.items[len(kept):])
	s.items = kept
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subtotal is recomputed from the current items on every call.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Subtotal(s.items)
}

// caller holds s.mu
func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
