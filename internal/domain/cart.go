package domain

import "github.com/shopspring/decimal"

// CartItem is a snapshot of a Book taken when it was added to the cart.
type CartItem struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	IsAvailable bool            `json:"isAvailable"`
}

// NewCartItem copies the display fields of b with quantity 1.
func NewCartItem(b Book) CartItem {
	return CartItem{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ImageURL:    b.ImageURL,
		Price:       b.UnitPrice(),
		Quantity:    1,
		IsAvailable: b.IsAvailable,
	}
}

// LineTotal is price * quantity, unrounded.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums LineTotal over items.
func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
