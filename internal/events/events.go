package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const EventTypeOrderPlaced = "order.placed"

// OrderPlaced is published after the bookshop API accepted an order.
type OrderPlaced struct {
	OrderID        string          `json:"order_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	CustomerEmail  string          `json:"customer_email"`
	ShippingMethod string          `json:"shipping_method"`
	TotalQuantity  int             `json:"total_quantity"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Currency       string          `json:"currency"`
	PlacedAt       time.Time       `json:"placed_at"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
