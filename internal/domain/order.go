package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCard = "CARD"
	PaymentStatusPaid = "PAID"
	OrderStatusPlaced = "PLACED"
)

// OrderLine is one {productId, quantity} pair of the submission payload.
type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Order is the submission payload. Build it with NewOrder and do not modify it.
type Order struct {
	IdempotencyKey string
	Lines          []OrderLine
	TotalQuantity  int
	TotalAmount    decimal.Decimal
	ShippingFee    decimal.Decimal
	FinalAmount    decimal.Decimal
	PaymentMethod  string
	PaymentStatus  string
	OrderStatus    string
	Shipping       ShippingDetails
}

// NewOrder derives an Order from a cart snapshot and the shipping form.
// FinalAmount includes the flat fee of the selected shipping method.
func NewOrder(idempotencyKey string, items []CartItem, shipping ShippingDetails) Order {
	lines := make([]OrderLine, 0, len(items))
	quantity := 0
	for _, item := range items {
		lines = append(lines, OrderLine{ProductID: item.ID, Quantity: item.Quantity})
		quantity += item.Quantity
	}
	fee := decimal.Zero
	if m, ok := LookupShippingMethod(shipping.ShippingMethod); ok {
		fee = m.Fee
	}
	total := Subtotal(items)
	return Order{
		IdempotencyKey: idempotencyKey,
		Lines:          lines,
		TotalQuantity:  quantity,
		TotalAmount:    total,
		ShippingFee:    fee,
		FinalAmount:    total.Add(fee),
		PaymentMethod:  PaymentMethodCard,
		PaymentStatus:  PaymentStatusPaid,
		OrderStatus:    OrderStatusPlaced,
		Shipping:       shipping,
	}
}

// PlacedOrder is the API acknowledgement of a submitted order.
type PlacedOrder struct {
	OrderID string `json:"orderId"`
}

// OrderItemSummary is a line of an order listed by the API.
type OrderItemSummary struct {
	ProductID int64    `json:"productId"`
	Title     string   `json:"title,omitempty"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}

// OrderSummary is an order as listed by the API.
type OrderSummary struct {
	ID             string             `json:"id,omitempty"`
	TrackingNumber string             `json:"trackingNumber,omitempty"`
	ShippingMethod string             `json:"shippingMethod,omitempty"`
	PaymentMethod  string             `json:"paymentMethod,omitempty"`
	PaymentStatus  string             `json:"paymentStatus,omitempty"`
	OrderStatus    string             `json:"orderStatus,omitempty"`
	TotalAmount    *float64           `json:"totalAmount,omitempty"`
	OrderItems     []OrderItemSummary `json:"orderItems"`
	CreatedAt      string             `json:"createdAt,omitempty"`
}

// Receipt is kept in client storage for the confirmation view.
type Receipt struct {
	OrderID        string          `json:"orderId"`
	IdempotencyKey string          `json:"idempotencyKey"`
	Items          []CartItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shippingFee"`
	Total          decimal.Decimal `json:"total"`
	Shipping       ShippingDetails `json:"shipping"`
	Card           MaskedCard      `json:"card"`
	PlacedAt       time.Time       `json:"placedAt"`
}
