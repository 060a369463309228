package bookapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lpdevlop/book-store-frontend/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

type orderRequest struct {
	IdempotencyKey string             `json:"idempotencyKey"`
	OrderItems     []domain.OrderLine `json:"orderItems"`
	TotalQuantity  int                `json:"totalQuantity"`
	TotalAmount    float64            `json:"totalAmount"`
	ShippingFee    float64            `json:"shippingFee"`
	FinalAmount    float64            `json:"finalAmount"`
	PaymentMethod  string             `json:"paymentMethod"`
	PaymentStatus  string             `json:"paymentStatus"`
	OrderStatus    string             `json:"orderStatus"`
	ShippingMethod string             `json:"shippingMethod"`
	Email          string             `json:"email"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	Company        string             `json:"company,omitempty"`
	Address        string             `json:"address"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	Zip            string             `json:"zip"`
	Country        string             `json:"country"`
	Phone          string             `json:"phone"`
}

func newOrderRequest(o domain.Order) orderRequest {
	s := o.Shipping
	return orderRequest{
		IdempotencyKey: o.IdempotencyKey,
		OrderItems:     o.Lines,
		TotalQuantity:  o.TotalQuantity,
		TotalAmount:    o.TotalAmount.Round(2).InexactFloat64(),
		ShippingFee:    o.ShippingFee.Round(2).InexactFloat64(),
		FinalAmount:    o.FinalAmount.Round(2).InexactFloat64(),
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		OrderStatus:    o.OrderStatus,
		ShippingMethod: s.ShippingMethod,
		Email:          s.Email,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Company:        s.Company,
		Address:        s.Address,
		City:           s.City,
		State:          s.State,
		Zip:            s.Zip,
		Country:        s.Country,
		Phone:          s.Phone,
	}
}

type placeOrderResponse struct {
	Data domain.PlacedOrder `json:"data"`
}

// PlaceOrder submits the order. The idempotency key travels both in the
// Idempotency-Key header and in the payload.
func (c *Client) PlaceOrder(ctx context.Context, token string, order domain.Order) (domain.PlacedOrder, error) {
	var resp placeOrderResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/order",
		token:  token,
		body:   newOrderRequest(order),
		header: http.Header{idempotencyHeader: []string{order.IdempotencyKey}},
	}, &resp)
	if err != nil {
		return domain.PlacedOrder{}, err
	}
	if resp.Data.OrderID == "" {
		return domain.PlacedOrder{}, fmt.Errorf("place order: %w: missing orderId", ErrInvalidResponse)
	}
	return resp.Data, nil
}

type ordersResponse struct {
	Data []domain.OrderSummary `json:"data"`
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]domain.OrderSummary, error) {
	return c.listOrders(ctx, token, "/order/my-orders")
}

func (c *Client) AllOrders(ctx context.Context, token string) ([]domain.OrderSummary, error) {
	return c.listOrders(ctx, token, "/order/all")
}

func (c *Client) listOrders(ctx context.Context, token, path string) ([]domain.OrderSummary, error) {
	var resp ordersResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.OrderSummary{}, nil
	}
	return resp.Data, nil
}
