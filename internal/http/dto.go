package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/session"
)

// Amounts leave the storefront as fixed two-decimal strings; nothing is
// rounded before this point.

type BookDTO struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	ISBN            string   `json:"isbn"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publicationDate,omitempty"`
	Price           string   `json:"price"`
	Language        string   `json:"language,omitempty"`
	Genre           string   `json:"genre,omitempty"`
	StockQuantity   *int     `json:"stockQuantity,omitempty"`
	Description     string   `json:"description,omitempty"`
	AverageRating   *float64 `json:"averageRating,omitempty"`
	PageCount       *int     `json:"pageCount,omitempty"`
	Format          string   `json:"format,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	IsAvailable     bool     `json:"isAvailable"`
}

func toBookDTO(b domain.Book) BookDTO {
	return BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		PublicationDate: b.PublicationDate,
		Price:           domain.FormatAmount(b.UnitPrice()),
		Language:        b.Language,
		Genre:           b.Genre,
		StockQuantity:   b.StockQuantity,
		Description:     b.Description,
		AverageRating:   b.AverageRating,
		PageCount:       b.PageCount,
		Format:          b.Format,
		ImageURL:        b.ImageURL,
		IsAvailable:     b.IsAvailable,
	}
}

func toBookDTOs(books []domain.Book) []BookDTO {
	out := make([]BookDTO, 0, len(books))
	for _, b := range books {
		out = append(out, toBookDTO(b))
	}
	return out
}

type BookPageDTO struct {
	Content       []BookDTO `json:"content"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int64     `json:"totalElements"`
	Number        int       `json:"number"`
	Size          int       `json:"size"`
}

type CartItemDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
	IsAvailable bool   `json:"isAvailable"`
}

type CartDTO struct {
	Items     []CartItemDTO `json:"items"`
	ItemCount int           `json:"itemCount"`
	Subtotal  string        `json:"subtotal"`
	Currency  string        `json:"currency"`
}

func toCartItemDTOs(items []domain.CartItem) []CartItemDTO {
	out := make([]CartItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemDTO{
			ID:          it.ID,
			Title:       it.Title,
			Author:      it.Author,
			ImageURL:    it.ImageURL,
			Price:       domain.FormatAmount(it.Price),
			Quantity:    it.Quantity,
			LineTotal:   domain.FormatAmount(it.LineTotal()),
			IsAvailable: it.IsAvailable,
		})
	}
	return out
}

func toCartDTO(items []domain.CartItem) CartDTO {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return CartDTO{
		Items:     toCartItemDTOs(items),
		ItemCount: count,
		Subtotal:  domain.FormatAmount(domain.Subtotal(items)),
		Currency:  domain.Currency,
	}
}

type ShippingMethodDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Fee   string `json:"fee"`
}

type SessionDTO struct {
	Authenticated bool     `json:"authenticated"`
	Email         string   `json:"email,omitempty"`
	FirstName     string   `json:"firstName,omitempty"`
	LastName      string   `json:"lastName,omitempty"`
	Role          string   `json:"role"`
	Permissions   []string `json:"permissions"`
	Route         string   `json:"route,omitempty"`
}

func toSessionDTO(s session.Session, ok bool) SessionDTO {
	if !ok {
		return SessionDTO{
			Role:        domain.RoleUnauthenticated.String(),
			Permissions: []string{},
		}
	}
	return SessionDTO{
		Authenticated: true,
		Email:         s.Email,
		FirstName:     s.FirstName,
		LastName:      s.LastName,
		Role:          s.Role.String(),
		Permissions:   s.Role.Permissions(),
	}
}

type ReceiptDTO struct {
	OrderID     string                 `json:"orderId"`
	Items       []CartItemDTO          `json:"items"`
	Subtotal    string                 `json:"subtotal"`
	ShippingFee string                 `json:"shippingFee"`
	Total       string                 `json:"total"`
	Currency    string                 `json:"currency"`
	Shipping    domain.ShippingDetails `json:"shipping"`
	Card        domain.MaskedCard      `json:"card"`
	PlacedAt    time.Time              `json:"placedAt"`
}

func toReceiptDTO(r domain.Receipt) ReceiptDTO {
	return ReceiptDTO{
		OrderID:     r.OrderID,
		Items:       toCartItemDTOs(r.Items),
		Subtotal:    domain.FormatAmount(r.Subtotal),
		ShippingFee: domain.FormatAmount(r.ShippingFee),
		Total:       domain.FormatAmount(r.Total),
		Currency:    domain.Currency,
		Shipping:    r.Shipping,
		Card:        r.Card,
		PlacedAt:    r.PlacedAt,
	}
}

type CheckoutDTO struct {
	Route    string                  `json:"route"`
	FlowID   string                  `json:"flowId,omitempty"`
	Status   string                  `json:"status,omitempty"`
	Shipping *domain.ShippingDetails `json:"shipping,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Receipt  *ReceiptDTO             `json:"receipt,omitempty"`
}

func toCheckoutDTO(f *checkout.Flow) CheckoutDTO {
	st := f.State()
	dto := CheckoutDTO{
		Route:    string(f.Route()),
		FlowID:   st.ID,
		Status:   st.Status.String(),
		Shipping: st.Shipping,
	}
	if st.Err != nil {
		dto.Error = st.Err.Error()
	}
	if st.Receipt != nil {
		r := toReceiptDTO(*st.Receipt)
		dto.Receipt = &r
	}
	return dto
}

type OrderDTO struct {
	ID             string                    `json:"id,omitempty"`
	TrackingNumber string                    `json:"trackingNumber,omitempty"`
	ShippingMethod string                    `json:"shippingMethod,omitempty"`
	PaymentMethod  string                    `json:"paymentMethod,omitempty"`
	PaymentStatus  string                    `json:"paymentStatus,omitempty"`
	OrderStatus    string                    `json:"orderStatus,omitempty"`
	TotalAmount    *float64                  `json:"totalAmount,omitempty"`
	ItemCount      int                       `json:"itemCount"`
	Items          []domain.OrderItemSummary `json:"orderItems"`
	CreatedAt      string                    `json:"createdAt,omitempty"`
}

func toOrderDTO(o domain.OrderSummary) OrderDTO {
	items := o.OrderItems
	if items == nil {
		items = make([]domain.OrderItemSummary, 0)
	}
	return OrderDTO{
		ID:             o.ID,
		TrackingNumber: o.TrackingNumber,
		ShippingMethod: o.ShippingMethod,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		OrderStatus:    o.OrderStatus,
		TotalAmount:    o.TotalAmount,
		ItemCount:      len(items),
		Items:          items,
		CreatedAt:      o.CreatedAt,
	}
}

// decodeJSON reads the request body into v, answering the error itself when
// it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !isJSON(r) {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
