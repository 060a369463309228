package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/events"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
	"github.com/lpdevlop/book-store-frontend/internal/validation"
	"golang.org/x/sync/singleflight"
)

const defaultOrderTimeout = 30 * time.Second

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, token string, order domain.Order) (domain.PlacedOrder, error)
}

type Credentials interface {
	Token(ctx context.Context) (string, error)
}

type Cart interface {
	Items() []domain.CartItem
	RemoveItems(ids ...int64)
}

// Deps are shared by every flow of the process.
type Deps struct {
	Orders  OrderPlacer
	Events  events.Publisher
	Logger  *slog.Logger
	Timeout time.Duration
}

// Flow walks one checkout from the shipping form to a placed order. Its id is
// the idempotency key of the order, so retries after a failure reuse it.
type Flow struct {
	id      string
	deps    Deps
	cart    Cart
	creds   Credentials
	storage storage.ClientStorage
	now     func() time.Time
	group   singleflight.Group

	mu        sync.Mutex
	status    FlowStatus
	shipping  *domain.ShippingDetails
	lastErr   error
	receipt   *domain.Receipt
	abandoned bool
}

func NewFlow(cart Cart, creds Credentials, store storage.ClientStorage, deps Deps) *Flow {
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultOrderTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Flow{
		id:      uuid.NewString(),
		deps:    deps,
		cart:    cart,
		creds:   creds,
		storage: store,
		now:     time.Now,
		status:  StatusEnteringShipping,
	}
}

func (f *Flow) ID() string {
	return f.id
}

// State is a point-in-time view of a flow.
type State struct {
	ID       string
	Status   FlowStatus
	Shipping *domain.ShippingDetails
	Err      error
	Receipt  *domain.Receipt
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := State{ID: f.id, Status: f.status, Err: f.lastErr}
	if f.shipping != nil {
		s := *f.shipping
		st.Shipping = &s
	}
	if f.receipt != nil {
		r := *f.receipt
		st.Receipt = &r
	}
	return st
}

func (f *Flow) Status() FlowStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Route is the view that matches the current status.
func (f *Flow) Route() domain.Route {
	switch f.Status() {
	case StatusEnteringShipping:
		return domain.RouteShipping
	case StatusPlaced:
		return domain.RouteConfirmation
	default:
		return domain.RoutePayment
	}
}

// Abandon detaches the flow from its shopper. An order call still in flight
// completes, but its outcome no longer changes this flow.
func (f *Flow) Abandon() {
	f.mu.Lock()
	f.abandoned = true
	f.mu.Unlock()
}

// SubmitShipping validates the shipping form and moves on to payment. It does
// not touch the network.
func (f *Flow) SubmitShipping(details domain.ShippingDetails) error {
	details = details.Normalize()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.abandoned {
		return ErrAbandoned
	}
	// the order in flight was built from the current form, so it stays
	// frozen until the submission settles
	switch f.status {
	case StatusEnteringShipping, StatusEnteringPayment:
	case StatusSubmitting:
		return ErrSubmissionInProgress
	case StatusPlaced:
		return ErrAlreadyPlaced
	default:
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.status, StatusEnteringPayment)
	}
	if err := validation.Struct(details); err != nil {
		return err
	}

	f.shipping = &details
	f.status = StatusEnteringPayment
	f.lastErr = nil
	return nil
}

// SubmitPayment builds the order from the cart and shipping form and submits
// it once. Concurrent calls share one submission and its result.
func (f *Flow) SubmitPayment(ctx context.Context, card domain.CardData) (domain.Receipt, error) {
	v, err, _ := f.group.Do(f.id, func() (interface{}, error) {
		return f.submit(ctx, card)
	})
	if err != nil {
		return domain.Receipt{}, err
	}
	return v.(domain.Receipt), nil
}

func (f *Flow) submit(ctx context.Context, card domain.CardData) (domain.Receipt, error) {
	order, items, err := f.begin(ctx, card)
	if err != nil {
		return domain.Receipt{}, err
	}

	token, err := f.creds.Token(ctx)
	if err != nil {
		f.fail(err)
		return domain.Receipt{}, err
	}

	// the remote call outlives the inbound request so a disconnect cannot
	// leave the order half submitted
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.deps.Timeout)
	defer cancel()

	placed, err := f.deps.Orders.PlaceOrder(callCtx, token, order)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrOrderFailed, err)
		f.deps.Logger.WarnContext(ctx, "order submission failed",
			slog.String("idempotency_key", f.id),
			slog.Any("error", err))
		f.fail(err)
		return domain.Receipt{}, err
	}

	// only the ordered lines go; books added while the call was in flight stay
	f.cart.RemoveItems(orderedIDs(items)...)

	receipt := domain.Receipt{
		OrderID:        placed.OrderID,
		IdempotencyKey: order.IdempotencyKey,
		Items:          items,
		Subtotal:       order.TotalAmount,
		ShippingFee:    order.ShippingFee,
		Total:          order.FinalAmount,
		Shipping:       order.Shipping,
		Card:           card.Mask(),
		PlacedAt:       f.now().UTC(),
	}
	f.saveReceipt(callCtx, receipt)
	f.publish(callCtx, order, receipt)

	f.mu.Lock()
	if !f.abandoned {
		f.status = StatusPlaced
		f.receipt = &receipt
		f.lastErr = nil
	}
	f.mu.Unlock()

	f.deps.Logger.InfoContext(ctx, "order placed",
		slog.String("order_id", placed.OrderID),
		slog.String("idempotency_key", f.id))
	return receipt, nil
}

// begin checks every precondition and moves the flow to SUBMITTING.
func (f *Flow) begin(ctx context.Context, card domain.CardData) (domain.Order, []domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.abandoned:
		return domain.Order{}, nil, ErrAbandoned
	case f.status == StatusPlaced:
		return domain.Order{}, nil, ErrAlreadyPlaced
	case f.status == StatusSubmitting:
		return domain.Order{}, nil, ErrSubmissionInProgress
	case !f.status.CanTransitionTo(StatusSubmitting) || f.shipping == nil:
		return domain.Order{}, nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.status, StatusSubmitting)
	}

	if err := validation.Struct(card); err != nil {
		return domain.Order{}, nil, err
	}

	items := f.cart.Items()
	if len(items) == 0 {
		return domain.Order{}, nil, ErrEmptyCart
	}

	order := domain.NewOrder(f.id, items, *f.shipping)
	f.status = StatusSubmitting
	f.lastErr = nil
	f.deps.Logger.DebugContext(ctx, "submitting order",
		slog.String("idempotency_key", f.id),
		slog.Int("lines", len(order.Lines)))
	return order, items, nil
}

func orderedIDs(items []domain.CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func (f *Flow) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned {
		return
	}
	f.status = StatusEnteringPayment
	f.lastErr = err
}

func (f *Flow) saveReceipt(ctx context.Context, receipt domain.Receipt) {
	data, err := json.Marshal(receipt)
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "failed to encode receipt", slog.Any("error", err))
		return
	}
	if err := f.storage.Set(ctx, storage.KeyLastOrder, string(data)); err != nil {
		f.deps.Logger.WarnContext(ctx, "failed to store receipt", slog.Any("error", err))
	}
}

func (f *Flow) publish(ctx context.Context, order domain.Order, receipt domain.Receipt) {
	err := f.deps.Events.PublishOrderPlaced(ctx, events.OrderPlaced{
		OrderID:        receipt.OrderID,
		IdempotencyKey: order.IdempotencyKey,
		CustomerEmail:  order.Shipping.Email,
		ShippingMethod: order.Shipping.ShippingMethod,
		TotalQuantity:  order.TotalQuantity,
		FinalAmount:    order.FinalAmount,
		Currency:       domain.Currency,
		PlacedAt:       receipt.PlacedAt,
	})
	if err != nil {
		f.deps.Logger.WarnContext(ctx, "failed to publish order placed event",
			slog.String("order_id", receipt.OrderID),
			slog.Any("error", err))
	}
}

// LoadReceipt reads the last placed order kept in client storage.
func LoadReceipt(ctx context.Context, store storage.ClientStorage) (domain.Receipt, error) {
	raw, err := store.Get(ctx, storage.KeyLastOrder)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Receipt{}, ErrNoReceipt
	}
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("read receipt: %w", err)
	}

	var receipt domain.Receipt
	if err := json.Unmarshal([]byte(raw), &receipt); err != nil {
		return domain.Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return receipt, nil
}
