package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/cart"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/events"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
	"github.com/lpdevlop/book-store-frontend/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placerMock struct {
	mu      sync.Mutex
	orderID string
	err     error
	block   chan struct{}
	calls   atomic.Int32
	orders  []domain.Order
	tokens  []string
}

func (m *placerMock) PlaceOrder(ctx context.Context, token string, order domain.Order) (domain.PlacedOrder, error) {
	m.calls.Add(1)
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return domain.PlacedOrder{}, m.err
	}
	return domain.PlacedOrder{OrderID: m.orderID}, nil
}

type credsMock struct {
	token string
	err   error
}

func (m *credsMock) Token(context.Context) (string, error) {
	return m.token, m.err
}

type publisherMock struct {
	mu     sync.Mutex
	err    error
	events []events.OrderPlaced
}

func (m *publisherMock) PublishOrderPlaced(_ context.Context, e events.OrderPlaced) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

type fixture struct {
	cart    *cart.Store
	placer  *placerMock
	creds   *credsMock
	storage *storage.MemoryStorage
	events  *publisherMock
	flow    *Flow
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := cart.NewStore()
	c.AddItem(domain.Book{ID: 1, Title: "One", Price: price("10.00")})
	c.AddItem(domain.Book{ID: 2, Title: "Two", Price: price("5.50")})
	require.NoError(t, c.SetQuantity(1, 2))

	fx := &fixture{
		cart:    c,
		placer:  &placerMock{orderID: "ord-1"},
		creds:   &credsMock{token: "tok"},
		storage: storage.NewMemoryStorage(),
		events:  &publisherMock{},
	}
	fx.flow = NewFlow(c, fx.creds, fx.storage, Deps{
		Orders:  fx.placer,
		Events:  fx.events,
		Logger:  slog.New(slog.DiscardHandler),
		Timeout: time.Second,
	})
	fx.flow.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return fx
}

func validShipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		Email:          "ann@example.lk",
		FirstName:      "Ann",
		LastName:       "Perera",
		Address:        "1 Galle Rd",
		City:           "Colombo",
		State:          "Western",
		Zip:            "00300",
		Phone:          "0771234567",
		ShippingMethod: "courier",
	}
}

func validCard() domain.CardData {
	return domain.CardData{Name: "Ann Perera", Number: "4111 1111 1111 1234", Expiry: "12/29", CVC: "123"}
}

func TestNewFlow_StartsAtShipping(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, StatusEnteringShipping, fx.flow.Status())
	assert.Equal(t, domain.RouteShipping, fx.flow.Route())
	assert.NotEmpty(t, fx.flow.ID())
}

func TestSubmitShipping_InvalidStaysOnShipping(t *testing.T) {
	fx := newFixture(t)
	s := validShipping()
	s.Email = ""

	err := fx.flow.SubmitShipping(s)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StatusEnteringShipping, fx.flow.Status())
	assert.Zero(t, fx.placer.calls.Load())
}

func TestSubmitShipping_DefaultsCountryAndAllowsEdit(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	st := fx.flow.State()
	assert.Equal(t, StatusEnteringPayment, st.Status)
	require.NotNil(t, st.Shipping)
	assert.Equal(t, domain.DefaultCountry, st.Shipping.Country)

	edited := validShipping()
	edited.ShippingMethod = "post"
	require.NoError(t, fx.flow.SubmitShipping(edited))
	assert.Equal(t, "post", fx.flow.State().Shipping.ShippingMethod)
}

func TestSubmitPayment_BeforeShippingIsIllegal(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.flow.SubmitPayment(context.Background(), validCard())

	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Zero(t, fx.placer.calls.Load())
}

func TestSubmitPayment_SuccessClearsCartAndStoresReceipt(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))

	receipt, err := fx.flow.SubmitPayment(ctx, validCard())
	require.NoError(t, err)

	assert.Equal(t, 0, fx.cart.Len())
	assert.Equal(t, StatusPlaced, fx.flow.Status())
	assert.Equal(t, domain.RouteConfirmation, fx.flow.Route())

	assert.Equal(t, "ord-1", receipt.OrderID)
	assert.True(t, receipt.Subtotal.Equal(decimal.RequireFromString("25.50")))
	assert.True(t, receipt.ShippingFee.Equal(decimal.RequireFromString("350")))
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("375.50")))
	assert.Equal(t, "1234", receipt.Card.Last4)
	assert.Len(t, receipt.Items, 2)

	stored, err := LoadReceipt(ctx, fx.storage)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", stored.OrderID)
	assert.Equal(t, fx.flow.ID(), stored.IdempotencyKey)
	assert.True(t, stored.Total.Equal(receipt.Total))

	raw, err := fx.storage.Get(ctx, storage.KeyLastOrder)
	require.NoError(t, err)
	assert.NotContains(t, raw, "cvc")
	assert.NotContains(t, raw, "4111")

	require.Len(t, fx.placer.orders, 1)
	order := fx.placer.orders[0]
	assert.Equal(t, fx.flow.ID(), order.IdempotencyKey)
	assert.Equal(t, 3, order.TotalQuantity)
	assert.Equal(t, "tok", fx.placer.tokens[0])

	require.Len(t, fx.events.events, 1)
	assert.Equal(t, "ord-1", fx.events.events[0].OrderID)
	assert.Equal(t, domain.Currency, fx.events.events[0].Currency)

	_, err = fx.flow.SubmitPayment(ctx, validCard())
	assert.ErrorIs(t, err, ErrAlreadyPlaced)
	assert.EqualValues(t, 1, fx.placer.calls.Load())
}

func TestSubmitPayment_FailurePreservesCartAndAllowsRetry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	before := fx.cart.Items()

	fx.placer.err = errors.New("502 bad gateway")
	_, err := fx.flow.SubmitPayment(ctx, validCard())

	assert.ErrorIs(t, err, ErrOrderFailed)
	assert.Equal(t, before, fx.cart.Items())
	st := fx.flow.State()
	assert.Equal(t, StatusEnteringPayment, st.Status)
	assert.ErrorIs(t, st.Err, ErrOrderFailed)
	_, err = LoadReceipt(ctx, fx.storage)
	assert.ErrorIs(t, err, ErrNoReceipt)
	assert.Empty(t, fx.events.events)

	fx.placer.mu.Lock()
	fx.placer.err = nil
	fx.placer.mu.Unlock()

	receipt, err := fx.flow.SubmitPayment(ctx, validCard())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", receipt.OrderID)
	assert.Nil(t, fx.flow.State().Err)

	require.Len(t, fx.placer.orders, 2)
	assert.Equal(t, fx.placer.orders[0].IdempotencyKey, fx.placer.orders[1].IdempotencyKey)
}

func TestSubmitPayment_InvalidCardNoNetwork(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))

	card := validCard()
	card.CVC = ""
	_, err := fx.flow.SubmitPayment(context.Background(), card)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StatusEnteringPayment, fx.flow.Status())
	assert.Zero(t, fx.placer.calls.Load())
}

func TestSubmitPayment_EmptyCart(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	fx.cart.Clear()

	_, err := fx.flow.SubmitPayment(context.Background(), validCard())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StatusEnteringPayment, fx.flow.Status())
	assert.Zero(t, fx.placer.calls.Load())
}

func TestSubmitPayment_ExpiredCredential(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	expired := errors.New("session expired")
	fx.creds.err = expired

	_, err := fx.flow.SubmitPayment(context.Background(), validCard())

	assert.ErrorIs(t, err, expired)
	assert.Equal(t, StatusEnteringPayment, fx.flow.Status())
	assert.Equal(t, 2, fx.cart.Len())
	assert.Zero(t, fx.placer.calls.Load())
}

func TestSubmitPayment_PublishFailureDoesNotFailOrder(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	fx.events.err = errors.New("broker down")

	_, err := fx.flow.SubmitPayment(context.Background(), validCard())

	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, fx.flow.Status())
}

func TestSubmitPayment_SurvivesRequestCancellation(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.flow.SubmitPayment(ctx, validCard())

	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, fx.flow.Status())
}

func TestSubmitPayment_ConcurrentSubmitsCollapse(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	fx.placer.block = make(chan struct{})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = fx.flow.SubmitPayment(context.Background(), validCard())
		}()
	}

	require.Eventually(t, func() bool {
		return fx.placer.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	close(fx.placer.block)
	wg.Wait()

	assert.EqualValues(t, 1, fx.placer.calls.Load())
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, ErrAlreadyPlaced)
		}
	}
	assert.Equal(t, StatusPlaced, fx.flow.Status())
}

func TestSubmitShipping_RefusedWhileSubmitting(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	fx.placer.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.SubmitPayment(context.Background(), validCard())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return fx.placer.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	edited := validShipping()
	edited.City = "Kandy"
	err := fx.flow.SubmitShipping(edited)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.Equal(t, StatusSubmitting, fx.flow.Status())

	close(fx.placer.block)
	require.NoError(t, <-done)

	st := fx.flow.State()
	assert.Equal(t, StatusPlaced, st.Status)
	assert.Equal(t, "Colombo", st.Shipping.City)
	assert.Equal(t, "Colombo", st.Receipt.Shipping.City)
	assert.Equal(t, "Colombo", fx.placer.orders[0].Shipping.City)

	assert.ErrorIs(t, fx.flow.SubmitShipping(edited), ErrAlreadyPlaced)
}

func TestSubmitPayment_KeepsItemsAddedDuringSubmission(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	fx.placer.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.SubmitPayment(context.Background(), validCard())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return fx.placer.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	fx.cart.AddItem(domain.Book{ID: 3, Title: "Three", Price: price("7.25")})
	close(fx.placer.block)
	require.NoError(t, <-done)

	require.Len(t, fx.placer.orders[0].Lines, 2)
	items := fx.cart.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].ID)
}

func TestAbandon_OutcomeDoesNotChangeFlow(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.flow.SubmitShipping(validShipping()))
	fx.placer.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.SubmitPayment(context.Background(), validCard())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return fx.placer.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	fx.flow.Abandon()
	close(fx.placer.block)

	require.NoError(t, <-done)
	assert.Equal(t, StatusSubmitting, fx.flow.Status())
	assert.Nil(t, fx.flow.State().Receipt)
	assert.Equal(t, 0, fx.cart.Len())

	err := fx.flow.SubmitShipping(validShipping())
	assert.ErrorIs(t, err, ErrAbandoned)
}

func TestFlowStatus_Transitions(t *testing.T) {
	assert.True(t, StatusEnteringShipping.CanTransitionTo(StatusEnteringPayment))
	assert.False(t, StatusEnteringShipping.CanTransitionTo(StatusSubmitting))
	assert.True(t, StatusEnteringPayment.CanTransitionTo(StatusSubmitting))
	assert.True(t, StatusSubmitting.CanTransitionTo(StatusEnteringPayment))
	assert.True(t, StatusSubmitting.CanTransitionTo(StatusPlaced))
	assert.False(t, StatusPlaced.CanTransitionTo(StatusEnteringPayment))
	assert.True(t, StatusPlaced.IsTerminal())
	assert.False(t, StatusSubmitting.IsTerminal())
}
