package shopper

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiMock struct {
	token        string
	profile      domain.Profile
	profileCalls atomic.Int32
}

func (m *apiMock) Login(context.Context, string, string) (string, error) {
	return m.token, nil
}

func (m *apiMock) GetProfile(context.Context, string, string) (domain.Profile, error) {
	m.profileCalls.Add(1)
	return m.profile, nil
}

func signedToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func newTestRegistry(t *testing.T, api *apiMock, base storage.ClientStorage) *Registry {
	t.Helper()
	r := NewRegistry(base, api, checkout.Deps{Logger: slog.New(slog.DiscardHandler)},
		Config{IdleTTL: time.Minute, CleanupInterval: time.Hour},
		slog.New(slog.DiscardHandler))
	t.Cleanup(func() { r.Close() })
	return r
}

func TestBeginCheckout_UnauthenticatedGoesToLogin(t *testing.T) {
	r := newTestRegistry(t, &apiMock{}, storage.NewMemoryStorage())
	sh := r.Get(context.Background(), "v1")

	flow, route := sh.BeginCheckout()

	assert.Nil(t, flow)
	assert.Equal(t, domain.RouteLogin, route)
	_, started := sh.Flow()
	assert.False(t, started)
	assert.Equal(t, domain.RouteCart, sh.Session.TakeReturn())
}

func TestBeginCheckout_AuthenticatedGetsShipping(t *testing.T) {
	api := &apiMock{token: signedToken(t), profile: domain.Profile{Email: "a@b.lk", Role: "CUSTOMER"}}
	r := newTestRegistry(t, api, storage.NewMemoryStorage())
	ctx := context.Background()
	sh := r.Get(ctx, "v1")
	_, err := sh.Session.Login(ctx, "a@b.lk", "pw")
	require.NoError(t, err)

	flow, route := sh.BeginCheckout()
	require.NotNil(t, flow)
	assert.Equal(t, domain.RouteShipping, route)
	assert.Equal(t, checkout.StatusEnteringShipping, flow.Status())

	again, _ := sh.BeginCheckout()
	assert.Same(t, flow, again)
}

func TestGet_RestoresSessionOnce(t *testing.T) {
	api := &apiMock{profile: domain.Profile{Email: "a@b.lk", Role: "ADMIN"}}
	base := storage.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.Scope(base, "v1").Set(ctx, storage.KeyAuthToken, signedToken(t)))
	r := newTestRegistry(t, api, base)

	var wg sync.WaitGroup
	got := make([]*Shopper, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = r.Get(ctx, "v1")
		}()
	}
	wg.Wait()

	for _, sh := range got {
		assert.Same(t, got[0], sh)
	}
	assert.Equal(t, domain.RoleAdmin, got[0].Session.Role())
	assert.EqualValues(t, 1, api.profileCalls.Load())
	assert.Equal(t, 1, r.Len())
}

func TestGet_VisitorsAreIsolated(t *testing.T) {
	r := newTestRegistry(t, &apiMock{}, storage.NewMemoryStorage())
	ctx := context.Background()

	a := r.Get(ctx, "a")
	b := r.Get(ctx, "b")
	a.Cart.AddItem(domain.Book{ID: 1})

	assert.NotSame(t, a, b)
	assert.Equal(t, 1, a.Cart.Len())
	assert.Equal(t, 0, b.Cart.Len())
}

func TestEvictIdle(t *testing.T) {
	r := newTestRegistry(t, &apiMock{}, storage.NewMemoryStorage())
	ctx := context.Background()
	start := time.Now()
	r.now = func() time.Time { return start }

	stale := r.Get(ctx, "stale")
	stale.Cart.AddItem(domain.Book{ID: 1})
	r.Get(ctx, "fresh")

	r.now = func() time.Time { return start.Add(50 * time.Second) }
	r.Get(ctx, "fresh")

	r.now = func() time.Time { return start.Add(90 * time.Second) }
	r.evictIdle()

	assert.Equal(t, 1, r.Len())
	again := r.Get(ctx, "stale")
	assert.NotSame(t, stale, again)
	assert.Equal(t, 0, again.Cart.Len())
}

func TestLogout_DropsFlowKeepsCart(t *testing.T) {
	api := &apiMock{token: signedToken(t), profile: domain.Profile{Role: "CUSTOMER"}}
	r := newTestRegistry(t, api, storage.NewMemoryStorage())
	ctx := context.Background()
	sh := r.Get(ctx, "v1")
	sh.Cart.AddItem(domain.Book{ID: 3})
	_, err := sh.Session.Login(ctx, "a@b.lk", "pw")
	require.NoError(t, err)

	flow, _ := sh.BeginCheckout()
	require.NotNil(t, flow)

	require.NoError(t, sh.Logout(ctx))

	_, started := sh.Flow()
	assert.False(t, started)
	assert.ErrorIs(t, flow.SubmitShipping(domain.ShippingDetails{}), checkout.ErrAbandoned)
	assert.Equal(t, 1, sh.Cart.Len())
	assert.False(t, sh.Session.Authenticated())
}

func TestLogin_DifferentUserDropsFlow(t *testing.T) {
	api := &apiMock{token: signedToken(t), profile: domain.Profile{Email: "ann@example.lk", Role: "CUSTOMER"}}
	r := newTestRegistry(t, api, storage.NewMemoryStorage())
	ctx := context.Background()
	sh := r.Get(ctx, "v1")
	sh.Cart.AddItem(domain.Book{ID: 1})
	_, err := sh.Login(ctx, "ann@example.lk", "pw")
	require.NoError(t, err)

	first, _ := sh.BeginCheckout()
	require.NotNil(t, first)

	_, err = sh.Login(ctx, "ANN@example.lk", "pw")
	require.NoError(t, err)
	same, started := sh.Flow()
	require.True(t, started)
	assert.Same(t, first, same)

	api.profile = domain.Profile{Email: "bob@example.lk", Role: "CUSTOMER"}
	_, err = sh.Login(ctx, "bob@example.lk", "pw")
	require.NoError(t, err)

	_, started = sh.Flow()
	assert.False(t, started)
	assert.Equal(t, checkout.ErrAbandoned, first.SubmitShipping(domain.ShippingDetails{}))
	assert.Equal(t, 1, sh.Cart.Len())

	next, _ := sh.BeginCheckout()
	assert.NotSame(t, first, next)
}

func TestClose_Twice(t *testing.T) {
	r := newTestRegistry(t, &apiMock{}, storage.NewMemoryStorage())

	require.NoError(t, r.Close())
	assert.NotPanics(t, func() { _ = r.Close() })
}
