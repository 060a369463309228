package shopper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/cart"
	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/session"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long a visitor may stay silent before the
	// in-memory cart is dropped
	DefaultIdleTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often idle visitors are evicted
	DefaultCleanupInterval = time.Minute

	restoreTimeout = 10 * time.Second
)

type Config struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// Registry maps visitor ids to their Shopper.
type Registry struct {
	base   storage.ClientStorage
	api    session.API
	deps   checkout.Deps
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	shoppers map[string]*Shopper
	creating singleflight.Group

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewRegistry(base storage.ClientStorage, api session.API, deps checkout.Deps, cfg Config, logger *slog.Logger) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	r := &Registry{
		base:        base,
		api:         api,
		deps:        deps,
		logger:      logger,
		ttl:         cfg.IdleTTL,
		now:         time.Now,
		shoppers:    make(map[string]*Shopper),
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop(cfg.CleanupInterval)

	return r
}

// Get returns the visitor's Shopper, creating it on first access. A new
// Shopper has its session restored before Get returns.
func (r *Registry) Get(ctx context.Context, visitorID string) *Shopper {
	if sh := r.lookup(visitorID); sh != nil {
		return sh
	}

	v, _, _ := r.creating.Do(visitorID, func() (interface{}, error) {
		if sh := r.lookup(visitorID); sh != nil {
			return sh, nil
		}

		sh := r.newShopper(visitorID)

		// restoring must not be cut short by the first request going away,
		// or a valid credential would be discarded
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		sh.Session.Restore(restoreCtx)

		r.mu.Lock()
		r.shoppers[visitorID] = sh
		r.mu.Unlock()

		r.logger.DebugContext(ctx, "visitor registered", slog.String("visitor_id", visitorID))
		return sh, nil
	})
	return v.(*Shopper)
}

func (r *Registry) lookup(visitorID string) *Shopper {
	r.mu.RLock()
	sh, ok := r.shoppers[visitorID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	sh.touch(r.now())
	return sh
}

func (r *Registry) newShopper(visitorID string) *Shopper {
	scoped := storage.Scope(r.base, visitorID)
	return &Shopper{
		ID:       visitorID,
		Cart:     cart.NewStore(),
		Session:  session.NewStore(r.api, scoped, r.logger.With(slog.String("visitor_id", visitorID))),
		storage:  scoped,
		deps:     r.deps,
		lastSeen: r.now(),
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shoppers)
}

// cleanupLoop periodically evicts idle visitors
func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops visitors idle for longer than the TTL. Their carts are
// lost; credentials stay in client storage.
func (r *Registry) evictIdle() {
	now := r.now()

	r.mu.Lock()
	var evicted []*Shopper
	for id, sh := range r.shoppers {
		if sh.idleSince(now) > r.ttl {
			delete(r.shoppers, id)
			evicted = append(evicted, sh)
		}
	}
	r.mu.Unlock()

	for _, sh := range evicted {
		sh.abandonFlow()
	}
	if len(evicted) > 0 {
		r.logger.Info("evicted idle visitors", slog.Int("count", len(evicted)))
	}
}

// Close stops the background cleanup and waits for it to finish. It is safe
// to call more than once.
func (r *Registry) Close() error {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
	r.wg.Wait()
	return nil
}
