package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lpdevlop/book-store-frontend/internal/bookapi"
	"github.com/lpdevlop/book-store-frontend/internal/domain"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
)

var errFetchProfile = errors.New("fetch profile")

// API is the part of the bookshop client the session needs.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, token, userID string) (domain.Profile, error)
}

// Session is the signed-in user as shown to the views.
type Session struct {
	Email     string
	FirstName string
	LastName  string
	Role      domain.Role
}

// Store owns one visitor's credential and profile. The credential lives in
// client storage under storage.KeyAuthToken; the profile only in memory.
type Store struct {
	api     API
	storage storage.ClientStorage
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	token    string
	claims   *Claims
	current  *Session
	returnTo domain.Route
}

func NewStore(api API, store storage.ClientStorage, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		storage: store,
		logger:  logger,
		now:     time.Now,
	}
}

// Restore loads a saved credential and fetches its profile. Any failure
// leaves the visitor signed out and removes the credential; it is never
// returned to the caller.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.storage.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read stored credential", slog.Any("error", err))
		return
	}

	sess, claims, err := s.resolve(ctx, token)
	if err != nil {
		s.logger.InfoContext(ctx, "discarding stored credential", slog.Any("error", err))
		s.mu.Lock()
		s.clearLocked()
		s.mu.Unlock()
		s.removeCredential(ctx)
		return
	}

	s.mu.Lock()
	s.token, s.claims, s.current = token, claims, sess
	s.mu.Unlock()
}

// Login authenticates against the bookshop API. Storage and the current
// session are only touched once the token decodes and the profile is fetched.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return Session{}, loginError(err)
	}

	sess, claims, err := s.resolve(ctx, token)
	if errors.Is(err, errFetchProfile) {
		return Session{}, loginError(err)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	if err := s.storage.Set(ctx, storage.KeyAuthToken, token); err != nil {
		return Session{}, fmt.Errorf("persist credential: %w", err)
	}

	s.mu.Lock()
	s.token, s.claims, s.current = token, claims, sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "visitor signed in", slog.String("role", sess.Role.String()))
	return *sess, nil
}

// Logout is local only: the credential is removed and the profile cleared.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyAuthToken); err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// Token returns the bearer credential for an authenticated call. An expired
// credential is removed and ErrSessionExpired returned.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}
	if !s.claims.expired(s.now()) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.clearLocked()
	s.mu.Unlock()

	s.removeCredential(ctx)
	return "", ErrSessionExpired
}

// Current returns the signed-in session, or false when signed out.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.RoleUnauthenticated
	}
	return s.current.Role
}

func (s *Store) Authenticated() bool {
	return s.Role() != domain.RoleUnauthenticated
}

// Permits is a presentation check; the bookshop API enforces the real rule.
func (s *Store) Permits(a domain.Action) bool {
	return s.Role().Permits(a)
}

// RememberReturn records where to send the visitor after signing in.
func (s *Store) RememberReturn(route domain.Route) {
	s.mu.Lock()
	s.returnTo = route
	s.mu.Unlock()
}

// TakeReturn returns and forgets the post-login route, RouteHome by default.
func (s *Store) TakeReturn() domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	route := s.returnTo
	s.returnTo = ""
	if route == "" {
		return domain.RouteHome
	}
	return route
}

func (s *Store) resolve(ctx context.Context, token string) (*Session, *Claims, error) {
	claims, err := decodeClaims(token)
	if err != nil {
		return nil, nil, err
	}
	if claims.expired(s.now()) {
		return nil, nil, ErrSessionExpired
	}

	profile, err := s.api.GetProfile(ctx, token, claims.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errFetchProfile, err)
	}

	roleName := profile.Role
	if roleName == "" {
		roleName = claims.Role
	}
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, nil, err
	}

	return &Session{
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Role:      role,
	}, claims, nil
}

// loginError reports a refused sign in as ErrInvalidCredentials. When the
// bookshop could not answer the cause is kept instead.
func loginError(err error) error {
	if bookapi.IsServerFailure(err) {
		return fmt.Errorf("sign in: %w", err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
}

func (s *Store) clearLocked() {
	s.token = ""
	s.claims = nil
	s.current = nil
}

func (s *Store) removeCredential(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.KeyAuthToken); err != nil {
		s.logger.WarnContext(ctx, "failed to remove credential", slog.Any("error", err))
	}
}
