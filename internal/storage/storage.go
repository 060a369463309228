package storage

import (
	"context"
	"errors"
)

// Keys used by the storefront in client storage.
const (
	KeyAuthToken = "authToken"
	KeyLastOrder = "lastOrder"
)

var ErrNotFound = errors.New("key not found")

// ClientStorage is durable key/value storage standing in for the browser's
// local storage. Get returns ErrNotFound for missing keys; Delete of a missing
// key is not an error.
type ClientStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type scoped struct {
	prefix string
	inner  ClientStorage
}

// Scope returns a view of s whose keys are private to one visitor.
func Scope(s ClientStorage, visitorID string) ClientStorage {
	return &scoped{prefix: "visitor:" + visitorID + ":", inner: s}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
