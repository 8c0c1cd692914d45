package kv

import (
	"context"
	"errors"
)

// Store is the durable string key-value store behind a storefront session.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")

type scopedStore struct {
	prefix string
	next   Store
}

// Scoped returns a Store that namespaces every key under scope.
func Scoped(next Store, scope string) Store {
	return &scopedStore{prefix: scope + ":", next: next}
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.next.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.next.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, s.prefix+key)
}
