// Package clientstore provides the persistent key/value port used by the
// client-side domain contexts. Values are opaque strings, usually JSON.
package clientstore

import "context"

// Store is a durable string key/value store. Get reports ok=false for a
// missing key; it is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	store  Store
	prefix string
}

// WithPrefix scopes every key of store under prefix.
func WithPrefix(store Store, prefix string) Store {
	return &prefixed{store: store, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.store.Remove(ctx, p.prefix+key)
}
