package storage

import "context"

// Store is the durable key-value store shared by every feature that
// must survive a restart: the auth token, profile fields, and the
// per-user cart records. It is global per device; callers namespace
// their own keys (e.g. cart_<userId>).
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// GetMulti returns the present subset of keys.
	GetMulti(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	SetMulti(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
