// Package kvstore offers a small string-keyed store for structured values,
// used for session records and user preferences. Values are JSON-encoded;
// a value that no longer decodes surfaces as domain.ErrCorrupted instead of
// being silently treated as absent.
package kvstore

import "context"

// Store persists JSON-encoded values under string keys.
type Store interface {
	Init(ctx context.Context) error
	// Get decodes the value stored under key into dest. Returns
	// domain.ErrNotFound when the key is absent and domain.ErrCorrupted when
	// the stored bytes cannot be decoded.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	// Keys lists all keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Clear(ctx context.Context) error
}
