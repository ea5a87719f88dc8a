// Package keyvalue provides the small key-value store the session and
// payment state is persisted to. The file backend mirrors on-device
// storage; the redis backend serves server deployments.
package keyvalue

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been set
// or has been removed.
var ErrKeyNotFound = errors.New("key not found")

// Store is an async string-keyed, string-valued store. Values are
// either plain strings or UTF-8 JSON documents; the store does not
// interpret them. Set overwrites, Remove is a no-op for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
