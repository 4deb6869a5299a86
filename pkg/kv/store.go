// Package kv provides a small Redis-like key-value store abstraction with an
// in-memory implementation for development and tests, a Redis implementation
// for production, and a failover wrapper that degrades to memory when Redis
// is unavailable.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found.
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Store defines the key-value operations the service relies on.
type Store interface {
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Exists returns how many of the given keys exist.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Ping checks backend health.
	Ping(ctx context.Context) error

	Close() error
}
