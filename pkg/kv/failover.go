package kv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// LogFunc is a function type for structured logging.
type LogFunc func(msg string, fields ...any)

// FailoverStore wraps a primary and a fallback store, switching to the
// fallback when the primary becomes unavailable and promoting back once a
// background probe sees the primary healthy again.
type FailoverStore struct {
	primary       Store
	fallback      Store
	active        atomic.Value // Store
	probeInterval time.Duration
	logger        LogFunc

	mu        sync.Mutex
	probing   bool
	closed    chan struct{}
	closeOnce sync.Once
}

// NewFailoverStore creates a failover store that starts with the primary active.
func NewFailoverStore(primary, fallback Store, probeInterval time.Duration, logger LogFunc) *FailoverStore {
	if logger == nil {
		logger = func(msg string, fields ...any) {}
	}

	fs := &FailoverStore{
		primary:       primary,
		fallback:      fallback,
		probeInterval: probeInterval,
		logger:        logger,
		closed:        make(chan struct{}),
	}
	fs.active.Store(primary)
	return fs
}

// NewFailoverStoreWithFallbackActive creates a failover store that starts on
// the fallback and probes the primary for recovery. Used when the primary is
// already down at startup.
func NewFailoverStoreWithFallbackActive(primary, fallback Store, probeInterval time.Duration, logger LogFunc) *FailoverStore {
	fs := NewFailoverStore(primary, fallback, probeInterval, logger)
	fs.active.Store(fallback)
	fs.startProbing()
	return fs
}

func (fs *FailoverStore) activeStore() Store {
	return fs.active.Load().(Store)
}

// UsingFallback reports whether the fallback store is currently active.
func (fs *FailoverStore) UsingFallback() bool {
	return fs.activeStore() == fs.fallback
}

func (fs *FailoverStore) demote() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.activeStore() == fs.fallback {
		return
	}

	fs.active.Store(fs.fallback)
	fs.logger("failing over to fallback store", "reason", "primary_unavailable")
	fs.startProbingLocked()
}

func (fs *FailoverStore) startProbing() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.startProbingLocked()
}

func (fs *FailoverStore) startProbingLocked() {
	if fs.probing {
		return
	}
	fs.probing = true

	go func() {
		ticker := time.NewTicker(fs.probeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-fs.closed:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				err := fs.primary.Ping(ctx)
				cancel()
				if err == nil {
					fs.mu.Lock()
					fs.active.Store(fs.primary)
					fs.probing = false
					fs.mu.Unlock()
					fs.logger("primary store recovered, promoting")
					return
				}
			}
		}
	}()
}

// do runs op against the active store; on a backend-unavailable error from the
// primary it retries once against the fallback and demotes.
func (fs *FailoverStore) do(op func(Store) error) error {
	store := fs.activeStore()
	err := op(store)
	if err != nil && store == fs.primary && errors.Is(err, ErrBackendUnavailable) {
		fs.demote()
		return op(fs.fallback)
	}
	return err
}

func (fs *FailoverStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return fs.do(func(s Store) error {
		return s.Set(ctx, key, value, ttl)
	})
}

func (fs *FailoverStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := fs.do(func(s Store) error {
		var opErr error
		value, opErr = s.Get(ctx, key)
		return opErr
	})
	return value, err
}

func (fs *FailoverStore) Del(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := fs.do(func(s Store) error {
		var opErr error
		n, opErr = s.Del(ctx, keys...)
		return opErr
	})
	return n, err
}

func (fs *FailoverStore) Exists(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := fs.do(func(s Store) error {
		var opErr error
		n, opErr = s.Exists(ctx, keys...)
		return opErr
	})
	return n, err
}

func (fs *FailoverStore) Ping(ctx context.Context) error {
	return fs.activeStore().Ping(ctx)
}

func (fs *FailoverStore) Close() error {
	fs.closeOnce.Do(func() {
		close(fs.closed)
	})
	primaryErr := fs.primary.Close()
	fallbackErr := fs.fallback.Close()
	if primaryErr != nil {
		return primaryErr
	}
	return fallbackErr
}

var _ Store = (*FailoverStore)(nil)
