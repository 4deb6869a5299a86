// Package store provides the service cache: Redis when available, with a
// transparent in-memory fallback, plus pubsub used to fan out ingest-job
// status updates.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/metrics"
	"github.com/branddesk/branddesk-backend/pkg/kv"
	kvmemory "github.com/branddesk/branddesk-backend/pkg/kv/memory"
	kvredis "github.com/branddesk/branddesk-backend/pkg/kv/redis"
)

// Cache keys and pubsub channels.
const (
	KeySchedule = "bd:schedule"

	// ChannelJobs carries ingest-job status updates as JSON payloads.
	ChannelJobs = "bd:jobs:status"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

const probeInterval = 15 * time.Second

type Cache struct {
	// client is nil when running without Redis; pubsub then goes through hub.
	client *goredis.Client
	store  kv.Store
	hub    *PubSubHub

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewCache connects to Redis at addr. When addr is empty or Redis is down the
// cache starts in memory; a live Redis additionally gets a memory fallback
// that takes over on later outages.
func NewCache(addr string, logger *zap.SugaredLogger, m *metrics.Metrics) *Cache {
	c := &Cache{logger: logger, metrics: m}

	if addr == "" {
		c.store = kvmemory.NewStore()
		c.hub = NewPubSubHub()
		logger.Infow("Cache running in memory, no Redis configured")
		return c
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnw("Redis unavailable, cache running in memory", "addr", addr, "error", err)
		_ = client.Close()
		c.store = kvmemory.NewStore()
		c.hub = NewPubSubHub()
		return c
	}

	c.client = client
	c.store = kv.NewFailoverStore(
		kvredis.NewWithClient(client),
		kvmemory.NewStore(),
		probeInterval,
		func(msg string, fields ...any) { logger.Warnw(msg, fields...) },
	)
	return c
}

// KV exposes the underlying key-value store for callers that cache raw bytes.
func (c *Cache) KV() kv.Store { return c.store }

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			if c.metrics != nil {
				c.metrics.RecordCacheMiss(ctx, key)
			}
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal: %w", err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// GetSchedule loads the posting schedule document into dest.
func (c *Cache) GetSchedule(ctx context.Context, dest any) error {
	return c.Get(ctx, KeySchedule, dest)
}

// SetSchedule stores the posting schedule document without expiry.
func (c *Cache) SetSchedule(ctx context.Context, value any) error {
	return c.Set(ctx, KeySchedule, value, 0)
}

// Publish sends message as JSON to a pubsub channel.
func (c *Cache) Publish(ctx context.Context, channel string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("pubsub marshal: %w", err)
	}

	if c.client != nil {
		if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
			c.logger.Errorw("Publish failed", "channel", channel, "error", err)
			return fmt.Errorf("pubsub publish: %w", err)
		}
		return nil
	}

	c.hub.Publish(channel, string(data))
	return nil
}

// Subscribe returns a stream of messages for the given channels, bridging
// Redis and in-memory pubsub behind the same type.
func (c *Cache) Subscribe(ctx context.Context, channels ...string) *Subscription {
	if c.client == nil {
		return c.hub.Subscribe(ctx, channels...)
	}

	redisSub := c.client.Subscribe(ctx, channels...)
	sub := &Subscription{
		ch:   make(chan *Message, 64),
		done: make(chan struct{}),
	}
	go func() {
		defer redisSub.Close()
		ch := redisSub.Channel()
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case <-sub.done:
				return
			case msg, ok := <-ch:
				if !ok {
					sub.Close()
					return
				}
				sub.deliver(&Message{Channel: msg.Channel, Payload: msg.Payload})
			}
		}
	}()
	return sub
}

// UsingFallback reports whether a Redis-backed cache has degraded to memory.
func (c *Cache) UsingFallback() bool {
	if fs, ok := c.store.(*kv.FailoverStore); ok {
		return fs.UsingFallback()
	}
	return c.client == nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Cache) Close() error {
	return c.store.Close()
}
