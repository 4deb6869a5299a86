package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemoryCache(t *testing.T) *Cache {
	t.Helper()
	c := NewCache("", zap.NewNop().Sugar(), nil)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheMemoryMode(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	assert.True(t, c.UsingFallback())
	require.NoError(t, c.Ping(ctx))

	var out string
	err := c.Get(ctx, "missing", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "greeting", "hello", time.Minute))
	require.NoError(t, c.Get(ctx, "greeting", &out))
	assert.Equal(t, "hello", out)

	require.NoError(t, c.Delete(ctx, "greeting"))
	assert.ErrorIs(t, c.Get(ctx, "greeting", &out), ErrCacheMiss)
}

func TestCacheScheduleRoundTrip(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	in := map[string]string{"monday": "post"}
	require.NoError(t, c.SetSchedule(ctx, in))

	var out map[string]string
	require.NoError(t, c.GetSchedule(ctx, &out))
	assert.Equal(t, in, out)
}

func TestCachePublishSubscribe(t *testing.T) {
	c := newMemoryCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := c.Subscribe(ctx, ChannelJobs)
	defer sub.Close()

	require.NoError(t, c.Publish(ctx, ChannelJobs, map[string]string{"jobId": "j1", "status": "running"}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, ChannelJobs, msg.Channel)
		assert.Contains(t, msg.Payload, `"j1"`)
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestSubscriptionClosedOnContextCancel(t *testing.T) {
	c := newMemoryCache(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub := c.Subscribe(ctx, ChannelJobs)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Channel():
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestPubSubHubDropsSlowSubscribers(t *testing.T) {
	hub := NewPubSubHub()
	ctx := context.Background()

	sub := hub.Subscribe(ctx, "ch")
	defer sub.Close()

	// Overflow the buffer; deliveries must not block the publisher.
	for i := 0; i < 200; i++ {
		hub.Publish("ch", "x")
	}

	drained := 0
	for {
		select {
		case <-sub.Channel():
			drained++
		default:
			assert.LessOrEqual(t, drained, 64)
			return
		}
	}
}
