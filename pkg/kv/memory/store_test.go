package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branddesk/branddesk-backend/pkg/kv"
)

func TestSetGetDel(t *testing.T) {
	store := New(0) // disable janitor for deterministic tests
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	n, err := store.Exists(ctx, "k", "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Del(ctx, "k", "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	store := New(0)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestJanitorEvictsExpiredKeys(t *testing.T) {
	store := New(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	require.Eventually(t, func() bool {
		n, err := store.Exists(ctx, "k")
		return err == nil && n == 0
	}, time.Second, 10*time.Millisecond)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	store := New(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	time.Sleep(50 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.NoError(t, err)
}
