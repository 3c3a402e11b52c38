package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	portsrepo "github.com/SscSPs/payflow_backend/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store portsrepo.IdempotencyStore) {
	ctx := context.Background()

	resp, err := store.Reserve(ctx, "k1", "fp-a", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, err = store.Reserve(ctx, "k1", "fp-a", time.Minute)
	assert.ErrorIs(t, err, portsrepo.ErrIdempotencyInFlight)
	_, err = store.Reserve(ctx, "k1", "fp-b", time.Minute)
	assert.ErrorIs(t, err, portsrepo.ErrIdempotencyKeyReused, "a different body is refused even while in flight")

	stored := portsrepo.StoredResponse{StatusCode: 201, Body: []byte(`{"ok":true}`), Fingerprint: "fp-a"}
	require.NoError(t, store.Complete(ctx, "k1", stored, time.Minute))
	resp, err = store.Reserve(ctx, "k1", "fp-a", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))

	resp, err = store.Reserve(ctx, "k1", "fp-b", time.Minute)
	assert.ErrorIs(t, err, portsrepo.ErrIdempotencyKeyReused)
	assert.Nil(t, resp, "the stored response is not replayed for another body")

	_, err = store.Reserve(ctx, "k2", "fp-a", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k2"))
	resp, err = store.Reserve(ctx, "k2", "fp-b", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp, "released key can be claimed again")
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisIdempotencyStore(client, "test:"))
}

func TestRedisIdempotencyStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisIdempotencyStore(client, "")
	ctx := context.Background()

	_, err := store.Reserve(ctx, "k", "fp", time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("payflow:idem:k"))

	mr.FastForward(2 * time.Second)
	resp, err := store.Reserve(ctx, "k", "fp", time.Second)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestRedisIdempotencyStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisIdempotencyStore(client, "").Reserve(context.Background(), "k", "fp", time.Minute)
	assert.Error(t, err)
}

func TestMemoryIdempotencyStore(t *testing.T) {
	exerciseStore(t, NewMemoryIdempotencyStore())
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Reserve(context.Background(), "k", "fp", time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	resp, err := store.Reserve(context.Background(), "k", "fp", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)
}
