package redisstore

import (
	"context"
	"testing"

	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a Store pointing at it
func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := New(client, "test")
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestGet_Miss(t *testing.T) {
	s, _ := setupTestRedis(t)

	_, err := s.Get(context.Background(), store.KeyCart)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSet_Get(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.KeyCart, []byte(`[{"id":1,"quantity":2}]`)))

	got, err := s.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"quantity":2}]`, string(got))

	raw, err := mr.Get("test:cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"quantity":2}]`, raw)
	assert.Zero(t, mr.TTL("test:cart"), "slot values must not expire")
}

func TestSet_Overwrites(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("one")))
	require.NoError(t, s.Set(ctx, "k", []byte("two")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestDelete(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:cart", "[]")
	require.NoError(t, s.Delete(ctx, store.KeyCart))
	assert.False(t, mr.Exists("test:cart"))

	// deleting again is fine
	require.NoError(t, s.Delete(ctx, store.KeyCart))
}

func TestDefaultPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := New(client, "")
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "users", []byte("[]")))
	assert.True(t, mr.Exists("bookshop:users"))
}

func TestServerDown(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), store.KeyCart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.Error(t, s.Ping(context.Background()))
}
