package genstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisGenStoreNilClient(t *testing.T) {
	_, err := NewRedisGenStore(RedisGenOptions{})
	require.ErrorIs(t, err, ErrNilClient)
}

func TestRedisGenStore(t *testing.T) {
	addr := os.Getenv("TYPECACHE_REDIS_ADDR")
	if addr == "" {
		t.Skip("TYPECACHE_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := redis.NewClient(&redis.Options{Addr: addr})
	s, err := NewRedisGenStore(RedisGenOptions{Client: c, Namespace: t.Name(), TTL: time.Minute, CloseClient: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Del(ctx, s.key("k")).Err()
		_ = s.Close(ctx)
	})

	g, err := s.Snapshot(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, g)

	g, err = s.Bump(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, uint64(1), g)

	g, err = s.Snapshot(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, uint64(1), g)

	ttl, err := c.TTL(ctx, s.key("k")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}
