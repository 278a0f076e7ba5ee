package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequiresLifeWindow(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.ErrorIs(t, err, ErrNoLifeWindow)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute, Shards: 16, MaxEntriesInWindow: 100, MaxEntrySize: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(ctx) })

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	accepted, err := p.Set(ctx, "k", []byte("v"), 0, 0)
	require.NoError(t, err)
	require.True(t, accepted)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	require.NoError(t, p.Del(ctx, "k"))
	require.NoError(t, p.Del(ctx, "k"), "deleting a missing key is not an error")
	_, ok, _ = p.Get(ctx, "k")
	require.False(t, ok)
}
