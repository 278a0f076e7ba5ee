package genstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalMissingKeyIsZero(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	g, err := s.Snapshot(ctx, "nope")
	require.NoError(t, err)
	require.Zero(t, g)
}

func TestLocalBumpIsPerKey(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	for want := uint64(1); want <= 3; want++ {
		g, err := s.Bump(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, want, g)
	}
	ga, _ := s.Snapshot(ctx, "a")
	gb, _ := s.Snapshot(ctx, "b")
	require.Equal(t, uint64(3), ga)
	require.Zero(t, gb)
}

func TestLocalConcurrentBumps(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	const workers, per = 8, 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				_, _ = s.Bump(ctx, "shared")
				_, _ = s.Bump(ctx, fmt.Sprintf("own-%d", w))
			}
		}(w)
	}
	wg.Wait()

	g, _ := s.Snapshot(ctx, "shared")
	require.Equal(t, uint64(workers*per), g)
	g, _ = s.Snapshot(ctx, "own-3")
	require.Equal(t, uint64(per), g)
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	_, err := s.Bump(ctx, "old")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = s.Bump(ctx, "fresh")
	require.NoError(t, err)

	s.Cleanup(25 * time.Millisecond)

	g, _ := s.Snapshot(ctx, "old")
	require.Zero(t, g, "old generation should be pruned")
	g, _ = s.Snapshot(ctx, "fresh")
	require.Equal(t, uint64(1), g)
}

func TestLocalCleanupLoop(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(10*time.Millisecond, 10*time.Millisecond)

	_, err := s.Bump(ctx, "k")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		g, _ := s.Snapshot(ctx, "k")
		return g == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
}
