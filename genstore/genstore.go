// Package genstore holds the generation counters that make tier entries
// for a type go stale when the type's value is removed.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live. A missing key reads as 0.
// Use LocalGenStore for a single process and RedisGenStore when replicas
// share one tier.
type GenStore interface {
	// Snapshot returns the current generation of storageKey.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup forgets generations untouched for longer than retention.
	Cleanup(retention time.Duration)
	// Close stops background work.
	Close(context.Context) error
}
