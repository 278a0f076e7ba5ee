// Package provider defines the byte store behind a typecache Tier.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly
// the []byte previously passed to Set for a key, with no metadata added
// and no re-encoding. The "tv:<namespace>:" keyspace belongs to typecache;
// values written there by anyone else fail frame validation and are
// deleted.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs, safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// I/O or remote failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. Stores without cost accounting ignore cost.
	// ok=false means the store declined the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}
