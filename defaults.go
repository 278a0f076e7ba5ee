package typecache

import "time"

const (
	defaultInitialProbeSize = 32
	defaultMaxProbeSize     = 1 << 16
	defaultProbeLimit       = 6
	defaultLoadLimitPercent = 67

	// identity hashes stay below this so probe indexes never overflow
	hashMask = 1<<30 - 1

	defaultTierTTL      = 10 * time.Minute
	defaultGenRetention = 30 * 24 * time.Hour
	defaultSweep        = time.Hour
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
