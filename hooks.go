package typecache

import "reflect"

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: the probe hooks run
// while a per-type table lock is held.
type Hooks interface {
	// The compute function returned an error for typ.
	ComputeFailed(typ reflect.Type, err error)

	// A computed value was dropped instead of published.
	// reason ∈ {"removed", "superseded"}
	ComputeDiscarded(typ reflect.Type, reason string)

	// The probe array of typ was reallocated.
	ProbeResized(typ reflect.Type, from, to int)

	// The probe array of typ hit MaxProbeSize and will not grow further.
	ProbeSaturated(typ reflect.Type, size int)

	// A tier entry was deleted on read.
	// reason ∈ {"corrupt", "type_mismatch", "gen_mismatch", "value_decode"}
	TierSelfHeal(storageKey, reason string)

	// The tier provider returned ok=false on Set (backpressure/eviction).
	TierSetRejected(storageKey string)

	// GenStore errors.
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Remove (likely backend outage).
	RemoveOutage(storageKey string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ComputeFailed(reflect.Type, error)     {}
func (NopHooks) ComputeDiscarded(reflect.Type, string) {}
func (NopHooks) ProbeResized(reflect.Type, int, int)   {}
func (NopHooks) ProbeSaturated(reflect.Type, int)      {}
func (NopHooks) TierSelfHeal(string, string)           {}
func (NopHooks) TierSetRejected(string)                {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) RemoveOutage(string, error, error)     {}
