package typecache

import (
	"context"
	"reflect"
)

// ComputeFunc derives the value for typ. It may run concurrently and more
// than once for the same type, so it should be a pure function of typ.
// A non-nil error is returned to the Get caller and nothing is cached.
type ComputeFunc[V any] func(typ reflect.Type) (V, error)

// TypeValue lazily associates a value of type V with every reflect.Type
// it is asked about. Repeated Gets for a type are served without locking
// until the value is removed or replaced.
type TypeValue[V any] interface {
	// Get returns the value for typ, computing it on first use.
	Get(ctx context.Context, typ reflect.Type) (V, error)

	// Put sets the value for typ regardless of its current state.
	Put(ctx context.Context, typ reflect.Type, value V) error

	// Remove forgets the value for typ; the next Get computes it again.
	// A computation in flight for typ has its result discarded.
	Remove(ctx context.Context, typ reflect.Type) error

	// Close releases the second-level tier, if one is configured.
	Close(ctx context.Context) error
}

// Options configure a TypeValue. Only Compute is required.
type Options[V any] struct {
	Compute ComputeFunc[V]

	Name     string    // shows up in logs; default derived from the identity hash
	Registry *Registry // nil => DefaultRegistry()
	Tier     *Tier[V]  // optional second-level store shared across processes
	Logger   Logger    // nil => NopLogger
	Hooks    Hooks     // nil => NopHooks
}

// New returns a TypeValue with its own identity: values it caches are
// never visible through any other TypeValue, even for the same type.
func New[V any](opts Options[V]) (TypeValue[V], error) {
	tv, err := newTypeValue[V](opts)
	if err != nil {
		return nil, err
	}
	return tv, nil
}
