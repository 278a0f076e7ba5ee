package typecache

import (
	"reflect"
	"sync"
)

// RegistryOptions tune the per-type tables of a Registry.
// The zero value selects the defaults noted on each field.
type RegistryOptions struct {
	InitialProbeSize int // power of two; 0 => 32
	MaxProbeSize     int // power of two >= InitialProbeSize; 0 => 65536
	ProbeLimit       int // slots searched past home, home included; 0 => 6
	LoadLimitPercent int // probe fill that triggers cleanup/growth; 0 => 67

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks
}

// Registry is the side table that gives every reflect.Type its own slot
// (backing table and probe array). TypeValues sharing a Registry share
// those slots. Most programs only need DefaultRegistry.
type Registry struct {
	initialProbeSize int
	maxProbeSize     int
	probeLimit       int
	loadLimitPercent int

	log   Logger
	hooks Hooks

	mu     sync.Mutex // serializes slot creation
	tables sync.Map   // reflect.Type -> *table
}

var defaultRegistry = mustRegistry(RegistryOptions{})

// DefaultRegistry returns the process-wide registry used when
// Options.Registry is nil.
func DefaultRegistry() *Registry { return defaultRegistry }

// NewRegistry validates opts and returns an empty registry.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	r := &Registry{
		initialProbeSize: coalesce(opts.InitialProbeSize, defaultInitialProbeSize),
		maxProbeSize:     coalesce(opts.MaxProbeSize, defaultMaxProbeSize),
		probeLimit:       coalesce(opts.ProbeLimit, defaultProbeLimit),
		loadLimitPercent: coalesce(opts.LoadLimitPercent, defaultLoadLimitPercent),
		log:              coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:            coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	switch {
	case !isPowerOfTwo(r.initialProbeSize):
		return nil, invalidOption("InitialProbeSize must be a power of two, got %d", r.initialProbeSize)
	case !isPowerOfTwo(r.maxProbeSize) || r.maxProbeSize < r.initialProbeSize:
		return nil, invalidOption("MaxProbeSize must be a power of two >= %d, got %d",
			r.initialProbeSize, r.maxProbeSize)
	case r.maxProbeSize > hashMask+1:
		return nil, invalidOption("MaxProbeSize must be <= %d, got %d", hashMask+1, r.maxProbeSize)
	case r.probeLimit < 1 || r.probeLimit > r.initialProbeSize:
		return nil, invalidOption("ProbeLimit must be in [1, %d], got %d", r.initialProbeSize, r.probeLimit)
	case r.loadLimitPercent < 1 || r.loadLimitPercent > 95:
		return nil, invalidOption("LoadLimitPercent must be in [1, 95], got %d", r.loadLimitPercent)
	}
	return r, nil
}

func mustRegistry(opts RegistryOptions) *Registry {
	r, err := NewRegistry(opts)
	if err != nil {
		panic(err)
	}
	return r
}

// lookup returns the slot for typ without creating it.
func (r *Registry) lookup(typ reflect.Type) *table {
	if t, ok := r.tables.Load(typ); ok {
		return t.(*table)
	}
	return nil
}

// table returns the slot for typ, creating it on first use. Creation is
// double-checked under one coarse lock so a type never gets two slots.
func (r *Registry) table(typ reflect.Type) *table {
	if t := r.lookup(typ); t != nil {
		return t
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t := r.lookup(typ); t != nil {
		return t
	}
	t := newTable(r, typ)
	r.tables.Store(typ, t)
	r.log.Debug("type slot created", typeFields(typ))
	return t
}
