package typecache

import (
	"context"
	"reflect"
	"sync"
	"time"

	c "github.com/unkn0wn-root/typecache/codec"
	gen "github.com/unkn0wn-root/typecache/genstore"
	"github.com/unkn0wn-root/typecache/internal/util"
	"github.com/unkn0wn-root/typecache/internal/wire"
	pr "github.com/unkn0wn-root/typecache/provider"
)

// SetCostFunc prices a tier write for cost-aware providers (Ristretto).
type SetCostFunc func(storageKey string, raw []byte) int64

// TierOptions configure a second-level store for one TypeValue.
// Namespace, Provider and Codec are required.
type TierOptions[V any] struct {
	Namespace string // must be unique per TypeValue sharing a Provider
	Provider  pr.Provider
	Codec     c.Codec[V]

	GenStore        gen.GenStore  // nil => in-process LocalGenStore
	TTL             time.Duration // 0 => 10m
	ComputeSetCost  SetCostFunc   // default 1
	CleanupInterval time.Duration // local gen store sweep; 0 => 1h
	GenRetention    time.Duration // local gen store retention; 0 => 30d
	Logger          Logger        // nil => NopLogger
	Hooks           Hooks         // nil => NopHooks
}

// Tier keeps computed values in a byte store so they outlive the process
// and can be shared by replicas. Entries carry the generation observed
// before computing; Remove bumps the generation so every holder of an
// older copy rejects it on read.
type Tier[V any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[V]
	gen      gen.GenStore
	ttl      time.Duration
	cost     SetCostFunc
	log      Logger
	hooks    Hooks

	closeOnce sync.Once
	closeErr  error
}

func NewTier[V any](opts TierOptions[V]) (*Tier[V], error) {
	if opts.Provider == nil {
		return nil, invalidOption("tier provider is required")
	}
	if opts.Codec == nil {
		return nil, invalidOption("tier codec is required")
	}
	if opts.Namespace == "" {
		return nil, invalidOption("tier namespace is required")
	}

	t := &Tier[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		ttl:      coalesce(opts.TTL, defaultTierTTL),
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	if opts.ComputeSetCost != nil {
		t.cost = opts.ComputeSetCost
	} else {
		t.cost = func(string, []byte) int64 { return 1 }
	}
	if opts.GenStore != nil {
		t.gen = opts.GenStore
	} else {
		t.gen = gen.NewLocalGenStore(
			coalesce(opts.CleanupInterval, defaultSweep),
			coalesce(opts.GenRetention, defaultGenRetention),
		)
	}
	return t, nil
}

// Close stops the generation store and the provider. Safe to call twice.
func (t *Tier[V]) Close(ctx context.Context) error {
	t.closeOnce.Do(func() {
		// gen store first, best effort
		_ = t.gen.Close(ctx)
		t.closeErr = t.provider.Close(ctx)
	})
	return t.closeErr
}

// load returns the stored value for typ if its generation is current.
// obs is the generation observed before reading; pass it to store.
func (t *Tier[V]) load(ctx context.Context, typ reflect.Type) (v V, ok bool, obs uint64) {
	k := t.key(typ)
	obs = t.snapshotGen(ctx, k)
	raw, ok, err := t.provider.Get(ctx, k)
	if err != nil {
		t.log.Warn("tier get failed", Fields{"key": k, "err": err})
		return v, false, obs
	}
	if !ok {
		return v, false, obs
	}
	g, name, payload, err := wire.Decode(raw)
	switch {
	case err != nil:
		t.selfHeal(ctx, k, "corrupt")
		return v, false, obs
	case name != util.TypeName(typ):
		// two types hashed to the same key
		t.selfHeal(ctx, k, "type_mismatch")
		return v, false, obs
	case g != obs:
		t.selfHeal(ctx, k, "gen_mismatch")
		return v, false, obs
	}
	v, err = t.codec.Decode(payload)
	if err != nil {
		t.selfHeal(ctx, k, "value_decode")
		var zero V
		return zero, false, obs
	}
	return v, true, obs
}

// store writes v iff the generation of typ still equals obs.
// Failures are logged; the in-process value is unaffected.
func (t *Tier[V]) store(ctx context.Context, typ reflect.Type, v V, obs uint64) {
	k := t.key(typ)
	if t.snapshotGen(ctx, k) != obs {
		t.log.Debug("tier store skipped (gen mismatch)", Fields{"key": k, "obs": obs})
		return
	}
	payload, err := t.codec.Encode(v)
	if err != nil {
		t.log.Warn("tier encode failed", Fields{"key": k, "err": err})
		return
	}
	raw := wire.Encode(obs, util.TypeName(typ), payload)
	ok, err := t.provider.Set(ctx, k, raw, t.cost(k, raw), t.ttl)
	if err != nil {
		t.log.Warn("tier set failed", Fields{"key": k, "err": err})
		return
	}
	if !ok {
		t.log.Debug("tier set rejected by provider (pressure)", Fields{"key": k})
		t.hooks.TierSetRejected(k)
	}
}

// invalidate bumps the generation of typ and deletes the stored copy.
func (t *Tier[V]) invalidate(ctx context.Context, typ reflect.Type) error {
	k := t.key(typ)
	newGen, bumpErr := t.gen.Bump(ctx, k)
	if bumpErr != nil {
		t.log.Error("gen bump error", Fields{"key": k, "err": bumpErr})
		t.hooks.GenBumpError(k, bumpErr)
	}
	delErr := t.provider.Del(ctx, k)
	if bumpErr != nil && delErr != nil {
		t.hooks.RemoveOutage(k, bumpErr, delErr)
	}
	if bumpErr != nil || delErr != nil {
		return &RemoveError{Key: k, BumpErr: bumpErr, DelErr: delErr}
	}
	t.log.Debug("tier invalidated (bumped gen + deleted)", Fields{"key": k, "newGen": newGen})
	return nil
}

// replace invalidates older copies of typ and stores v under the new generation.
func (t *Tier[V]) replace(ctx context.Context, typ reflect.Type, v V) error {
	if err := t.invalidate(ctx, typ); err != nil {
		return err
	}
	t.store(ctx, typ, v, t.snapshotGen(ctx, t.key(typ)))
	return nil
}

func (t *Tier[V]) snapshotGen(ctx context.Context, storageKey string) uint64 {
	g, err := t.gen.Snapshot(ctx, storageKey)
	if err != nil {
		// Conservative: 0 makes stores skip and stored copies self-heal
		t.log.Warn("gen snapshot error", Fields{"key": storageKey, "err": err})
		t.hooks.GenSnapshotError(storageKey, err)
		return 0
	}
	return g
}

func (t *Tier[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = t.provider.Del(ctx, storageKey)
	t.log.Debug("tier entry dropped", Fields{"key": storageKey, "reason": reason})
	t.hooks.TierSelfHeal(storageKey, reason)
}

func (t *Tier[V]) key(typ reflect.Type) string {
	return util.TypeKey("tv:"+t.ns, typ)
}
