package typecache

import (
	"context"
	"reflect"
)

type typeValue[V any] struct {
	id      *identity
	compute ComputeFunc[V]
	reg     *Registry
	tier    *Tier[V]
	log     Logger
	hooks   Hooks
}

func newTypeValue[V any](opts Options[V]) (*typeValue[V], error) {
	if opts.Compute == nil {
		return nil, invalidOption("Compute is required")
	}
	return &typeValue[V]{
		id:      newIdentity(opts.Name),
		compute: opts.Compute,
		reg:     coalesce(opts.Registry, DefaultRegistry()),
		tier:    opts.Tier,
		log:     coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:   coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

func (tv *typeValue[V]) Get(ctx context.Context, typ reflect.Type) (V, error) {
	if typ == nil {
		var zero V
		return zero, ErrNilType
	}
	if t := tv.reg.lookup(typ); t != nil {
		if e := t.lookup(tv.id); e != nil {
			return valueOf[V](e), nil
		}
	}
	return tv.getSlow(ctx, typ)
}

// getSlow runs the start/compute/finish protocol until a value sticks.
func (tv *typeValue[V]) getSlow(ctx context.Context, typ reflect.Type) (V, error) {
	t := tv.reg.table(typ)
	for {
		e := t.start(tv.id)
		if !e.promise {
			return valueOf[V](e), nil
		}
		r, reason, err := tv.fulfil(ctx, t, typ, e)
		if err != nil {
			var zero V
			return zero, err
		}
		if r != nil {
			return valueOf[V](r), nil
		}
		f := tv.fields(typ)
		f["reason"] = reason
		tv.log.Debug("computed value discarded; retrying", f)
		tv.hooks.ComputeDiscarded(typ, reason)
	}
}

// fulfil produces the value promised by p outside the table lock and
// tries to publish it. A failed or panicking computation withdraws p.
func (tv *typeValue[V]) fulfil(ctx context.Context, t *table, typ reflect.Type, p *entry) (*entry, string, error) {
	produced := false
	defer func() {
		if !produced {
			t.abandon(tv.id, p)
		}
	}()

	v, err := tv.produce(ctx, typ)
	if err != nil {
		f := tv.fields(typ)
		f["err"] = err
		tv.log.Warn("compute failed", f)
		tv.hooks.ComputeFailed(typ, err)
		return nil, "", &ComputeError{Type: typ, Err: err}
	}
	produced = true
	r, reason := t.finish(tv.id, p, v)
	return r, reason, nil
}

// produce consults the tier before computing, and seeds it after.
func (tv *typeValue[V]) produce(ctx context.Context, typ reflect.Type) (V, error) {
	if tv.tier == nil {
		return tv.compute(typ)
	}
	v, ok, obs := tv.tier.load(ctx, typ)
	if ok {
		return v, nil
	}
	v, err := tv.compute(typ)
	if err != nil {
		return v, err
	}
	tv.tier.store(ctx, typ, v, obs)
	return v, nil
}

func (tv *typeValue[V]) Put(ctx context.Context, typ reflect.Type, value V) error {
	if typ == nil {
		return ErrNilType
	}
	changed := tv.reg.table(typ).put(tv.id, value)
	f := tv.fields(typ)
	f["changed"] = changed
	tv.log.Debug("value put", f)
	if tv.tier == nil || !changed {
		return nil
	}
	return tv.tier.replace(ctx, typ, value)
}

func (tv *typeValue[V]) Remove(ctx context.Context, typ reflect.Type) error {
	if typ == nil {
		return ErrNilType
	}
	removed := false
	if t := tv.reg.lookup(typ); t != nil {
		removed = t.remove(tv.id)
	}
	f := tv.fields(typ)
	f["removed"] = removed
	tv.log.Debug("value removed", f)
	if tv.tier == nil {
		return nil
	}
	return tv.tier.invalidate(ctx, typ)
}

func (tv *typeValue[V]) Close(ctx context.Context) error {
	if tv.tier != nil {
		return tv.tier.Close(ctx)
	}
	return nil
}

func (tv *typeValue[V]) fields(typ reflect.Type) Fields {
	f := typeFields(typ)
	f["identity"] = tv.id.name
	f["gen"] = tv.id.version().gen
	return f
}
