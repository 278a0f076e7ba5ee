package typecache

import (
	"reflect"
	"sync"
	"sync/atomic"
	"weak"
)

// tableSweepMin is the smallest entry count at which a table scans for
// identities that have been garbage collected.
const tableSweepMin = 16

// table is the per-type slot: the canonical identity -> entry map plus
// the probe array that serves lock-free reads. Every mutation of either
// happens under mu.
type table struct {
	reg *Registry
	typ reflect.Type

	probe atomic.Pointer[probeCache]

	mu        sync.Mutex
	entries   map[weak.Pointer[identity]]*entry
	sweepAt   int
	load      int // non-nil probe slots
	loadLimit int
	saturated bool
}

func newTable(reg *Registry, typ reflect.Type) *table {
	t := &table{
		reg:       reg,
		typ:       typ,
		entries:   make(map[weak.Pointer[identity]]*entry),
		sweepAt:   tableSweepMin,
		loadLimit: reg.initialProbeSize * reg.loadLimitPercent / 100,
	}
	t.probe.Store(newProbeCache(reg.initialProbeSize))
	return t
}

// lookup is the fast path. It never blocks: a hit found away from its
// home slot is moved home only if the lock happens to be free.
func (t *table) lookup(id *identity) *entry {
	c := t.probe.Load()
	e, dist := c.lookup(id, t.reg.probeLimit)
	if dist > 0 && t.mu.TryLock() {
		t.promote(c, id, dist)
		t.mu.Unlock()
	}
	return e
}

// start returns id's resolved entry, or a promise the caller must
// fulfil by computing outside the lock and calling finish.
func (t *table) start(id *identity) *entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := id.version()
	e := t.entries[id.ref]
	switch {
	case e == nil:
		e = v.promise()
		t.set(id.ref, e)
		return e
	case e.promise:
		// join the computation in flight; finish resolves it under
		// whatever token is current then
		return e
	}
	if e.ver != v.self {
		// token was bumped through another type; the value itself is still ours
		e = e.refresh(v)
		t.entries[id.ref] = e
	}
	t.publish(id, e)
	return e
}

// finish publishes value if p is still the pending promise for id.
// Otherwise the value is dropped and the returned reason says why; the
// caller starts over.
func (t *table) finish(id *identity, p *entry, value any) (*entry, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e0 := t.entries[id.ref]
	if e0 != p {
		if e0 != nil && !e0.promise {
			return nil, "superseded"
		}
		return nil, "removed"
	}
	// A remove or put on this type replaces p, so a token that moved
	// while p stayed was bumped through another type.
	e := id.version().resolve(value)
	t.entries[id.ref] = e
	t.publish(id, e)
	return e, ""
}

// abandon withdraws a promise whose computation failed.
func (t *table) abandon(id *identity, p *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.entries[id.ref] == p {
		delete(t.entries, id.ref)
	}
}

// remove drops id's value for this type and bumps id's token. A pending
// promise stays a promise, re-tagged so its computation gets discarded.
func (t *table) remove(id *identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[id.ref]
	if e == nil {
		return false
	}
	v := id.bump()
	if e.promise {
		t.entries[id.ref] = v.promise()
	} else {
		delete(t.entries, id.ref)
	}
	t.removeStaleFor(id)
	return true
}

// put installs value for id, bumping the token unless the very same
// value is already cached. It reports whether anything changed.
func (t *table) put(id *identity, value any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := id.version()
	if e0 := t.entries[id.ref]; e0 != nil {
		if !e0.promise && sameValue(e0.value, value) {
			if e0.ver != v.self {
				e := e0.refresh(v)
				t.entries[id.ref] = e
				t.publish(id, e)
			}
			return false
		}
		v = id.bump()
		t.removeStaleFor(id)
	}
	e := v.resolve(value)
	t.set(id.ref, e)
	t.publish(id, e)
	return true
}

// publish makes e visible to the fast path.
func (t *table) publish(id *identity, e *entry) {
	t.checkLoad()
	t.place(t.probe.Load(), id, e)
}

// set stores e for key, first reclaiming entries of collected identities
// when the map has doubled since the last sweep.
func (t *table) set(key weak.Pointer[identity], e *entry) {
	if _, ok := t.entries[key]; !ok && len(t.entries) >= t.sweepAt {
		t.sweep()
	}
	t.entries[key] = e
}

func (t *table) sweep() {
	for k := range t.entries {
		if k.Value() == nil {
			delete(t.entries, k)
		}
	}
	t.sweepAt = max(tableSweepMin, 2*len(t.entries))
}
