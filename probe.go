package typecache

import "sync/atomic"

// probeCache is the lock-free read side of a type table: a power-of-two
// array of entries addressed by identity hash with bounded linear probing.
//
// Slots are read without the table lock and written only with it held.
// A resize builds a new probeCache and publishes it whole.
type probeCache struct {
	slots []atomic.Pointer[entry]
}

func newProbeCache(size int) *probeCache {
	return &probeCache{slots: make([]atomic.Pointer[entry], size)}
}

func (c *probeCache) len() int  { return len(c.slots) }
func (c *probeCache) mask() int { return len(c.slots) - 1 }

func (c *probeCache) load(i int) *entry     { return c.slots[i&c.mask()].Load() }
func (c *probeCache) store(i int, e *entry) { c.slots[i&c.mask()].Store(e) }

// lookup finds the entry matching id. dist is the offset from the home
// slot, or -1 on a miss. Only non-nil runs are searched: if the home slot
// is empty nobody was displaced from it.
func (c *probeCache) lookup(id *identity, limit int) (e *entry, dist int) {
	home := id.hash & c.mask()
	e = c.load(home)
	if id.matches(e) {
		return e, 0
	}
	if e == nil {
		return nil, -1
	}
	for i := 1; i < limit; i++ {
		e = c.load(home + i)
		if e == nil {
			break
		}
		if id.matches(e) {
			return e, i
		}
	}
	return nil, -1
}

// dislocation is how far pos is from the home slot of e's owner.
// Stale entries report 0 so that they are never moved around.
func (c *probeCache) dislocation(pos int, e *entry) int {
	owner := e.liveOwner()
	if owner == nil {
		return 0
	}
	return (pos - owner.hash) & c.mask()
}

// The methods below mutate the probe array and the load counter;
// t.mu must be held.

// promote moves id's entry found dist slots past its home back home,
// relocating the incumbent to the vacated slot if it still fits its
// own probe window.
func (t *table) promote(c *probeCache, id *identity, dist int) {
	if t.probe.Load() != c {
		return
	}
	limit := t.reg.probeLimit
	home := id.hash & c.mask()
	pos := home + dist
	e := c.load(pos)
	if !id.matches(e) {
		return
	}
	incumbent := c.load(home)
	if incumbent == nil {
		t.load++
	}
	c.store(home, e)
	if incumbent != nil && incumbent.live() && c.dislocation(pos, incumbent) < limit {
		c.store(pos, incumbent)
	} else {
		c.store(pos, deadEntry)
	}
}

// checkLoad sweeps stale entries once the load limit is reached and
// doubles the array if that did not help. Saturation is reported again
// after the load has dropped below the limit once.
func (t *table) checkLoad() {
	if t.load < t.loadLimit {
		t.saturated = false
		return
	}
	c := t.probe.Load()
	t.removeStale(c, 0, c.len()+t.reg.probeLimit-1)
	if t.load < t.loadLimit {
		t.saturated = false
		return
	}
	if c.len() >= t.reg.maxProbeSize {
		if !t.saturated {
			t.saturated = true
			t.reg.log.Warn("probe array saturated; lookups fall back to the table lock",
				Fields{"type": t.typ.String(), "size": c.len()})
			t.reg.hooks.ProbeSaturated(t.typ, c.len())
		}
		return
	}
	t.resize(c.len() * 2)
}

// resize rebuilds the probe array at size with every live entry of the
// current one, then publishes it.
func (t *table) resize(size int) {
	old := t.probe.Load()
	c := newProbeCache(size)
	t.load = 0
	t.loadLimit = size * t.reg.loadLimitPercent / 100
	for i := range old.slots {
		e := old.slots[i].Load()
		if e == nil {
			continue
		}
		if owner := e.liveOwner(); owner != nil {
			t.place(c, owner, e)
		}
	}
	t.probe.Store(c)
	t.reg.log.Debug("probe array resized", Fields{"type": t.typ.String(), "from": old.len(), "to": size})
	t.reg.hooks.ProbeResized(t.typ, old.len(), size)
}

// place puts e in id's home slot. A live incumbent of another identity
// is moved to a free slot within its own probe window, or dropped.
func (t *table) place(c *probeCache, id *identity, e *entry) {
	limit := t.reg.probeLimit
	home := id.hash & c.mask()
	displaced := t.overwrite(c, home, e, false)
	if displaced == nil || limit <= 1 {
		return
	}
	dis := c.dislocation(home, displaced)
	start := home - dis
	for i := start; i < start+limit; i++ {
		if t.overwrite(c, i, displaced, true) == nil {
			return
		}
	}
	// displaced falls out of the probe array; the table still has it
}

// overwrite stores e at pos and returns the live entry it replaced.
// When gently is set a live occupant is left alone and e is returned.
func (t *table) overwrite(c *probeCache, pos int, e *entry, gently bool) *entry {
	prev := c.load(pos)
	var live *entry
	switch {
	case prev == nil:
		t.load++
	case prev.live():
		live = prev
	}
	if gently && live != nil {
		return e
	}
	c.store(pos, e)
	return live
}

// removeStale clears stale entries in [begin, begin+count), pulling a
// later entry of the same run forward where that keeps runs intact.
func (t *table) removeStale(c *probeCache, begin, count int) {
	removed := 0
	for i := begin; i < begin+count; i++ {
		e := c.load(i)
		if e == nil || e.live() {
			continue
		}
		var repl *entry
		if t.reg.probeLimit > 1 {
			repl = t.findReplacement(c, i)
		}
		c.store(i, repl)
		if repl == nil {
			removed++
		}
	}
	t.load = max(0, t.load-removed)
}

// removeStaleFor cleans up the probe window of one identity, typically
// right after its token was bumped.
func (t *table) removeStaleFor(id *identity) {
	c := t.probe.Load()
	t.removeStale(c, id.hash, t.reg.probeLimit)
}

// findReplacement looks for a live entry later in the run starting at
// slot that would be at least as close to its home if moved into slot.
// An exact fit wins; otherwise the farthest candidate is taken.
func (t *table) findReplacement(c *probeCache, slot int) *entry {
	limit := t.reg.probeLimit
	var (
		repl    *entry
		replPos int
		exact   = -1 // -1 none, 0 shifted fit, 1 exact fit
	)
	for i := slot + 1; i < slot+limit; i++ {
		e := c.load(i)
		if e == nil {
			break
		}
		if !e.live() {
			continue
		}
		dis := c.dislocation(i, e)
		if dis == 0 {
			continue
		}
		home := i - dis
		if home > slot {
			continue
		}
		if home == slot {
			exact, replPos, repl = 1, i, e
		} else if exact <= 0 {
			exact, replPos, repl = 0, i, e
		}
	}
	if exact >= 0 {
		if c.load(replPos+1) != nil {
			// keep the run after replPos reachable
			c.store(replPos, deadEntry)
		} else {
			c.store(replPos, nil)
			t.load--
		}
	}
	return repl
}
