package typecache

import "weak"

// entry binds a value (or a promise of one) to a version token.
// Entries are never mutated after they are published: a promise is
// replaced by a new resolved entry, and a refreshed entry is a copy.
type entry struct {
	ver     weak.Pointer[version]
	value   any
	promise bool
}

// deadEntry fills probe slots that must stay non-nil to keep a probe run
// unbroken. Its token pointer is zero, so it never matches or lives.
var deadEntry = &entry{}

func (e *entry) version() *version { return e.ver.Value() }

func (e *entry) live() bool {
	v := e.ver.Value()
	return v != nil && v.live()
}

// liveOwner returns the identity of a live entry, or nil.
func (e *entry) liveOwner() *identity {
	v := e.ver.Value()
	if v == nil || !v.live() {
		return nil
	}
	return v.owner
}

// refresh copies a resolved entry under a newer token of the same identity.
func (e *entry) refresh(v *version) *entry {
	return v.resolve(e.value)
}

// valueOf unpacks a resolved entry for a typed caller. A nil interface
// value (a cached nil) comes back as the zero V.
func valueOf[V any](e *entry) V {
	v, _ := e.value.(V)
	return v
}

// sameValue reports whether a and b are the same value without panicking
// on dynamic types that are not comparable.
func sameValue(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
