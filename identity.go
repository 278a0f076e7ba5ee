package typecache

import (
	"fmt"
	"sync/atomic"
	"weak"
)

// hashIncrement spreads consecutive identities over the probe arrays
// (golden ratio, the same constant Fibonacci hashing uses).
const hashIncrement = 0x61c88647

var nextHash atomic.Uint32

// identity is the type-erased part of a TypeValue: a stable probe hash and
// the current version token. Tables key on weak pointers to it.
type identity struct {
	name string
	hash int
	ref  weak.Pointer[identity]
	cur  atomic.Pointer[version]
}

func newIdentity(name string) *identity {
	id := &identity{
		name: name,
		hash: int(nextHash.Add(hashIncrement) & hashMask),
	}
	if id.name == "" {
		id.name = fmt.Sprintf("identity-%08x", id.hash)
	}
	id.ref = weak.Make(id)
	id.bump()
	return id
}

// version returns the current token.
func (id *identity) version() *version { return id.cur.Load() }

// bump replaces the current token with a brand-new one. Every entry tagged
// with an older token, in any type's table or probe array, stops matching.
func (id *identity) bump() *version {
	for {
		old := id.cur.Load()
		v := &version{owner: id}
		if old != nil {
			v.gen = old.gen + 1
		}
		v.self = weak.Make(v)
		if id.cur.CompareAndSwap(old, v) {
			return v
		}
	}
}

// matches reports whether e is a resolved entry for the current token.
// The token is loaded last, after e has been read.
func (id *identity) matches(e *entry) bool {
	return e != nil && e.ver == id.cur.Load().self
}

// version is the generation token of one identity. Only its address
// matters; gen is carried for diagnostics and keeps the struct non-empty
// so that every token gets its own weak pointer.
type version struct {
	owner *identity
	gen   uint64
	self  weak.Pointer[version]
}

func (v *version) live() bool { return v.owner.cur.Load() == v }

// promise returns a fresh in-flight marker tagged with v.
func (v *version) promise() *entry {
	return &entry{ver: v.self, promise: true}
}

// resolve returns a value entry tagged with v.
func (v *version) resolve(value any) *entry {
	return &entry{ver: v.self, value: value}
}
