// Package typecache lazily associates a computed value with each
// reflect.Type, the way a reflection-heavy library caches per-type
// encoders, field layouts or schemas.
//
// Each TypeValue is an independent cache identity. Get computes the value
// for a type on first use and afterwards serves it from a small lock-free
// probe array owned by that type; the canonical copy lives in a per-type
// table guarded by a mutex. Remove and Put move the identity's version
// token forward, so every copy tagged with the older token stops matching
// at once without touching other identities or other types' values.
//
// Components:
//   - Registry: the side table that gives every reflect.Type its slot.
//     DefaultRegistry serves most programs.
//   - TypeValue[V]: Get, Put, Remove over one identity.
//   - Tier[V]: optional second level made of a Provider (ristretto,
//     bigcache, redis), a Codec[V] and a GenStore. Computed values are
//     written under the generation observed before computing, so a
//     Remove in another process makes older copies unreadable.
//
// Keys (tier only):
//
//	tv:<namespace>:<xxhash of the qualified type name>
//
// Usage:
//
//	encoders, _ := typecache.New(typecache.Options[Encoder]{
//	    Compute: buildEncoder,
//	})
//	enc, err := encoders.Get(ctx, reflect.TypeOf(v))
package typecache
