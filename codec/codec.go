// Package codec converts tier values to and from bytes.
//
// Pick a codec whose encoding round-trips V exactly: a value read back
// from the tier is served as if it had just been computed.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
