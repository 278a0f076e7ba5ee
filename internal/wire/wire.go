// Package wire frames tier values. A frame records the generation the
// value was computed under and the name of the type it belongs to, so a
// reader can reject stale copies and key collisions before decoding.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("typecache: corrupt tier entry")
	magic4     = [...]byte{'T', 'V', 'A', 'L'}
)

const hdrLen = 4 + 1 + 8 + 2 // magic | ver | gen | nameLen

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode lays out:
//
//	magic(4) | ver(1) | gen(u64 be) | nameLen(u16 be) | name | vlen(u32 be) | payload(vlen)
//
// Names longer than 64KiB are truncated; Decode then reports a mismatch
// against the full name, which only costs a recompute.
func Encode(gen uint64, typeName string, payload []byte) []byte {
	if len(typeName) > 0xFFFF {
		typeName = typeName[:0xFFFF]
	}
	b := make([]byte, 0, hdrLen+len(typeName)+4+len(payload))
	b = append(b, magic4[:]...)
	b = append(b, version)
	b = binary.BigEndian.AppendUint64(b, gen)
	b = binary.BigEndian.AppendUint16(b, uint16(len(typeName)))
	b = append(b, typeName...)
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// Decode parses a frame produced by Encode. payload aliases b.
// Trailing bytes after the payload are treated as corruption.
func Decode(b []byte) (gen uint64, typeName string, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return 0, "", nil, ErrCorrupt
	}
	off := 5

	gen = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	nlen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if nlen > len(b)-off {
		return 0, "", nil, ErrCorrupt
	}
	typeName = string(b[off : off+nlen])
	off += nlen

	if off+4 > len(b) {
		return 0, "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return 0, "", nil, ErrCorrupt
	}
	return gen, typeName, b[off:], nil
}
