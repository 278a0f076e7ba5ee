package util

import (
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// TypeName is the stable, package-qualified name of typ. Unnamed types
// (slices, maps, funcs...) fall back to reflect's String form.
func TypeName(typ reflect.Type) string {
	if pkg := typ.PkgPath(); pkg != "" && typ.Name() != "" {
		return pkg + "." + typ.Name()
	}
	return typ.String()
}

// TypeKey returns prefix + ":" + a 16-hex-digit xxhash of TypeName(typ).
// Collisions are possible in principle; readers compare the full name
// stored alongside the value.
func TypeKey(prefix string, typ reflect.Type) string {
	sum := xxhash.Sum64String(TypeName(typ))
	b := make([]byte, 0, len(prefix)+1+16)
	b = append(b, prefix...)
	b = append(b, ':')
	hex := strconv.FormatUint(sum, 16)
	for i := len(hex); i < 16; i++ {
		b = append(b, '0')
	}
	b = append(b, hex...)
	return string(b)
}
