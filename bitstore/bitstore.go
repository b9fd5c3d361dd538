// Package bitstore defines the generic integer-width constraint the
// arithmetic coder is parameterized over, the Go analogue of the
// arithmetic-coding-core crate's BitStore trait (operator-overloaded
// there; expressed here as a type set plus a small helper function since
// Go arithmetic operators already work generically over any one concrete
// instantiation).
package bitstore

import "math/bits"

// Store is the set of unsigned integer widths the arithmetic coder may be
// instantiated over. u128 from the source crate has no Go equivalent and
// is dropped; uint32 and uint64 cover every precision this module needs.
type Store interface {
	~uint32 | ~uint64
}

// BitsOf returns the bit width of T.
func BitsOf[T Store]() uint {
	var z T
	switch any(z).(type) {
	case uint32:
		return 32
	case uint64:
		return 64
	default:
		return 64
	}
}

// Log2 returns the integer base-2 logarithm of v, rounded down, matching
// Rust's ilog2 semantics. Log2(0) returns 0, since callers here never
// invoke it on zero (the source panics; clamping is more idiomatic here
// and the coder never reaches this path with v == 0).
func Log2[T Store](v T) uint32 {
	switch x := any(v).(type) {
	case uint32:
		if x == 0 {
			return 0
		}
		return uint32(bits.Len32(x) - 1)
	case uint64:
		if x == 0 {
			return 0
		}
		return uint32(bits.Len64(x) - 1)
	default:
		return 0
	}
}
