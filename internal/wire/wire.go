// Package wire provides fixed-width big-endian accessors over a byte slice,
// addressed by offset. It replaces unchecked struct-overlay reinterpretation
// (the approach the Rust prototype this server is descended from used) with
// plain offset math, so the same helpers work unmodified regardless of host
// endianness.
package wire

import "encoding/binary"

// Uint16 reads a big-endian uint16 at off. The caller is responsible for
// bounds-checking; callers in this module always validate length first.
func Uint16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off : off+2])
}

// PutUint16 writes v as big-endian at off.
func PutUint16(b []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(b[off:off+2], v)
}

// Uint32 reads a big-endian uint32 at off.
func Uint32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

// PutUint32 writes v as big-endian at off.
func PutUint32(b []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(b[off:off+4], v)
}

// Uint64 reads a big-endian uint64 at off.
func Uint64(b []byte, off int) uint64 {
	return binary.BigEndian.Uint64(b[off : off+8])
}

// PutUint64 writes v as big-endian at off.
func PutUint64(b []byte, off int, v uint64) {
	binary.BigEndian.PutUint64(b[off:off+8], v)
}
