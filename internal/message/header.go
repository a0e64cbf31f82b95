// Package message provides offset-addressed accessors for the fixed 12-byte
// DNS message header (RFC 1035 §4.1.1) and the 2-byte flags field it
// contains. It operates directly on the wire buffer through internal/wire —
// no struct is overlaid onto the datagram, so there is nothing here that
// depends on host byte order or struct layout.
package message

import "github.com/dnsscience/authdns/internal/wire"

// HeaderSize is the fixed DNS header length in bytes.
const HeaderSize = 12

// Response codes. The query handler produces all of these except
// RCodeServFail, which is defined for labelling only.
const (
	RCodeNoError  = 0
	RCodeFormErr  = 1
	RCodeServFail = 2
	RCodeNXDomain = 3
	RCodeNotImp   = 4
	RCodeRefused  = 5
)

// ID returns the transaction ID (header bytes 0-1).
func ID(buf []byte) uint16 { return wire.Uint16(buf, 0) }

// QDCount returns the question count (header bytes 4-5).
func QDCount(buf []byte) uint16 { return wire.Uint16(buf, 4) }

// ANCount returns the answer count (header bytes 6-7).
func ANCount(buf []byte) uint16 { return wire.Uint16(buf, 6) }

// SetANCount writes the answer count.
func SetANCount(buf []byte, n uint16) { wire.PutUint16(buf, 6, n) }

// SetNSCount writes the authority count.
func SetNSCount(buf []byte, n uint16) { wire.PutUint16(buf, 8, n) }

// SetARCount writes the additional count.
func SetARCount(buf []byte, n uint16) { wire.PutUint16(buf, 10, n) }
