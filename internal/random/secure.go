// Package random provides a cryptographically random DNS transaction ID
// generator. It is intentionally minimal: source-port pools and reply
// validation belong to a recursive resolver's outgoing queries, and an
// authoritative-only server that never originates a query has no use
// for them.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// TransactionID returns a cryptographically random 16-bit transaction ID.
// Never use math/rand here — a predictable ID lets an off-path attacker
// forge a matching reply.
func TransactionID() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return binary.BigEndian.Uint16(buf[:])
}
