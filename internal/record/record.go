// Package record holds the in-memory zone table a query handler answers
// from: a set of authoritative zone apexes and a lookup from (wire-format
// name, record type) to an ordered rrset. Everything here is built once by
// internal/configstream and is never mutated again for the life of the
// process.
package record

// Name is a DNS name in wire format: length-prefixed labels terminated by a
// zero octet. It is treated as an opaque byte string for equality and
// hashing, never as a structured value — no label splitting, no case
// folding, no compression.
type Name string

// MaxNameLen is the largest encoded WireName, including its terminating
// zero octet, allowed in a config. The query handler accepts question
// names of at most MaxNameLen-1 (255) bytes.
const MaxNameLen = 256

// Type is a DNS record type as its numeric value (A=1, AAAA=28, ...),
// decoded from the 2-byte big-endian wire field. Any canonical form works
// as a map key as long as the config loader and the query handler agree on
// it; both decode the field with internal/wire, so their keys match.
type Type uint16

// SOA is the RRTYPE value that causes a record's owner name to become a
// zone apex (DATA MODEL, ZoneSet).
const SOA Type = 6

// Answer is one record's worth of reply data: the rdata bytes to emit
// verbatim, and the 4 TTL bytes exactly as read from the config chunk. TTL
// is stored as a raw 4-byte array rather than a uint32 on purpose — the
// handler copies it into replies without ever interpreting it as a number,
// and a raw array makes that impossible to get backwards by accident.
type Answer struct {
	RData []byte
	TTL   [4]byte
}

// RRSet is an ordered list of answers sharing one (owner name, type). Order
// is insertion order: the order records were fed into the config stream is
// the order they are emitted in a reply.
type RRSet []Answer

// ZoneSet is the set of wire names that are authoritative zone apexes.
type ZoneSet map[Name]struct{}

// Contains reports whether name is a configured zone apex.
func (z ZoneSet) Contains(name Name) bool {
	_, ok := z[name]
	return ok
}

// Config is the fully-loaded, immutable zone table handed to every worker.
type Config struct {
	Zones  ZoneSet
	Lookup *Table
}

// NewConfig returns an empty Config ready for a loader to populate. Once
// published to workers, it must not be mutated again.
func NewConfig() *Config {
	return &Config{
		Zones:  make(ZoneSet),
		Lookup: NewTable(),
	}
}
