package record

import (
	"sync"

	"github.com/dchest/siphash"
)

// shardCount is a power of two so shard selection is a mask, not a modulo.
// Large enough that a busy zone table doesn't bottleneck on a single
// bucket's map growth during load.
const shardCount = 64

// tableKey is a fixed SipHash key. The table is not a security boundary —
// shard placement only needs to be stable and well distributed across
// zone names, not unpredictable to an attacker — so an arbitrary fixed key
// is fine.
var tableKey = [16]byte{0x61, 0x75, 0x74, 0x68, 0x64, 0x6e, 0x73, 0x00, 0x7a, 0x6f, 0x6e, 0x65, 0x74, 0x62, 0x6c, 0x00}

type shard struct {
	entries map[Name]map[Type]RRSet
}

// Table is a sharded WireName -> (RecordType -> RRSet) lookup table. It is
// built once by a single goroutine (internal/configstream) and then only
// ever read, by any number of worker goroutines, so lookups take no lock.
// Sharding exists to bound the size of any single map the loader grows and
// to let print/compile tooling walk the table without holding one giant
// structure locked, not to protect concurrent readers from each other.
type Table struct {
	shards [shardCount]*shard
	mu     sync.Mutex // guards Insert only; Lookup never touches it
}

// NewTable returns an empty Table.
func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i] = &shard{entries: make(map[Name]map[Type]RRSet)}
	}
	return t
}

func (t *Table) shardFor(name Name) *shard {
	h := siphash.New(tableKey[:])
	h.Write([]byte(name))
	return t.shards[h.Sum64()&(shardCount-1)]
}

// Insert appends ans to the rrset for (name, typ), creating the entry if
// needed. Only safe to call before the Table is shared with any worker.
func (t *Table) Insert(name Name, typ Type, ans Answer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.shardFor(name)
	byType := s.entries[name]
	if byType == nil {
		byType = make(map[Type]RRSet)
		s.entries[name] = byType
	}
	byType[typ] = append(byType[typ], ans)
}

// Lookup returns the rrset stored for (name, typ) and whether the owner
// name exists in the table at all (so callers can distinguish "name not
// configured" from "name configured, but not this type").
func (t *Table) Lookup(name Name, typ Type) (rrset RRSet, nameExists bool) {
	s := t.shardFor(name)
	byType, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	return byType[typ], true
}

// Names returns every owner name stored in the table. Used by cmd/zonedump;
// never called from the query hot path.
func (t *Table) Names() []Name {
	var names []Name
	for _, s := range t.shards {
		for name := range s.entries {
			names = append(names, name)
		}
	}
	return names
}

// Types returns the record types stored for a given owner name. Used by
// cmd/zonedump.
func (t *Table) Types(name Name) []Type {
	s := t.shardFor(name)
	byType, ok := s.entries[name]
	if !ok {
		return nil
	}
	types := make([]Type, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	return types
}
