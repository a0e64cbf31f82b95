// Package query implements the request pipeline's hot path: turning one
// received datagram into a reply datagram, in place, using nothing but an
// immutable *record.Config. It is pure CPU over a byte slice — no I/O and
// no error return. Answers are written straight into the caller's buffer;
// the only per-request allocations are small ones made while parsing the
// question and looking it up (the list of label offsets, the lookup key).
// Every protocol anomaly is encoded into the reply's flags/rcode instead.
package query

import (
	"github.com/dnsscience/authdns/internal/message"
	"github.com/dnsscience/authdns/internal/record"
	"github.com/dnsscience/authdns/internal/wire"
)

// compressionPointer is the two-byte sequence this server always uses to
// refer back to the question name at offset 12.
const compressionPointer = 0xC00C

// question is the parsed question section of an incoming query.
type question struct {
	name        []byte // buf[12:nameEnd], wire format, includes the terminator
	qtype       uint16
	qclass      uint16
	length      int   // bytes consumed after the header: name + QTYPE + QCLASS
	labelStarts []int // offsets into name where each label (incl. the root) begins
}

// Handle rewrites buf[:n] into a reply and returns the new length. buf must
// have room for the full 65535-byte datagram space an answer may be written
// into past the question — it is the worker's persistent per-connection
// receive buffer, not a slice trimmed to n. Handle is safe to call
// repeatedly against the same buffer from the same goroutine; it never
// retains a reference to buf or to cfg's contents.
func Handle(buf []byte, n int, cfg *record.Config) int {
	if n < message.HeaderSize {
		return n
	}

	message.SetResponse(buf, true)
	message.SetRecursionAvailable(buf, false)

	if message.Opcode(buf) != 0 {
		message.SetRcode(buf, message.RCodeNotImp)
		return n
	}
	if message.QDCount(buf) != 1 {
		message.SetRcode(buf, message.RCodeRefused)
		return n
	}
	if message.ANCount(buf) != 0 {
		message.SetRcode(buf, message.RCodeFormErr)
		return n
	}

	q, ok := parseQuestion(buf, n)
	if !ok {
		message.SetRcode(buf, message.RCodeFormErr)
		return n
	}

	message.SetNSCount(buf, 0)
	message.SetARCount(buf, 0)
	size := message.HeaderSize + q.length

	if !authoritative(q, cfg.Zones) {
		message.SetRcode(buf, message.RCodeRefused)
		message.SetAuthoritative(buf, false)
		message.SetANCount(buf, 0)
		return size
	}

	rrset, nameExists := cfg.Lookup.Lookup(record.Name(q.name), record.Type(q.qtype))
	if !nameExists || len(rrset) == 0 {
		message.SetRcode(buf, message.RCodeNXDomain)
		message.SetAuthoritative(buf, true)
		message.SetANCount(buf, 0)
		return size
	}

	pos := size
	for _, ans := range rrset {
		pos = writeAnswer(buf, pos, q, ans)
	}

	message.SetANCount(buf, uint16(len(rrset)))
	message.SetRcode(buf, message.RCodeNoError)
	message.SetAuthoritative(buf, true)
	return pos
}

// parseQuestion reads the single question starting at offset 12. It
// rejects compression pointers (and any label length byte >= 0x40), and
// caps the total encoded length (labels plus the terminating zero) at the
// 255-byte wire-name limit RFC 1035 sets — one byte below
// record.MaxNameLen (256), which bounds the separate config
// wire_domain_len field; see DESIGN.md.
func parseQuestion(buf []byte, n int) (question, bool) {
	var labelStarts []int
	idx := 0
	for {
		pos := message.HeaderSize + idx
		if pos >= n-4 || idx > record.MaxNameLen {
			return question{}, false
		}
		labelStarts = append(labelStarts, idx)
		l := buf[pos]
		if l == 0 {
			idx++
			break
		}
		if l >= 0x40 {
			return question{}, false
		}
		idx += int(l) + 1
	}
	if idx > record.MaxNameLen-1 {
		return question{}, false
	}

	nameEnd := message.HeaderSize + idx
	if nameEnd+4 > n {
		return question{}, false
	}

	return question{
		name:        buf[message.HeaderSize:nameEnd],
		qtype:       wire.Uint16(buf, nameEnd),
		qclass:      wire.Uint16(buf, nameEnd+2),
		length:      idx + 4,
		labelStarts: labelStarts,
	}, true
}

// authoritative reports whether any suffix of the question name — walked
// shortest-suffix-first, i.e. from the root outward — is a configured zone
// apex. Either direction gives the same boolean result since a single hit
// is enough; shortest-first matches the common case where the apex is much
// shorter than the full query name (DESIGN NOTES, "Zone authority via
// suffix enumeration").
func authoritative(q question, zones record.ZoneSet) bool {
	for i := len(q.labelStarts) - 1; i >= 0; i-- {
		suffix := record.Name(q.name[q.labelStarts[i]:])
		if zones.Contains(suffix) {
			return true
		}
	}
	return false
}

// writeAnswer appends one answer record at pos and returns the offset
// past it. The owner name is always the two-byte compression pointer to
// the question name; QTYPE/QCLASS are copied verbatim from the question,
// TTL verbatim from the stored record, and RDATA verbatim from config —
// none of the four are interpreted here.
func writeAnswer(buf []byte, pos int, q question, ans record.Answer) int {
	wire.PutUint16(buf, pos, compressionPointer)
	pos += 2
	wire.PutUint16(buf, pos, q.qtype)
	pos += 2
	wire.PutUint16(buf, pos, q.qclass)
	pos += 2
	copy(buf[pos:pos+4], ans.TTL[:])
	pos += 4
	wire.PutUint16(buf, pos, uint16(len(ans.RData)))
	pos += 2
	pos += copy(buf[pos:], ans.RData)
	return pos
}
