// Package configstream turns a fixed-chunk binary stream into a populated
// *record.Config. It is run exactly once, at process startup, by a single
// goroutine; nothing here is touched again once the resulting Config is
// handed to the worker pool.
package configstream

import (
	"errors"
	"fmt"
	"io"

	"github.com/dnsscience/authdns/internal/record"
	"github.com/dnsscience/authdns/internal/wire"
)

const chunkSize = 1024

var (
	headerSignature = [8]byte{'D', 'N', 'S', 'T', 'R', 'E', 'A', 'M'}
	recordSignature = [8]byte{'R', 'E', 'C', 'O', 'R', 'D', 0, 0}
)

// supportedMajor is the only config-stream major version this reader
// accepts. The minor version is never checked: strict major-match is
// required, and any minor version is accepted.
const supportedMajor = 1

// ErrConfigInvalid wraps every fatal condition the config reader can hit:
// bad signature, bad section length, unsupported major version, or a
// stream that runs out of chunks before num_records says it should.
var ErrConfigInvalid = errors.New("config stream invalid")

// Load reads one header chunk followed by its declared number of record
// chunks from r and returns the populated Config. Any failure is wrapped
// in ErrConfigInvalid and is fatal to the caller — the server shell is
// expected to abort startup on a non-nil error, never to retry or to run
// with a partially loaded Config.
func Load(r io.Reader) (*record.Config, error) {
	header, err := readChunk(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading header chunk: %v", ErrConfigInvalid, err)
	}
	if err := validateSection(header, headerSignature); err != nil {
		return nil, fmt.Errorf("%w: header chunk: %v", ErrConfigInvalid, err)
	}

	numRecords := wire.Uint64(header, 0x3F8)
	cfg := record.NewConfig()

	for i := uint64(0); i < numRecords; i++ {
		chunk, err := readChunk(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading record chunk %d of %d: %v", ErrConfigInvalid, i, numRecords, err)
		}
		if err := validateSection(chunk, recordSignature); err != nil {
			return nil, fmt.Errorf("%w: record chunk %d: %v", ErrConfigInvalid, i, err)
		}
		if err := applyRecord(cfg, chunk); err != nil {
			return nil, fmt.Errorf("%w: record chunk %d: %v", ErrConfigInvalid, i, err)
		}
	}

	return cfg, nil
}

// readChunk reads exactly chunkSize bytes, treating a short read (including
// a clean EOF before any bytes) as a fatal error. Trailing bytes in the
// stream past the chunks Load actually consumes are never read and are
// ignored.
func readChunk(r io.Reader) ([]byte, error) {
	buf := make([]byte, chunkSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func validateSection(chunk []byte, signature [8]byte) error {
	if !bytesEqual(chunk[0:8], signature[:]) {
		return fmt.Errorf("bad signature %q", chunk[0:8])
	}
	if sectionLen := wire.Uint64(chunk, 0x008); sectionLen != 1 {
		return fmt.Errorf("section length %d, want 1", sectionLen)
	}
	major := wire.Uint32(chunk, 0x010)
	if major != supportedMajor {
		return fmt.Errorf("major version %d, want %d", major, supportedMajor)
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// applyRecord extracts (ttl, class, type, wireDomain, rdata) from a record
// chunk and inserts it into cfg. The class field is neither read nor
// validated: every record this server serves answers with QCLASS copied
// from the question rather than from config.
func applyRecord(cfg *record.Config, chunk []byte) error {
	var ttl [4]byte
	copy(ttl[:], chunk[0x0F4:0x0F8])
	typ := record.Type(wire.Uint16(chunk, 0x0FA))

	domainLen := domainLength(chunk[0x0FD])
	if domainLen > record.MaxNameLen {
		return fmt.Errorf("wire-domain length %d exceeds %d", domainLen, record.MaxNameLen)
	}
	if 0x100+domainLen > 0x200 {
		return fmt.Errorf("wire-domain length %d overflows its buffer", domainLen)
	}
	wireDomain := record.Name(chunk[0x100 : 0x100+domainLen])
	if err := validateWireName(wireDomain); err != nil {
		return err
	}

	dataLen := int(wire.Uint16(chunk, 0x0FE))
	if dataLen > 512 {
		return fmt.Errorf("rdata length %d exceeds 512", dataLen)
	}
	rdata := make([]byte, dataLen)
	copy(rdata, chunk[0x200:0x200+dataLen])

	cfg.Lookup.Insert(wireDomain, typ, record.Answer{RData: rdata, TTL: ttl})
	if typ == record.SOA {
		cfg.Zones[wireDomain] = struct{}{}
	}
	return nil
}

// domainLength applies the byte-0-means-256 convention needed for the
// wire_domain_len field to express its documented 1..=256 range in a
// single byte (a plain byte can only hold 0..255). See DESIGN.md.
func domainLength(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

// validateWireName checks the structural invariant every name stored in
// lookup or zones must hold: it ends in a zero terminator and every label
// is 1..63 bytes, with no compression pointers.
func validateWireName(name record.Name) error {
	b := []byte(name)
	if len(b) == 0 || b[len(b)-1] != 0 {
		return fmt.Errorf("wire name %q missing terminator", b)
	}
	i := 0
	for i < len(b) {
		l := int(b[i])
		if l == 0 {
			if i != len(b)-1 {
				return fmt.Errorf("wire name %q has embedded terminator", b)
			}
			return nil
		}
		if l > 63 {
			return fmt.Errorf("wire name %q has label length %d > 63", b, l)
		}
		i += l + 1
	}
	return fmt.Errorf("wire name %q not terminated", b)
}
