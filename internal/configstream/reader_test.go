package configstream

import (
	"bytes"
	"testing"

	"github.com/dnsscience/authdns/internal/record"
	"github.com/dnsscience/authdns/internal/wire"
)

func headerChunk(numRecords uint64) []byte {
	chunk := make([]byte, chunkSize)
	copy(chunk[0:8], headerSignature[:])
	wire.PutUint64(chunk, 0x008, 1)
	wire.PutUint32(chunk, 0x010, supportedMajor)
	wire.PutUint32(chunk, 0x014, 7) // minor version, tolerated regardless of value
	wire.PutUint64(chunk, 0x3F8, numRecords)
	return chunk
}

func recordChunk(ttl [4]byte, class, typ uint16, name, rdata []byte) []byte {
	chunk := make([]byte, chunkSize)
	copy(chunk[0:8], recordSignature[:])
	wire.PutUint64(chunk, 0x008, 1)
	wire.PutUint32(chunk, 0x010, supportedMajor)
	wire.PutUint32(chunk, 0x014, 0)
	copy(chunk[0x0F4:0x0F8], ttl[:])
	wire.PutUint16(chunk, 0x0F8, class)
	wire.PutUint16(chunk, 0x0FA, typ)
	chunk[0x0FD] = byte(len(name))
	wire.PutUint16(chunk, 0x0FE, uint16(len(rdata)))
	copy(chunk[0x100:], name)
	copy(chunk[0x200:], rdata)
	return chunk
}

func wireName(labels ...string) []byte {
	var b []byte
	for _, l := range labels {
		b = append(b, byte(len(l)))
		b = append(b, l...)
	}
	return append(b, 0)
}

func TestLoadSingleARecord(t *testing.T) {
	name := wireName("example", "com")
	var stream bytes.Buffer
	stream.Write(headerChunk(1))
	stream.Write(recordChunk([4]byte{0, 0, 1, 44}, 1, 1, name, []byte{1, 2, 3, 4}))

	cfg, err := Load(&stream)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rrset, ok := cfg.Lookup.Lookup(record.Name(name), 1)
	if !ok {
		t.Fatal("expected name to be present")
	}
	if len(rrset) != 1 || !bytes.Equal(rrset[0].RData, []byte{1, 2, 3, 4}) {
		t.Errorf("rrset = %v, want one record with rdata 01 02 03 04", rrset)
	}
	if rrset[0].TTL != ([4]byte{0, 0, 1, 44}) {
		t.Errorf("TTL = %v, want [0 0 1 44]", rrset[0].TTL)
	}
}

func TestLoadSOAPopulatesZones(t *testing.T) {
	name := wireName("example", "com")
	var stream bytes.Buffer
	stream.Write(headerChunk(1))
	stream.Write(recordChunk([4]byte{0, 0, 0, 60}, 1, 6, name, []byte("soa-rdata")))

	cfg, err := Load(&stream)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Zones.Contains(record.Name(name)) {
		t.Error("expected SOA owner name to be a zone apex")
	}
}

func TestLoadPreservesInsertionOrderAcrossChunks(t *testing.T) {
	name := wireName("test", "local")
	var stream bytes.Buffer
	stream.Write(headerChunk(2))
	stream.Write(recordChunk([4]byte{}, 1, 1, name, []byte{1, 1, 1, 1}))
	stream.Write(recordChunk([4]byte{}, 1, 1, name, []byte{1, 1, 1, 2}))

	cfg, err := Load(&stream)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rrset, _ := cfg.Lookup.Lookup(record.Name(name), 1)
	if len(rrset) != 2 {
		t.Fatalf("len(rrset) = %d, want 2", len(rrset))
	}
	if !bytes.Equal(rrset[0].RData, []byte{1, 1, 1, 1}) || !bytes.Equal(rrset[1].RData, []byte{1, 1, 1, 2}) {
		t.Errorf("insertion order not preserved: %v", rrset)
	}
}

func TestLoadRejectsBadSignature(t *testing.T) {
	chunk := headerChunk(0)
	chunk[0] = 'X'
	_, err := Load(bytes.NewReader(chunk))
	if err == nil {
		t.Fatal("expected error for bad signature")
	}
}

func TestLoadRejectsMajorVersionMismatch(t *testing.T) {
	chunk := headerChunk(0)
	wire.PutUint32(chunk, 0x010, supportedMajor+1)
	_, err := Load(bytes.NewReader(chunk))
	if err == nil {
		t.Fatal("expected error for major version mismatch")
	}
}

func TestLoadToleratesMinorVersionMismatch(t *testing.T) {
	chunk := headerChunk(0)
	wire.PutUint32(chunk, 0x014, 99)
	_, err := Load(bytes.NewReader(chunk))
	if err != nil {
		t.Fatalf("Load failed on minor version mismatch: %v", err)
	}
}

func TestLoadRejectsShortStream(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(headerChunk(2))
	stream.Write(recordChunk([4]byte{}, 1, 1, wireName("only", "one"), nil))

	_, err := Load(&stream)
	if err == nil {
		t.Fatal("expected error for short stream missing declared record chunks")
	}
}

func TestLoadIgnoresTrailingBytes(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(headerChunk(0))
	stream.Write(make([]byte, 500)) // trailing garbage past the declared chunks

	_, err := Load(&stream)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func TestDomainLengthZeroMeans256(t *testing.T) {
	if got := domainLength(0); got != 256 {
		t.Errorf("domainLength(0) = %d, want 256", got)
	}
	if got := domainLength(10); got != 10 {
		t.Errorf("domainLength(10) = %d, want 10", got)
	}
}
