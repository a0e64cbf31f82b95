// Package zonefile is a human-authoring format for zones: a YAML document
// naming an owner and, under it, a list of records by type, TTL, and
// rdata. Compile turns one into a *record.Config the same shape
// internal/configstream produces, so cmd/zonecompile can either emit the
// binary chunk stream directly or hand the Config straight to a test
// server.
//
// This is offline tooling only — nothing here runs on the query path.
// Trimmed of DNSSEC, templates, and the apply-to-multiple-names
// mechanism, none of which an authoritative-only data model has room for.
package zonefile

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"

	"github.com/dnsscience/authdns/internal/record"
	"github.com/miekg/dns"
	"gopkg.in/yaml.v3"
)

// File is the top-level YAML document shape.
type File struct {
	Zone    string                   `yaml:"zone"`
	Records map[string][]RecordEntry `yaml:"records"`
}

// RecordEntry is one record under an owner name. Exactly one of Address,
// Text, or Raw should be set, matching the record's Type.
type RecordEntry struct {
	Type    string `yaml:"type"`
	TTL     uint32 `yaml:"ttl"`
	Address string `yaml:"address,omitempty"` // A, AAAA
	Text    string `yaml:"text,omitempty"`    // TXT
	Raw     string `yaml:"raw,omitempty"`     // hex-encoded rdata, any type
}

// Parse decodes a zonefile document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse zonefile YAML: %w", err)
	}
	if f.Zone == "" {
		return nil, fmt.Errorf("zonefile missing required \"zone\" field")
	}
	return &f, nil
}

// Compile builds a *record.Config from a parsed File. Every record type
// name is resolved through miekg/dns's type table so authors can write
// "A", "AAAA", "SOA", "MX" and so on without this package maintaining its
// own copy of the registry.
func Compile(f *File) (*record.Config, error) {
	cfg := record.NewConfig()

	for owner, entries := range f.Records {
		wireOwner, err := encodeName(qualify(owner, f.Zone))
		if err != nil {
			return nil, fmt.Errorf("owner %q: %w", owner, err)
		}

		for i, entry := range entries {
			typ, ok := dns.StringToType[strings.ToUpper(entry.Type)]
			if !ok {
				return nil, fmt.Errorf("owner %q, record %d: unknown type %q", owner, i, entry.Type)
			}

			rdata, err := encodeRData(entry)
			if err != nil {
				return nil, fmt.Errorf("owner %q, record %d (%s): %w", owner, i, entry.Type, err)
			}
			if len(rdata) > 512 {
				return nil, fmt.Errorf("owner %q, record %d (%s): rdata %d bytes exceeds 512", owner, i, entry.Type, len(rdata))
			}

			var ttl [4]byte
			ttl[0] = byte(entry.TTL >> 24)
			ttl[1] = byte(entry.TTL >> 16)
			ttl[2] = byte(entry.TTL >> 8)
			ttl[3] = byte(entry.TTL)

			cfg.Lookup.Insert(wireOwner, record.Type(typ), record.Answer{RData: rdata, TTL: ttl})
			if record.Type(typ) == record.SOA {
				cfg.Zones[wireOwner] = struct{}{}
			}
		}
	}

	return cfg, nil
}

// qualify appends the zone apex to a bare owner name ("@" or "" means the
// apex itself); a name already ending in "." is left alone.
func qualify(owner, zone string) string {
	if owner == "@" || owner == "" {
		return zone
	}
	if strings.HasSuffix(owner, ".") {
		return owner
	}
	return owner + "." + zone
}

// encodeName turns a dotted name into DNS wire format: length-prefixed
// labels terminated by a zero octet. It does not handle escaped dots —
// every label in a zonefile is expected to be a plain DNS label.
func encodeName(name string) (record.Name, error) {
	name = strings.TrimSuffix(name, ".")
	var b []byte
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			if len(label) == 0 || len(label) > 63 {
				return "", fmt.Errorf("label %q in %q has invalid length", label, name)
			}
			b = append(b, byte(len(label)))
			b = append(b, label...)
		}
	}
	b = append(b, 0)
	if len(b) > record.MaxNameLen {
		return "", fmt.Errorf("name %q encodes to %d bytes, exceeds %d", name, len(b), record.MaxNameLen)
	}
	return record.Name(b), nil
}

// encodeRData produces the verbatim rdata bytes this server will splice
// into replies. A, AAAA, and TXT have friendly encoders; every other type
// is authored as a raw hex string, since RDATA
// is opaque to everything except the config author.
func encodeRData(entry RecordEntry) ([]byte, error) {
	switch strings.ToUpper(entry.Type) {
	case "A":
		ip := net.ParseIP(entry.Address).To4()
		if ip == nil {
			return nil, fmt.Errorf("invalid IPv4 address %q", entry.Address)
		}
		return ip, nil
	case "AAAA":
		ip := net.ParseIP(entry.Address).To16()
		if ip == nil {
			return nil, fmt.Errorf("invalid IPv6 address %q", entry.Address)
		}
		return ip, nil
	case "TXT":
		if len(entry.Text) > 255 {
			return nil, fmt.Errorf("TXT segment %q exceeds 255 bytes", entry.Text)
		}
		return append([]byte{byte(len(entry.Text))}, entry.Text...), nil
	default:
		if entry.Raw == "" {
			return nil, fmt.Errorf("type %s requires \"raw\" hex-encoded rdata", entry.Type)
		}
		rdata, err := hex.DecodeString(entry.Raw)
		if err != nil {
			return nil, fmt.Errorf("invalid hex in \"raw\": %w", err)
		}
		return rdata, nil
	}
}
