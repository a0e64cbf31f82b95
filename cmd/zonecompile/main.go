// Command zonecompile reads a zonefile YAML document and writes the
// equivalent binary DNSTREAM/RECORD chunk stream authdnsd expects on
// stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dnsscience/authdns/internal/record"
	"github.com/dnsscience/authdns/internal/wire"
	"github.com/dnsscience/authdns/internal/zonefile"
)

const chunkSize = 1024

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: zonecompile <zonefile.yaml> > out.stream\n")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading zonefile: %v\n", err)
		os.Exit(1)
	}

	f, err := zonefile.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parsing zonefile: %v\n", err)
		os.Exit(1)
	}
	cfg, err := zonefile.Compile(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compiling zonefile: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	if err := writeStream(w, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "writing stream: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "flushing stream: %v\n", err)
		os.Exit(1)
	}
}

// chunkRecord is one (name, type, answer) triple the config table holds.
// Table iteration order isn't meaningful to the wire protocol, but
// writeStream sorts names and types so compiled output is reproducible
// between runs of the same input.
type chunkRecord struct {
	name record.Name
	typ  record.Type
	ans  record.Answer
}

func writeStream(w io.Writer, cfg *record.Config) error {
	var records []chunkRecord
	names := cfg.Lookup.Names()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		types := cfg.Lookup.Types(name)
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, typ := range types {
			rrset, _ := cfg.Lookup.Lookup(name, typ)
			for _, ans := range rrset {
				records = append(records, chunkRecord{name: name, typ: typ, ans: ans})
			}
		}
	}

	header := make([]byte, chunkSize)
	copy(header[0x000:], "DNSTREAM")
	wire.PutUint64(header, 0x008, 1)
	wire.PutUint32(header, 0x010, 1) // major
	wire.PutUint32(header, 0x014, 0) // minor
	wire.PutUint64(header, 0x3F8, uint64(len(records)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		chunk := make([]byte, chunkSize)
		copy(chunk[0x000:], "RECORD\x00\x00")
		wire.PutUint64(chunk, 0x008, 1)
		wire.PutUint32(chunk, 0x010, 1)
		wire.PutUint32(chunk, 0x014, 0)
		copy(chunk[0x0F4:0x0F8], r.ans.TTL[:])
		wire.PutUint16(chunk, 0x0F8, 1) // class IN
		wire.PutUint16(chunk, 0x0FA, uint16(r.typ))

		name := []byte(r.name)
		domainLen := len(name)
		if domainLen == 256 {
			chunk[0x0FD] = 0 // zero-means-256, see configstream.domainLength
		} else {
			chunk[0x0FD] = byte(domainLen)
		}
		wire.PutUint16(chunk, 0x0FE, uint16(len(r.ans.RData)))
		copy(chunk[0x100:], name)
		copy(chunk[0x200:], r.ans.RData)

		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}
