// Command zonedump reads a binary DNSTREAM/RECORD chunk stream and prints
// a human-readable listing of every record it contains. It is an offline
// diagnostic tool; unlike the query handler, it uses miekg/dns to turn
// numeric record types back into their mnemonic names.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/dnsscience/authdns/internal/configstream"
	"github.com/dnsscience/authdns/internal/record"
	"github.com/miekg/dns"
)

func main() {
	flag.Parse()

	var in *os.File = os.Stdin
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening stream: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	cfg, err := configstream.Load(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading stream: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ZONES: %d\n", len(cfg.Zones))
	for name := range cfg.Zones {
		fmt.Printf("  %s\n", printableName(name))
	}
	fmt.Println("RECORDS:")

	type row struct {
		name string
		typ  uint16
		ttl  uint32
		data string
	}
	var rows []row
	for _, name := range cfg.Lookup.Names() {
		for _, typ := range cfg.Lookup.Types(name) {
			rrset, _ := cfg.Lookup.Lookup(name, typ)
			for _, ans := range rrset {
				rows = append(rows, row{
					name: printableName(name),
					typ:  uint16(typ),
					ttl:  ttlToUint32(ans.TTL),
					data: fmt.Sprintf("% x", ans.RData),
				})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].name != rows[j].name {
			return rows[i].name < rows[j].name
		}
		return rows[i].typ < rows[j].typ
	})

	for _, r := range rows {
		fmt.Printf("  %s %d IN %s %s\n", r.name, r.ttl, typeName(r.typ), r.data)
	}
}

// printableName renders a wire-format name in the usual dotted form for
// display. It does not attempt to un-escape or re-escape special
// characters — this tool is a diagnostic, not a round-trippable format.
func printableName(name record.Name) string {
	b := []byte(name)
	if len(b) == 0 {
		return "."
	}
	var out []byte
	i := 0
	for i < len(b) {
		l := int(b[i])
		if l == 0 {
			break
		}
		if i > 0 {
			out = append(out, '.')
		}
		out = append(out, b[i+1:i+1+l]...)
		i += l + 1
	}
	return string(out) + "."
}

func ttlToUint32(ttl [4]byte) uint32 {
	return uint32(ttl[0])<<24 | uint32(ttl[1])<<16 | uint32(ttl[2])<<8 | uint32(ttl[3])
}

func typeName(code uint16) string {
	if name, ok := dns.TypeToString[code]; ok {
		return name
	}
	return fmt.Sprintf("TYPE%d", code)
}
