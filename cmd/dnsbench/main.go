// Command dnsbench is a UDP load generator for exercising authdnsd.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dnsscience/authdns/internal/random"
	"github.com/miekg/dns"
)

var (
	target   = flag.String("target", "127.53.53.53:53", "authdnsd address")
	workers  = flag.Int("workers", 10, "number of concurrent workers")
	domain   = flag.String("domain", "example.com.", "domain to query")
	qtype    = flag.String("type", "A", "record type to query")
	duration = flag.Duration("duration", 10*time.Second, "test duration")
)

func main() {
	flag.Parse()

	rrType, ok := dns.StringToType[*qtype]
	if !ok {
		log.Fatalf("unknown record type %q", *qtype)
	}

	log.Printf("Starting benchmark against %s with %d workers for %v", *target, *workers, *duration)

	var count, errs uint64
	start := time.Now()
	done := make(chan struct{})

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(*domain), rrType)
	req, err := m.Pack()
	if err != nil {
		log.Fatalf("packing query: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conn, err := net.Dial("udp", *target)
			if err != nil {
				log.Printf("dial error: %v", err)
				return
			}
			defer conn.Close()

			buf := make([]byte, 65535)
			packet := make([]byte, len(req))
			for {
				select {
				case <-done:
					return
				default:
				}

				copy(packet, req)
				id := random.TransactionID()
				packet[0] = byte(id >> 8)
				packet[1] = byte(id)

				if _, err := conn.Write(packet); err != nil {
					atomic.AddUint64(&errs, 1)
					continue
				}
				conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
				if _, err := conn.Read(buf); err != nil {
					atomic.AddUint64(&errs, 1)
					continue
				}
				atomic.AddUint64(&count, 1)
			}
		}()
	}

	time.Sleep(*duration)
	close(done)
	wg.Wait()

	elapsed := time.Since(start)
	qps := float64(count) / elapsed.Seconds()

	fmt.Printf("\n--- Results ---\n")
	fmt.Printf("Total Requests: %d\n", count)
	fmt.Printf("Total Errors:   %d\n", errs)
	fmt.Printf("Duration:       %.2fs\n", elapsed.Seconds())
	fmt.Printf("QPS:            %.2f\n", qps)
}
