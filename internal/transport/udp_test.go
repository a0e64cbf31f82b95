package transport

import (
	"net"
	"testing"
	"time"

	"github.com/dnsscience/authdns/internal/record"
)

func wireName(labels ...string) []byte {
	var b []byte
	for _, l := range labels {
		b = append(b, byte(len(l)))
		b = append(b, l...)
	}
	return append(b, 0)
}

func testConfig() *record.Config {
	cfg := record.NewConfig()
	apex := record.Name(wireName("example", "com"))
	cfg.Zones[apex] = struct{}{}
	cfg.Lookup.Insert(apex, 1, record.Answer{RData: []byte{1, 2, 3, 4}, TTL: [4]byte{0, 0, 1, 44}})
	return cfg
}

func TestServerAnswersOverLoopback(t *testing.T) {
	srv, err := Listen(Options{Addr: "127.0.0.1:0", Workers: 2, Config: testConfig()})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go srv.Serve()
	defer srv.Close()

	client, err := net.DialUDP("udp", nil, srv.conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	query := append([]byte{0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, wireName("example", "com")...)
	query = append(query, 0x00, 0x01, 0x00, 0x01)

	if _, err := client.Write(query); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply := make([]byte, 512)
	n, err := client.Read(reply)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if reply[0] != 0x12 || reply[1] != 0x34 {
		t.Errorf("transaction ID not preserved: % x", reply[:2])
	}
	if reply[3]&0x0F != 0 {
		t.Errorf("RCODE = %d, want NOERROR", reply[3]&0x0F)
	}
	if n < 12+len(query)-12 {
		t.Errorf("reply too short: %d bytes", n)
	}
}
