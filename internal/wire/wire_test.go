package wire

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	b := make([]byte, 4)
	PutUint16(b, 1, 0xC0FE)
	if got := Uint16(b, 1); got != 0xC0FE {
		t.Errorf("Uint16 = %x, want %x", got, 0xC0FE)
	}
	if b[1] != 0xC0 || b[2] != 0xFE {
		t.Errorf("bytes = %x %x, want C0 FE (big-endian)", b[1], b[2])
	}
}

func TestUint32RoundTrip(t *testing.T) {
	b := make([]byte, 6)
	PutUint32(b, 1, 0x01020304)
	if got := Uint32(b, 1); got != 0x01020304 {
		t.Errorf("Uint32 = %x, want %x", got, 0x01020304)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	for i, w := range want {
		if b[1+i] != w {
			t.Errorf("byte %d = %x, want %x", i, b[1+i], w)
		}
	}
}

func TestUint64RoundTrip(t *testing.T) {
	b := make([]byte, 10)
	PutUint64(b, 1, 0x0102030405060708)
	if got := Uint64(b, 1); got != 0x0102030405060708 {
		t.Errorf("Uint64 = %x, want %x", got, 0x0102030405060708)
	}
}
