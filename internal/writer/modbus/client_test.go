// internal/writer/modbus/client_test.go
package modbus

import (
	"bytes"
	"testing"
)

func TestPackBits_LSBFirst(t *testing.T) {
	bits := []bool{false, true, false, false, true, true, false, true, true}

	got := packBits(bits)
	if !bytes.Equal(got, []byte{0xB2, 0x01}) {
		t.Fatalf("packBits: got=% X want=B2 01", got)
	}
}

func TestPackRegisters_BigEndian(t *testing.T) {
	got := packRegisters([]uint16{0xB201, 0x0004})
	if !bytes.Equal(got, []byte{0xB2, 0x01, 0x00, 0x04}) {
		t.Fatalf("packRegisters: got=% X", got)
	}
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
