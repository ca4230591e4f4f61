// internal/hexdump/hexdump_test.go
package hexdump

import (
	"bytes"
	"testing"
)

func TestDump_SingleLine(t *testing.T) {
	var out bytes.Buffer
	if err := Dump(&out, []byte{0xB2, 0x00, 'A', 'b', 0x7F}); err != nil {
		t.Fatalf("Dump err=%v", err)
	}

	want := "0x0000:  B200 4162 7F  ..Ab.\n\n"
	if out.String() != want {
		t.Fatalf("got=%q want=%q", out.String(), want)
	}
}

func TestDump_WrapsAtSixteenBytes(t *testing.T) {
	mem := make([]byte, 18)
	for i := range mem {
		mem[i] = byte('0' + i%10)
	}

	var out bytes.Buffer
	if err := Dump(&out, mem); err != nil {
		t.Fatalf("Dump err=%v", err)
	}

	want := "0x0000:  3031 3233 3435 3637 3839 3031 3233 3435   0123456789012345\n" +
		"0x0010:  3637   67\n\n"
	if out.String() != want {
		t.Fatalf("got=%q want=%q", out.String(), want)
	}
}

func TestDump_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := Dump(&out, nil); err != nil {
		t.Fatalf("Dump err=%v", err)
	}
	if out.String() != "  \n\n" {
		t.Fatalf("got=%q", out.String())
	}
}
