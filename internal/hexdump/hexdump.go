// internal/hexdump/hexdump.go
package hexdump

import (
	"bufio"
	"fmt"
	"io"
)

const bytesPerLine = 16

// Dump writes mem in the sniffer's classic layout:
//
//	0x0000:  B200 0000 0000 0000 0000 0000 0000 0000  ................
//
// Bytes are grouped in pairs, the ASCII column shows printable
// characters, and the dump ends with a blank line.
func Dump(w io.Writer, mem []byte) error {
	bw := bufio.NewWriter(w)

	ascii := make([]byte, 0, bytesPerLine)
	for i, c := range mem {
		if i%bytesPerLine == 0 && i != 0 {
			fmt.Fprintf(bw, "  %s\n", ascii)
			ascii = ascii[:0]
		}
		if i%bytesPerLine == 0 {
			fmt.Fprintf(bw, "0x%04X:  ", i)
		}
		fmt.Fprintf(bw, "%02X", c)
		if i%2 != 0 {
			bw.WriteByte(' ')
		}
		ascii = append(ascii, printable(c))
	}
	fmt.Fprintf(bw, "  %s\n\n", ascii)

	return bw.Flush()
}

func printable(c byte) byte {
	if c >= 32 && c <= 126 {
		return c
	}
	return '.'
}
