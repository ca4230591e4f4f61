// internal/shiftreg/register.go
package shiftreg

import "strings"

// Register is a fixed-capacity bit sequence that shifts new bits in at
// index 0. Bit i lives in byte i/8 at position i%8.
type Register struct {
	n    int    // active length in bits
	data []byte // backing storage, capacity fixed at construction
}

// NewRegister allocates a register able to hold capBits bits.
// The active length starts at zero.
func NewRegister(capBits int) *Register {
	if capBits < 0 {
		capBits = 0
	}
	return &Register{data: make([]byte, (capBits+7)/8)}
}

// Len returns the active length in bits.
func (r *Register) Len() int { return r.n }

// Cap returns the capacity in bits.
func (r *Register) Cap() int { return len(r.data) * 8 }

// SetLen changes the active length and clears every bit.
// n is clamped to [0, Cap()]. The applied length is returned.
func (r *Register) SetLen(n int) int {
	if n < 0 {
		n = 0
	}
	if n > r.Cap() {
		n = r.Cap()
	}
	r.n = n
	r.Clear()
	return n
}

// ShiftIn moves every active bit one index up, stores bit at index 0 and
// returns the bit that fell off the top. No-op on an empty register.
func (r *Register) ShiftIn(bit bool) (out bool) {
	if r.n == 0 {
		return false
	}

	out = r.Bit(r.n - 1)

	var carry byte
	if bit {
		carry = 1
	}

	nbytes := (r.n + 7) / 8
	for i := 0; i < nbytes; i++ {
		next := r.data[i] >> 7
		r.data[i] = r.data[i]<<1 | carry
		carry = next
	}

	// keep bits beyond the active length zero
	if rem := r.n % 8; rem != 0 {
		r.data[nbytes-1] &= byte(1<<rem) - 1
	}

	return out
}

// Bit reports the bit at index i. Out-of-range indices read as false.
func (r *Register) Bit(i int) bool {
	if i < 0 || i >= r.n {
		return false
	}
	return r.data[i/8]&(1<<uint(i%8)) != 0
}

// Bytes returns a copy of the active bits, packed LSB first.
func (r *Register) Bytes() []byte {
	out := make([]byte, (r.n+7)/8)
	copy(out, r.data)
	return out
}

// CopyFrom replaces the contents of r with src. A source longer than
// r's capacity is truncated to it.
func (r *Register) CopyFrom(src *Register) {
	r.Clear()
	r.n = src.n
	if r.n > r.Cap() {
		r.n = r.Cap()
	}
	copy(r.data, src.data[:(r.n+7)/8])
	if rem := r.n % 8; rem != 0 {
		r.data[(r.n-1)/8] &= byte(1<<rem) - 1
	}
}

// Clear zeroes the whole backing storage.
func (r *Register) Clear() {
	for i := range r.data {
		r.data[i] = 0
	}
}

// String renders the active bits index 0 first, e.g. "01001101".
func (r *Register) String() string {
	var b strings.Builder
	b.Grow(r.n)
	for i := 0; i < r.n; i++ {
		if r.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
