// internal/shiftreg/emulator.go
package shiftreg

import (
	"fmt"
	"io"
	"sync"
)

const (
	// Capacity is the backing storage per buffer, in register bytes.
	Capacity = 256

	// MaxSize is the largest size a single request byte can carry.
	MaxSize = 255

	// StagesPerByte is the number of register stages one size unit covers.
	StagesPerByte = 8
)

// State is the emulator's position in the clock/strobe cycle.
type State uint8

const (
	StateIdle State = iota
	StateShifting
	StateCaptured
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShifting:
		return "shifting"
	case StateCaptured:
		return "captured"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Stats counts bus and link activity since construction.
type Stats struct {
	Edges    uint64
	Captures uint64
	Requests uint64 // snapshot transmissions, via Serve or TransmitSnapshot
}

// Emulator mirrors a 74HC4094-style shift register and its output latch.
//
// The sampling path (SampleClockEdge, ClockFall, CaptureOnStrobe) and the
// link path (Serve, TransmitSnapshot, SetSize) meet only at the
// live/snapshot pair, and every access to it holds mu.
type Emulator struct {
	mu sync.Mutex

	size int
	live *Register
	snap *Register

	changed bool // clock edge seen since the last capture
	state   State
	stats   Stats
}

// New builds an emulator tracking size register bytes.
// size is clamped to [0, MaxSize].
func New(size int) *Emulator {
	e := &Emulator{
		live: NewRegister(Capacity * StagesPerByte),
		snap: NewRegister(Capacity * StagesPerByte),
	}
	e.size = clampSize(size)
	e.live.SetLen(e.size * StagesPerByte)
	e.snap.SetLen(e.size * StagesPerByte)
	return e
}

// SampleClockEdge commits the data line level sampled on a rising clock
// edge. The register is left alone when the size is zero.
func (e *Emulator) SampleClockEdge(bit bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.live.ShiftIn(bit)
	e.changed = true
	e.state = StateShifting
	e.stats.Edges++
}

// ClockFall ends the current clock pulse.
func (e *Emulator) ClockFall() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateShifting {
		e.state = StateIdle
	}
}

// CaptureOnStrobe latches the live state into the snapshot if a clock edge
// arrived since the previous capture. It reports whether it did.
func (e *Emulator) CaptureOnStrobe() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.changed {
		return false
	}

	e.snap.CopyFrom(e.live)
	e.changed = false
	e.state = StateCaptured
	e.stats.Captures++
	return true
}

// SetSize installs a new size in register bytes and returns the applied
// value. A different size zeroes live state and snapshot; the same size
// leaves both untouched.
func (e *Emulator) SetSize(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.setSizeLocked(n)
}

func (e *Emulator) setSizeLocked(n int) int {
	n = clampSize(n)
	if n == e.size {
		return n
	}
	e.size = n
	e.live.SetLen(n * StagesPerByte)
	e.snap.SetLen(n * StagesPerByte)
	e.changed = false
	e.state = StateIdle
	return n
}

// TransmitSnapshot writes the current snapshot, one byte per size unit.
// A pending capture counts as consumed once the copy has been taken.
func (e *Emulator) TransmitSnapshot(w io.Writer) (int, error) {
	e.mu.Lock()
	out := e.takeSnapshotLocked()
	e.mu.Unlock()

	return w.Write(out)
}

// Serve answers one host request: the snapshot as it stood before the
// request is transmitted, then the requested size is in effect.
// The copy and the size change share one critical section; the write
// happens outside it.
func (e *Emulator) Serve(req byte, w io.Writer) error {
	e.mu.Lock()
	out := e.takeSnapshotLocked()
	e.setSizeLocked(int(req))
	e.mu.Unlock()

	if len(out) == 0 {
		return nil
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("shiftreg: transmit %d bytes: %w", len(out), err)
	}
	return nil
}

func (e *Emulator) takeSnapshotLocked() []byte {
	out := e.snap.Bytes()
	if e.state == StateCaptured {
		e.state = StateIdle
	}
	e.stats.Requests++
	return out
}

// Size returns the configured size in register bytes.
func (e *Emulator) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

// Snapshot returns a copy of the output latch.
func (e *Emulator) Snapshot() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Bytes()
}

// Live returns a copy of the live shift register.
func (e *Emulator) Live() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live.Bytes()
}

// State returns the current position in the clock/strobe cycle.
func (e *Emulator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns a copy of the activity counters.
func (e *Emulator) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func clampSize(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}
