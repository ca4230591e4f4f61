// internal/status/tracker.go
package status

import "errors"

// Tracker owns the status of one unit. It is not safe for concurrent use;
// the unit's orchestrator goroutine is its only caller.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown for a register of size bytes.
func NewTracker(size uint8) *Tracker {
	return &Tracker{snap: Snapshot{
		Health:       HealthUnknown,
		RegisterSize: uint16(size),
	}}
}

func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe folds one poll outcome into the status and reports whether
// anything the writer cares about changed.
func (t *Tracker) Observe(err error) bool {
	prev := t.snap

	if err == nil {
		t.snap.Health = HealthOK
		t.snap.LastErrorCode = 0
		t.snap.SecondsInError = 0
		t.snap.SnapshotCount++
	} else {
		t.snap.Health = HealthError
		t.snap.LastErrorCode = ErrorCode(err)
		// seconds_in_error only moves on Tick
	}

	return prev != t.snap
}

// Tick advances seconds_in_error once per second while not OK.
// It saturates instead of wrapping.
func (t *Tracker) Tick() bool {
	if t.snap.Health == HealthOK {
		return false
	}
	if t.snap.SecondsInError == 0xFFFF {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return 1
}
