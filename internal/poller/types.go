// internal/poller/types.go
package poller

import "time"

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	// Size is the requested register size in bytes.
	Size uint8

	// Data holds exactly Size bytes on success, packed LSB first:
	// register stage i is bit i%8 of Data[i/8].
	Data []byte
	Err  error // non-nil means the poll cycle failed
}

// Bits unpacks Data into one bool per register stage, stage 0 first.
func (r PollResult) Bits() []bool {
	count := len(r.Data) * 8
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		out[i] = r.Data[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}
