// internal/sampler/sampler.go
package sampler

import (
	"context"
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/tamzrod/hc4094-sniffer/internal/shiftreg"
)

// Lines are the three bus signals the sampler watches.
type Lines struct {
	Clock  gpio.PinIn // CP, edge-sampled
	Data   gpio.PinIn // D, level read on the clock rising edge
	Strobe gpio.PinIn // STR, level-triggered capture
}

// Sampler polls the bus lines and drives an Emulator.
// It is a dumb edge detector: no debouncing, no timing checks.
type Sampler struct {
	lines Lines
	emu   *shiftreg.Emulator

	clockHigh bool
}

// New configures the lines as floating inputs and returns a sampler.
func New(lines Lines, emu *shiftreg.Emulator) (*Sampler, error) {
	if lines.Clock == nil || lines.Data == nil || lines.Strobe == nil {
		return nil, errors.New("sampler: clock, data and strobe lines required")
	}
	if emu == nil {
		return nil, errors.New("sampler: emulator required")
	}

	for _, p := range []gpio.PinIn{lines.Clock, lines.Data, lines.Strobe} {
		if err := p.In(gpio.Float, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("sampler: configure %s: %w", p, err)
		}
	}

	return &Sampler{lines: lines, emu: emu}, nil
}

// Step performs exactly one poll of the bus.
//
// Rising clock: the data level is shifted in. Falling clock: the pulse
// ends. Strobe is only honoured between pulses.
func (s *Sampler) Step() {
	cp := s.lines.Clock.Read()

	switch {
	case cp == gpio.High && !s.clockHigh:
		s.emu.SampleClockEdge(s.lines.Data.Read() == gpio.High)
		s.clockHigh = true
	case cp == gpio.Low && s.clockHigh:
		s.emu.ClockFall()
		s.clockHigh = false
	}

	if !s.clockHigh && s.lines.Strobe.Read() == gpio.High {
		s.emu.CaptureOnStrobe()
	}
}

// Run polls continuously until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
	}
}
