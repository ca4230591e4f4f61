// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/hc4094-sniffer/internal/poller"
)

// Modbus per-request limits (write multiple coils / registers).
const (
	maxCoilsPerWrite     = 1968
	maxRegistersPerWrite = 123
)

type writerImpl struct {
	plan    Plan
	clients map[string]EndpointClient
}

func New(plan Plan, clients map[string]EndpointClient) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
	}
}

// Write delivers one snapshot to every target. Failed polls are not
// delivered: targets keep the last good image.
func (w *writerImpl) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	var errs []string

	bits := res.Bits()
	regs := packRegisters(res.Data)

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		if tgt.CoilAddress != nil {
			if err := writeCoilsChunked(cli, tgt.UnitID, *tgt.CoilAddress, bits); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: ep=%s unit=%d coils addr=%d err=%v",
					tgt.Endpoint, tgt.UnitID, *tgt.CoilAddress, err,
				))
			}
		}

		if tgt.RegisterAddress != nil {
			if err := writeRegistersChunked(cli, tgt.UnitID, *tgt.RegisterAddress, regs); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: ep=%s unit=%d registers addr=%d err=%v",
					tgt.Endpoint, tgt.UnitID, *tgt.RegisterAddress, err,
				))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

func writeCoilsChunked(cli EndpointClient, unitID uint8, addr uint16, bits []bool) error {
	for off := 0; off < len(bits); off += maxCoilsPerWrite {
		end := off + maxCoilsPerWrite
		if end > len(bits) {
			end = len(bits)
		}
		if err := cli.WriteCoils(unitID, addr+uint16(off), bits[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func writeRegistersChunked(cli EndpointClient, unitID uint8, addr uint16, regs []uint16) error {
	for off := 0; off < len(regs); off += maxRegistersPerWrite {
		end := off + maxRegistersPerWrite
		if end > len(regs) {
			end = len(regs)
		}
		if err := cli.WriteRegisters(unitID, addr+uint16(off), regs[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// packRegisters folds snapshot bytes two per register, big-endian.
// An odd trailing byte lands in the high half; the low half is zero.
func packRegisters(data []byte) []uint16 {
	out := make([]uint16, (len(data)+1)/2)
	for i, b := range data {
		if i%2 == 0 {
			out[i/2] |= uint16(b) << 8
		} else {
			out[i/2] |= uint16(b)
		}
	}
	return out
}
