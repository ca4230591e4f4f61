// internal/writer/types.go
package writer

import "github.com/tamzrod/hc4094-sniffer/internal/poller"

// Target is one Modbus destination for a unit's snapshots.
type Target struct {
	Endpoint        string
	UnitID          uint8
	CoilAddress     *uint16 // nil: no coil image
	RegisterAddress *uint16 // nil: no byte image
}

// StatusPlan places a unit's status block in shared status memory.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one unit.
type Plan struct {
	UnitID  string
	Size    uint8
	Targets []Target
	Status  *StatusPlan // nil: status disabled
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.PollResult) error
}

// EndpointClient is the exact contract the writers use.
type EndpointClient interface {
	WriteCoils(unitID uint8, addr uint16, bits []bool) error
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
