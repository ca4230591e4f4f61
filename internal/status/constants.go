// internal/status/constants.go
package status

// Device status block layout. Host tooling reads these offsets directly,
// so they are not configurable.

// SlotsPerDevice is the fixed number of holding registers per sniffer.
const SlotsPerDevice = 20

// ---- LIVE SLOTS ----

const (
	SlotHealthCode     = 0 // Health* code
	SlotLastErrorCode  = 1 // 0 when healthy
	SlotSecondsInError = 2 // saturates at 65535
	SlotRegisterSize   = 3 // configured shift register size in bytes
	SlotSnapshotCount  = 4 // successful snapshots, wraps at 65536
)

// Slots 5–11 are reserved and written as zero.
const (
	SlotReservedStart = 5
	SlotReservedEnd   = 11
)

// ---- DEVICE NAME ----

// The device name always sits at the end of the block, two ASCII
// characters per register, big-endian.
const (
	SlotDeviceNameStart = 12
	SlotDeviceNameSlots = 8
	SlotDeviceNameEnd   = SlotDeviceNameStart + SlotDeviceNameSlots - 1
	DeviceNameMaxChars  = SlotDeviceNameSlots * 2
)

// ---- HEALTH CODES ----

const (
	HealthUnknown uint16 = 0 // boot, nothing polled yet
	HealthOK      uint16 = 1
	HealthError   uint16 = 2
)
