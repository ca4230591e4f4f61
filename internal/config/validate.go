// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/hc4094-sniffer/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	type span struct {
		start int
		end   int
		unit  string
	}

	if cfg == nil || len(cfg.Sniffer.Units) == 0 {
		return fmt.Errorf("config: at least one unit required")
	}

	// ------------------------------------------------------------
	// UNIT / SOURCE VALIDATION
	// ------------------------------------------------------------

	ids := make(map[string]struct{})
	ports := make(map[string]string)

	for _, u := range cfg.Sniffer.Units {
		if u.ID == "" {
			return fmt.Errorf("unit id required")
		}
		if _, dup := ids[u.ID]; dup {
			return fmt.Errorf("unit %q: duplicate id", u.ID)
		}
		ids[u.ID] = struct{}{}

		if u.Source.Port == "" {
			return fmt.Errorf("unit %q: source.port required", u.ID)
		}
		if prev, taken := ports[u.Source.Port]; taken {
			return fmt.Errorf("unit %q: port %s already used by unit %q", u.ID, u.Source.Port, prev)
		}
		ports[u.Source.Port] = u.ID

		if u.Source.BaudRate < 0 || u.Source.TimeoutMs < 0 || u.Poll.IntervalMs < 0 {
			return fmt.Errorf("unit %q: baud_rate, timeout_ms and interval_ms must not be negative", u.ID)
		}
		if u.Source.Size == 0 {
			return fmt.Errorf("unit %q: source.size must be > 0", u.ID)
		}

		if len(u.Targets) == 0 {
			return fmt.Errorf("unit %q: at least one target required", u.ID)
		}
		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target endpoint required", u.ID)
			}
			if t.CoilAddress == nil && t.RegisterAddress == nil {
				return fmt.Errorf(
					"unit %q: target %s needs coil_address or register_address",
					u.ID,
					t.Endpoint,
				)
			}
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(u.Source.DeviceName); i++ {
			if u.Source.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"unit %q: device_name must contain ASCII characters only",
					u.ID,
				)
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	slotOwner := make(map[uint16]string)

	for _, u := range cfg.Sniffer.Units {
		if u.Source.StatusSlot == nil {
			continue
		}

		if cfg.Sniffer.StatusMemory.Endpoint == "" {
			return fmt.Errorf(
				"unit %q: status_slot is set but status_memory.endpoint is empty",
				u.ID,
			)
		}

		slot := *u.Source.StatusSlot
		if prev, exists := slotOwner[slot]; exists {
			return fmt.Errorf(
				"status_slot collision: slot=%d used by units %q and %q",
				slot,
				prev,
				u.ID,
			)
		}
		slotOwner[slot] = u.ID
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | unit_id | area
	spans := make(map[string][]span)

	check := func(u UnitConfig, t TargetConfig, area string, start, count int) error {
		end := start + count - 1
		if end > 0xFFFF {
			return fmt.Errorf(
				"unit %q: %s range %d-%d on %s exceeds the address space",
				u.ID, area, start, end, t.Endpoint,
			)
		}

		key := fmt.Sprintf("%s|%d|%s", t.Endpoint, t.UnitID, area)
		for _, s := range spans[key] {
			// overlap check (inclusive)
			if !(end < s.start || start > s.end) {
				return fmt.Errorf(
					"memory overlap: endpoint=%s unit_id=%d %s range=%d-%d overlaps with unit=%s range=%d-%d",
					t.Endpoint,
					t.UnitID,
					area,
					start,
					end,
					s.unit,
					s.start,
					s.end,
				)
			}
		}
		spans[key] = append(spans[key], span{start: start, end: end, unit: u.ID})
		return nil
	}

	statusTarget := TargetConfig{
		Endpoint: cfg.Sniffer.StatusMemory.Endpoint,
		UnitID:   cfg.Sniffer.StatusMemory.UnitID,
	}

	for _, u := range cfg.Sniffer.Units {
		if u.Source.StatusSlot != nil {
			base := int(*u.Source.StatusSlot) * status.SlotsPerDevice
			if err := check(u, statusTarget, "registers", base, status.SlotsPerDevice); err != nil {
				return err
			}
		}
		for _, t := range u.Targets {
			if t.CoilAddress != nil {
				if err := check(u, t, "coils", int(*t.CoilAddress), CoilCount(u.Source.Size)); err != nil {
					return err
				}
			}
			if t.RegisterAddress != nil {
				if err := check(u, t, "registers", int(*t.RegisterAddress), RegisterCount(u.Source.Size)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// CoilCount is the number of coils one snapshot of size bytes occupies.
func CoilCount(size uint8) int { return int(size) * 8 }

// RegisterCount is the number of holding registers one snapshot of size
// bytes occupies, two bytes per register.
func RegisterCount(size uint8) int { return (int(size) + 1) / 2 }
