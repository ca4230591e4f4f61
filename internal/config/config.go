// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Sniffer SnifferConfig `yaml:"sniffer"`
}

type SnifferConfig struct {
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Units        []UnitConfig       `yaml:"units"`
}

// ---- STATUS MEMORY ----

// StatusMemoryConfig is the shared Modbus memory holding device status blocks.
type StatusMemoryConfig struct {
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID      string         `yaml:"id"`
	Source  SourceConfig   `yaml:"source"`
	Targets []TargetConfig `yaml:"targets"`
	Poll    PollConfig     `yaml:"poll"`
}

// ---- SOURCE ----

// SourceConfig is one sniffer on a serial port.
type SourceConfig struct {
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baud_rate"`
	Size      uint8  `yaml:"size"` // register bytes (8 stages each)
	TimeoutMs int    `yaml:"timeout_ms"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// ---- TARGET ----

// TargetConfig is one Modbus TCP destination for snapshots.
// At least one of CoilAddress / RegisterAddress must be set.
type TargetConfig struct {
	Endpoint        string  `yaml:"endpoint"`
	UnitID          uint8   `yaml:"unit_id"`
	CoilAddress     *uint16 `yaml:"coil_address"`     // one coil per register stage
	RegisterAddress *uint16 `yaml:"register_address"` // raw bytes, two per register
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// Load reads and decodes a YAML config file. Unknown keys are rejected.
// The result is neither validated nor normalized.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return &cfg, nil
}
