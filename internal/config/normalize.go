// internal/config/normalize.go
package config

const (
	DefaultBaudRate   = 115200
	DefaultTimeoutMs  = 500
	DefaultIntervalMs = 1000

	// DeviceNameMaxChars mirrors the status block name width.
	DeviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for ui := range cfg.Sniffer.Units {
		u := &cfg.Sniffer.Units[ui]

		// ------------------------------------------------------------
		// SOURCE DEFAULTS
		// ------------------------------------------------------------

		if u.Source.BaudRate == 0 {
			u.Source.BaudRate = DefaultBaudRate
		}
		if u.Source.TimeoutMs == 0 {
			u.Source.TimeoutMs = DefaultTimeoutMs
		}
		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultIntervalMs
		}

		// ------------------------------------------------------------
		// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
		// ------------------------------------------------------------

		if u.Source.StatusSlot == nil {
			continue
		}

		if u.Source.DeviceName == "" {
			u.Source.DeviceName = u.ID
		}

		// ASCII already validated; truncate to the block width
		if len(u.Source.DeviceName) > DeviceNameMaxChars {
			u.Source.DeviceName = u.Source.DeviceName[:DeviceNameMaxChars]
		}
	}
}
