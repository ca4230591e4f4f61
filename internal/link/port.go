// internal/link/port.go
package link

import (
	"errors"
	"time"

	"github.com/goburrow/serial"
)

// DefaultBaudRate matches the sniffer firmware UART setup.
const DefaultBaudRate = 115200

// PortConfig is the minimal serial config for both ends of the link.
// Framing is fixed at 8 data bits, no parity, 1 stop bit.
type PortConfig struct {
	Address  string
	BaudRate int
	Timeout  time.Duration
}

// Open opens the serial port described by cfg.
func Open(cfg PortConfig) (serial.Port, error) {
	if cfg.Address == "" {
		return nil, errors.New("link: serial port address required")
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	return serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  cfg.Timeout,
	})
}

// IsTimeout reports whether err is a read timeout on an otherwise
// healthy link.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, serial.ErrTimeout) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
