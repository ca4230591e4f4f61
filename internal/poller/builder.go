// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/hc4094-sniffer/internal/config"
	pserial "github.com/tamzrod/hc4094-sniffer/internal/poller/serial"
)

// Build constructs a Poller and wires sniffer client lifecycle.
// Connection is reused while healthy.
// On link failure, Poller discards the client and uses factory on a future tick.
func Build(u cfg.UnitConfig) (*Poller, func() error, error) {
	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		c, err := pserial.New(pserial.Config{
			Port:     u.Source.Port,
			BaudRate: u.Source.BaudRate,
			Size:     u.Source.Size,
			Timeout:  time.Duration(u.Source.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// initial client (fail fast at startup)
	client, err := factory()
	if err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			UnitID:   u.ID,
			Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
			Size:     u.Source.Size,
		},
		client,
		factory,
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return p, p.Close, nil
}
