// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/hc4094-sniffer/internal/config"
	wmodbus "github.com/tamzrod/hc4094-sniffer/internal/writer/modbus"
)

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed Validate and Normalize.
func BuildPlan(u cfg.UnitConfig, sm cfg.StatusMemoryConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}

	plan := Plan{
		UnitID: u.ID,
		Size:   u.Source.Size,
	}

	for _, t := range u.Targets {
		plan.Targets = append(plan.Targets, Target{
			Endpoint:        t.Endpoint,
			UnitID:          t.UnitID,
			CoilAddress:     t.CoilAddress,
			RegisterAddress: t.RegisterAddress,
		})
	}

	if u.Source.StatusSlot != nil {
		plan.Status = &StatusPlan{
			Endpoint:   sm.Endpoint,
			UnitID:     sm.UnitID,
			BaseSlot:   *u.Source.StatusSlot,
			DeviceName: u.Source.DeviceName,
		}
	}

	return plan, nil
}

// BuildEndpointClients creates one TCP client per unique endpoint,
// status memory included.
func BuildEndpointClients(plan Plan, timeout time.Duration) (map[string]EndpointClient, func() error, error) {
	var unique []string
	seen := map[string]struct{}{}
	add := func(ep string) {
		if _, ok := seen[ep]; ok || ep == "" {
			return
		}
		seen[ep] = struct{}{}
		unique = append(unique, ep)
	}

	for _, t := range plan.Targets {
		add(t.Endpoint)
	}
	if plan.Status != nil {
		add(plan.Status.Endpoint)
	}

	clients := make(map[string]EndpointClient)
	var closers []func() error

	for _, endpoint := range unique {
		c, err := wmodbus.NewClient(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
