// cmd/hc4094sniffer/replicate.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/hc4094-sniffer/internal/config"
	"github.com/tamzrod/hc4094-sniffer/internal/poller"
	"github.com/tamzrod/hc4094-sniffer/internal/status"
	"github.com/tamzrod/hc4094-sniffer/internal/writer"
)

func newReplicateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replicate CONFIG",
		Short: "Poll sniffers and replicate snapshots into Modbus TCP memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger(cmd)
			if err != nil {
				return err
			}

			// --------------------
			// Load + validate config
			// --------------------

			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
			config.Normalize(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// units stop before anything they use is closed, also when a
			// later unit fails to build
			ctx, cancel := context.WithCancel(ctx)
			var units unitGroup
			defer func() {
				cancel()
				units.shutdown()
			}()

			// --------------------
			// Build per-unit pipelines
			// --------------------

			for _, unit := range cfg.Sniffer.Units {
				ulog := log.With("unit", unit.ID)

				// ---- poller ----
				p, closePoller, err := poller.Build(unit)
				if err != nil {
					return fmt.Errorf("poller build failed (unit=%s): %w", unit.ID, err)
				}
				units.onClose(closePoller)

				// ---- writer plan ----
				plan, err := writer.BuildPlan(unit, cfg.Sniffer.StatusMemory)
				if err != nil {
					return fmt.Errorf("writer plan failed (unit=%s): %w", unit.ID, err)
				}

				// ---- writer clients (DATA + STATUS) ----
				clients, closeWriters, err := writer.BuildEndpointClients(
					plan,
					time.Duration(unit.Source.TimeoutMs)*time.Millisecond,
				)
				if err != nil {
					return fmt.Errorf("writer clients failed (unit=%s): %w", unit.ID, err)
				}
				units.onClose(closeWriters)

				statusWriter, _ := writer.NewDeviceStatusWriter(plan, clients)

				// ---- channel between poller and orchestrator ----
				out := make(chan poller.PollResult)

				o := &orchestrator{
					log:     ulog,
					data:    writer.New(plan, clients),
					status:  statusWriter,
					tracker: status.NewTracker(unit.Source.Size),
				}

				secTicker := time.NewTicker(time.Second)
				defer secTicker.Stop()

				units.goRun(func() { o.run(ctx, out, secTicker.C) })
				units.goRun(func() { p.Run(ctx, out) })

				ulog.Info("unit started",
					"port", unit.Source.Port,
					"size", unit.Source.Size,
					"targets", len(plan.Targets),
					"status", plan.Status != nil,
				)
			}

			<-ctx.Done()
			log.Info("shutting down")
			return nil
		},
	}
}

// unitGroup tracks the per-unit goroutines and the resources they use.
type unitGroup struct {
	wg      sync.WaitGroup
	closers []func() error
}

func (g *unitGroup) goRun(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

func (g *unitGroup) onClose(fn func() error) {
	g.closers = append(g.closers, fn)
}

// shutdown waits for every goroutine, then runs the closers in reverse
// registration order. The caller cancels the goroutines' context first.
func (g *unitGroup) shutdown() {
	g.wg.Wait()
	for i := len(g.closers) - 1; i >= 0; i-- {
		_ = g.closers[i]()
	}
	g.closers = nil
}

// orchestrator owns one unit's status state and routes poll results to
// the data and status writers.
type orchestrator struct {
	log     *slog.Logger
	data    writer.Writer
	status  writer.StatusWriter // nil: status disabled
	tracker *status.Tracker
}

func (o *orchestrator) run(ctx context.Context, in <-chan poller.PollResult, tick <-chan time.Time) {
	// Full block write on start (identity re-assert) if enabled.
	o.writeStatus("start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			// --- data delivery ---
			if res.Err != nil {
				o.log.Warn("poll failed", "err", res.Err)
			} else if err := o.data.Write(res); err != nil {
				o.log.Error("writer error", "err", err)
			}

			// --- status update (device-level truth) ---
			if o.tracker.Observe(res.Err) {
				o.writeStatus("update")
			}

		case <-tick:
			// seconds_in_error advances on the 1Hz ticker only
			if o.tracker.Tick() {
				o.writeStatus("tick")
			}
		}
	}
}

func (o *orchestrator) writeStatus(reason string) {
	if o.status == nil {
		return
	}
	if err := o.status.WriteStatus(o.tracker.Snapshot()); err != nil {
		o.log.Error("status write failed", "reason", reason, "err", err)
	}
}
