// cmd/hc4094sniffer/emulate.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/tamzrod/hc4094-sniffer/internal/link"
	"github.com/tamzrod/hc4094-sniffer/internal/sampler"
	"github.com/tamzrod/hc4094-sniffer/internal/shiftreg"
)

type emulateOptions struct {
	port        string
	baud        int
	readTimeout time.Duration
	clock       string
	data        string
	strobe      string
	size        int
}

func newEmulateCommand(root *rootOptions) *cobra.Command {
	opts := &emulateOptions{}

	cmd := &cobra.Command{
		Use:   "emulate",
		Short: "Sniff the bus on GPIO lines and serve snapshots on a serial port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := root.logger(cmd)
			if err != nil {
				return err
			}

			if _, err := host.Init(); err != nil {
				return fmt.Errorf("emulate: gpio host init: %w", err)
			}

			lines, err := lookupLines(opts.clock, opts.data, opts.strobe)
			if err != nil {
				return err
			}

			emu := shiftreg.New(opts.size)

			s, err := sampler.New(lines, emu)
			if err != nil {
				return err
			}

			port, err := link.Open(link.PortConfig{
				Address:  opts.port,
				BaudRate: opts.baud,
				Timeout:  opts.readTimeout,
			})
			if err != nil {
				return fmt.Errorf("emulate: open %s: %w", opts.port, err)
			}
			defer port.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("emulator started",
				"port", opts.port,
				"clock", opts.clock,
				"data", opts.data,
				"strobe", opts.strobe,
				"size", emu.Size(),
			)

			go func() {
				if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("sampler stopped", "err", err)
				}
			}()

			err = link.NewServer(emu, log).Serve(ctx, port)

			st := emu.Stats()
			log.Info("emulator stopped",
				"edges", st.Edges,
				"captures", st.Captures,
				"requests", st.Requests,
			)

			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.port, "port", "", "serial port to serve snapshots on")
	f.IntVar(&opts.baud, "baud", link.DefaultBaudRate, "serial baud rate")
	f.DurationVar(&opts.readTimeout, "read-timeout", 100*time.Millisecond, "serial read timeout")
	f.StringVar(&opts.clock, "clock", "", "GPIO name of the CP line")
	f.StringVar(&opts.data, "data", "", "GPIO name of the D line")
	f.StringVar(&opts.strobe, "strobe", "", "GPIO name of the STR line")
	f.IntVar(&opts.size, "size", 0, "initial register size in bytes (0-255)")
	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("clock")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("strobe")

	return cmd
}

func lookupLines(clock, data, strobe string) (sampler.Lines, error) {
	find := func(role, name string) (gpio.PinIn, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("emulate: %s line: no GPIO named %q", role, name)
		}
		return p, nil
	}

	var lines sampler.Lines
	var err error
	if lines.Clock, err = find("clock", clock); err != nil {
		return lines, err
	}
	if lines.Data, err = find("data", data); err != nil {
		return lines, err
	}
	if lines.Strobe, err = find("strobe", strobe); err != nil {
		return lines, err
	}
	return lines, nil
}
