// cmd/hc4094sniffer/read.go
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/hc4094-sniffer/internal/hexdump"
	"github.com/tamzrod/hc4094-sniffer/internal/link"
	pserial "github.com/tamzrod/hc4094-sniffer/internal/poller/serial"
)

func newReadCommand(root *rootOptions) *cobra.Command {
	var (
		baud    int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "read TTY SHIFTREG_SIZE",
		Short: "Read one snapshot and hex dump it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger(cmd)
			if err != nil {
				return err
			}

			size, err := strconv.ParseUint(args[1], 10, 8)
			if err != nil {
				return fmt.Errorf("read: SHIFTREG_SIZE must be 0-255: %w", err)
			}

			c, err := pserial.New(pserial.Config{
				Port:     args[0],
				BaudRate: baud,
				Size:     uint8(size),
				Timeout:  timeout,
			})
			if err != nil {
				return err
			}
			defer c.Close()

			data, err := c.Read()
			if err != nil {
				return err
			}
			log.Debug("snapshot read", "port", args[0], "bytes", len(data))

			return hexdump.Dump(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().IntVar(&baud, "baud", link.DefaultBaudRate, "serial baud rate")
	cmd.Flags().DurationVar(&timeout, "timeout", 100*time.Millisecond, "reply timeout")

	return cmd
}
