// cmd/hc4094sniffer/root.go
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tamzrod/hc4094-sniffer/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func (o *rootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  o.logLevel,
		Format: o.logFormat,
		Output: cmd.ErrOrStderr(),
	})
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "hc4094sniffer",
		Short: "74HC4094 shift register bus sniffer",
		Long: `Passively mirrors a 74HC4094-style serial-in/parallel-out shift register
and reads the mirrored state over a serial link.

Examples:
  hc4094sniffer emulate --port /dev/ttyAMA0 --clock GPIO17 --data GPIO27 --strobe GPIO22
  hc4094sniffer read /dev/ttyUSB0 8
  hc4094sniffer replicate config.yaml`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text|json)")

	root.AddCommand(
		newEmulateCommand(opts),
		newReadCommand(opts),
		newReplicateCommand(opts),
	)

	return root
}
