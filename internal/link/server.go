// internal/link/server.go
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tamzrod/hc4094-sniffer/internal/shiftreg"
)

// Server answers host size requests with emulator snapshots.
type Server struct {
	emu *shiftreg.Emulator
	log *slog.Logger
}

// NewServer wires a server to emu. A nil logger discards output.
func NewServer(emu *shiftreg.Emulator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{emu: emu, log: log}
}

// Serve reads request bytes from rw one at a time and writes each
// response back before reading the next. Read timeouts only give ctx a
// chance to be checked. EOF ends the session without error.
func (s *Server) Serve(ctx context.Context, rw io.ReadWriter) error {
	var req [1]byte

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := rw.Read(req[:])
		if n == 1 {
			prev := s.emu.Size()
			if werr := s.emu.Serve(req[0], rw); werr != nil {
				return fmt.Errorf("link: respond: %w", werr)
			}
			s.log.Debug("request served",
				"sent_bytes", prev,
				"size", s.emu.Size(),
			)
			if prev != int(req[0]) {
				s.log.Info("size changed", "from", prev, "to", int(req[0]))
			}
		}

		switch {
		case err == nil:
		case IsTimeout(err):
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("link: read request: %w", err)
		}
	}
}
