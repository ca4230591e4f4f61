// internal/poller/serial/client.go
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tamzrod/hc4094-sniffer/internal/link"
)

// Error codes surfaced to the device status block.
const (
	CodeTransport uint16 = 2 // port open / write / read failure
	CodeLength    uint16 = 3 // reply shorter than the requested size
)

// Error is a sniffer link failure carrying a status code.
type Error struct {
	Code uint16
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sniffer %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode exposes the code to the status tracker.
func (e *Error) ErrorCode() uint16 { return e.Code }

// Client implements poller.Client against the sniffer serial protocol:
// one size byte out, size snapshot bytes back.
type Client struct {
	port io.ReadWriteCloser
	size uint8
}

// Config is minimal transport config.
type Config struct {
	Port     string
	BaudRate int
	Size     uint8
	Timeout  time.Duration
}

// New opens the serial port and synchronises the device size.
func New(cfg Config) (*Client, error) {
	if cfg.Port == "" {
		return nil, errors.New("sniffer client: port required")
	}

	p, err := link.Open(link.PortConfig{
		Address:  cfg.Port,
		BaudRate: cfg.BaudRate,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, &Error{Code: CodeTransport, Op: "open", Err: err}
	}

	c := NewWithPort(p, cfg.Size)
	if err := c.Reset(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return c, nil
}

// NewWithPort wraps an already open port. The port must time out reads
// rather than block forever, or Reset never returns.
func NewWithPort(port io.ReadWriteCloser, size uint8) *Client {
	return &Client{port: port, size: size}
}

// Size returns the register size in bytes this client requests.
func (c *Client) Size() uint8 { return c.size }

// Close closes the serial port.
func (c *Client) Close() error {
	if c == nil || c.port == nil {
		return nil
	}
	return c.port.Close()
}

// Reset sends the configured size and throws the reply away.
// The device answers with whatever size it had before, so the first
// reply after connecting cannot be trusted.
func (c *Client) Reset() error {
	if err := c.request(); err != nil {
		return err
	}

	var buf [64]byte
	for {
		_, err := c.port.Read(buf[:])
		if err == nil {
			continue
		}
		if link.IsTimeout(err) || errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Code: CodeTransport, Op: "reset", Err: err}
	}
}

// Read requests one snapshot and returns exactly Size() bytes.
func (c *Client) Read() ([]byte, error) {
	if err := c.request(); err != nil {
		return nil, err
	}

	data := make([]byte, c.size)
	n, err := io.ReadFull(c.port, data)
	if err != nil {
		if n < len(data) && (link.IsTimeout(err) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)) {
			return nil, &Error{
				Code: CodeLength,
				Op:   "read",
				Err:  fmt.Errorf("unexpected data length: got %d, want %d", n, len(data)),
			}
		}
		return nil, &Error{Code: CodeTransport, Op: "read", Err: err}
	}

	return data, nil
}

func (c *Client) request() error {
	if c == nil || c.port == nil {
		return &Error{Code: CodeTransport, Op: "write", Err: errors.New("not connected")}
	}
	if _, err := c.port.Write([]byte{c.size}); err != nil {
		return &Error{Code: CodeTransport, Op: "write", Err: err}
	}
	return nil
}
