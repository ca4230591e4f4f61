// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Client abstracts the sniffer link operations the poller needs.
type Client interface {
	Read() ([]byte, error)
	Close() error
}

// Factory opens a fresh client. ONE attempt per call.
type Factory func() (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration
	Size     uint8
}

// Poller is a dumb, clock-driven reader.
// mu serialises poll cycles against Close.
type Poller struct {
	cfg     Config
	factory Factory

	mu     sync.Mutex
	client Client
	closed bool
}

// New creates a poller with immutable config.
// client may be nil if factory is set; the first poll then connects.
func New(cfg Config, client Client, factory Factory) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory}, nil
}

// PollOnce performs exactly one poll cycle.
// On any failure the client is discarded (if a factory can replace it)
// and the next cycle reconnects, which also resynchronises the size.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     time.Now(),
		Size:   p.cfg.Size,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		res.Err = errors.New("poller: closed")
		return res
	}

	if p.client == nil {
		c, err := p.factory()
		if err != nil {
			res.Err = fmt.Errorf("poller: connect: %w", err)
			return res
		}
		p.client = c
	}

	data, err := p.client.Read()
	if err != nil {
		res.Err = err
		if p.factory != nil {
			_ = p.client.Close()
			p.client = nil
		}
		return res
	}

	if len(data) != int(p.cfg.Size) {
		res.Err = fmt.Errorf("poller: snapshot length %d, want %d", len(data), p.cfg.Size)
		return res
	}

	res.Data = data
	return res
}

// Close waits for an in-flight poll, then releases the current client.
// Later polls fail without reconnecting.
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
