// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClient struct {
	data   []byte
	fail   bool
	closed bool
}

func (f *fakeClient) Read() ([]byte, error) {
	if f.fail {
		return nil, errors.New("link down")
	}
	return append([]byte(nil), f.data...), nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestPollOnce_Success(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Second, Size: 2}

	p, err := New(cfg, &fakeClient{data: []byte{0xB2, 0x01}}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if res.UnitID != "u1" || res.Size != 2 {
		t.Fatalf("unexpected result header: %+v", res)
	}

	bits := res.Bits()
	if len(bits) != 16 {
		t.Fatalf("expected 16 bits, got %d", len(bits))
	}
	// 0xB2 = 1011 0010, stage 0 is the LSB
	want := []bool{false, true, false, false, true, true, false, true, true}
	for i, w := range want {
		if bits[i] != w {
			t.Fatalf("bit %d: got=%v want=%v", i, bits[i], w)
		}
	}
}

func TestPollOnce_Failure(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Second, Size: 1}

	p, err := New(cfg, &fakeClient{fail: true}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce()
	if res.Err == nil {
		t.Fatalf("expected error, got nil")
	}
	if res.Data != nil {
		t.Fatalf("failed poll must not carry data")
	}
}

func TestPollOnce_LengthMismatch(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Second, Size: 4}

	p, err := New(cfg, &fakeClient{data: []byte{1, 2}}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected length error")
	}
}

func TestPollOnce_ReconnectsAfterFailure(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Second, Size: 1}

	broken := &fakeClient{fail: true}
	healthy := &fakeClient{data: []byte{0x0F}}
	dials := 0

	factory := func() (Client, error) {
		dials++
		return healthy, nil
	}

	p, err := New(cfg, broken, factory)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected first poll to fail")
	}
	if !broken.closed {
		t.Fatalf("failed client must be closed")
	}

	res := p.PollOnce()
	if res.Err != nil {
		t.Fatalf("second poll err=%v", res.Err)
	}
	if dials != 1 {
		t.Fatalf("expected one reconnect, got %d", dials)
	}
	if res.Data[0] != 0x0F {
		t.Fatalf("data: got=%02X", res.Data[0])
	}
}

func TestPollOnce_FactoryFailure(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Second, Size: 1}

	p, err := New(cfg, nil, func() (Client, error) {
		return nil, errors.New("no such port")
	})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Interval: time.Second}, &fakeClient{}, nil); err == nil {
		t.Fatalf("expected error for missing unit id")
	}
	if _, err := New(Config{UnitID: "u1"}, &fakeClient{}, nil); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := New(Config{UnitID: "u1", Interval: time.Second}, nil, nil); err == nil {
		t.Fatalf("expected error for missing client and factory")
	}
}

func TestRun_EmitsResults(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: 5 * time.Millisecond, Size: 1}

	p, err := New(cfg, &fakeClient{data: []byte{0x01}}, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan PollResult)
	go p.Run(ctx, out)

	select {
	case res := <-out:
		if res.Err != nil {
			t.Fatalf("result err=%v", res.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no result emitted")
	}
}

// slowClient holds every Read open long enough for a shutdown to land in
// the middle of it, and records reads that saw Close first.
type slowClient struct {
	delay       time.Duration
	closed      atomic.Bool
	readsOpen   atomic.Int32
	closeInRead atomic.Bool
}

func (c *slowClient) Read() ([]byte, error) {
	c.readsOpen.Add(1)
	defer c.readsOpen.Add(-1)
	time.Sleep(c.delay)
	if c.closed.Load() {
		return nil, errors.New("read on closed port")
	}
	return []byte{0x01}, nil
}

func (c *slowClient) Close() error {
	if c.readsOpen.Load() > 0 {
		c.closeInRead.Store(true)
	}
	c.closed.Store(true)
	return nil
}

func TestShutdown_CloseWaitsForInFlightPoll(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Millisecond, Size: 1}
	client := &slowClient{delay: 50 * time.Millisecond}

	p, err := New(cfg, client, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx, out)
	}()

	// let the first poll start, then shut down the way replicate does
	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := p.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	wg.Wait()

	if client.closeInRead.Load() {
		t.Fatalf("client closed while a read was in flight")
	}
	if !client.closed.Load() {
		t.Fatalf("client not closed")
	}
}

func TestRun_ClosesClientOnExit(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Hour, Size: 1}
	client := &fakeClient{data: []byte{0x01}}

	p, err := New(cfg, client, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx, make(chan PollResult))

	if !client.closed {
		t.Fatalf("Run must close its client on exit")
	}
}

func TestPollOnce_AfterCloseDoesNotReconnect(t *testing.T) {
	cfg := Config{UnitID: "u1", Interval: time.Second, Size: 1}
	dials := 0

	p, err := New(cfg, nil, func() (Client, error) {
		dials++
		return &fakeClient{data: []byte{0x01}}, nil
	})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if res := p.PollOnce(); res.Err == nil {
		t.Fatalf("expected error from a closed poller")
	}
	if dials != 0 {
		t.Fatalf("closed poller must not dial, got %d", dials)
	}
}
