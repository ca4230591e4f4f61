// internal/writer/device_status_writer_test.go
package writer

import (
	"testing"

	"github.com/tamzrod/hc4094-sniffer/internal/status"
)

func statusPlan() Plan {
	return Plan{
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   2,
			DeviceName: "PANEL-A",
		},
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}

	sw, enabled := NewDeviceStatusWriter(statusPlan(), map[string]EndpointClient{"status-endpoint": cli})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK, RegisterSize: 8}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}
	if cli.writes[0].addr != 2*status.SlotsPerDevice {
		t.Fatalf("block base: got=%d want=%d", cli.writes[0].addr, 2*status.SlotsPerDevice)
	}

	expectedName := status.EncodeDeviceName("PANEL-A")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedName[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedName[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 3, RegisterSize: 8}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	// health + last_error, one register each
	if len(cli.writes) != 3 {
		t.Fatalf("expected 2 incremental writes, got %d total", len(cli.writes))
	}
	for _, w := range cli.writes[1:] {
		if w.qty != 1 {
			t.Fatalf("incremental write must be one register, got %d", w.qty)
		}
	}
	if cli.writes[1].addr != 2*status.SlotsPerDevice+status.SlotHealthCode {
		t.Fatalf("health slot addr: got=%d", cli.writes[1].addr)
	}
	if cli.writes[2].addr != 2*status.SlotsPerDevice+status.SlotLastErrorCode {
		t.Fatalf("last error slot addr: got=%d", cli.writes[2].addr)
	}
}

func TestStatusWriter_FailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}

	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]EndpointClient{"status-endpoint": cli})

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatalf("expected incremental failure")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err != nil {
		t.Fatalf("re-assert failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestStatusWriter_DisabledWithoutPlan(t *testing.T) {
	if _, enabled := NewDeviceStatusWriter(Plan{}, nil); enabled {
		t.Fatalf("status must be disabled without a status plan")
	}
}

func TestStatusWriter_MissingClient(t *testing.T) {
	sw, _ := NewDeviceStatusWriter(statusPlan(), map[string]EndpointClient{})
	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("expected missing client error")
	}
}
