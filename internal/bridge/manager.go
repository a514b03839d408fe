// Package bridge is the console-side half of padlink: it receives snapshot
// datagrams and drives one virtual device per controller slot through the
// hdls SDK.
package bridge

import (
	"log/slog"
	"sync"

	"github.com/padlink/padlink/hdls"
	"github.com/padlink/padlink/protocol"
)

// slot is the per-index state machine. The handle is non-zero exactly while
// the slot is attached; there is no separate attached flag to drift out of
// sync with it.
type slot struct {
	kind   protocol.ControllerType
	handle hdls.Handle
	state  hdls.State
}

func (s *slot) attached() bool { return s.handle.Valid() }

// SlotInfo is an immutable copy of one slot's state, as handed to consumers.
type SlotInfo struct {
	Type  protocol.ControllerType
	State hdls.State
}

// Manager owns the eight controller slots and sequences every attach,
// state-update and detach against the SDK. All slot access, including the
// consumer-facing Snapshot, goes through one mutex; the lock is held across
// the apply of a whole packet so a partially-applied snapshot is never
// observed, and never across any network wait.
type Manager struct {
	sdk    hdls.SDK
	logger *slog.Logger

	mu    sync.Mutex
	slots [protocol.SlotCount]slot
	stale bool
}

func NewManager(sdk hdls.SDK, logger *slog.Logger) *Manager {
	return &Manager{sdk: sdk, logger: logger}
}

// Apply drives every slot from the packet's subrecords. Subrecords are
// applied independently; a failure on one slot never blocks the others.
func (m *Manager) Apply(p *protocol.Packet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = false
	for i := range p.Subrecords {
		m.applySlot(i, &p.Subrecords[i])
	}
}

// applySlot runs one slot's transition. Caller holds m.mu.
func (m *Manager) applySlot(i int, sub *protocol.Subrecord) {
	s := &m.slots[i]

	switch {
	case !s.attached() && sub.Type.Valid():
		m.attach(i, sub.Type)
	case s.attached() && !sub.Type.Valid():
		m.detach(i)
	case s.attached() && sub.Type != s.kind:
		// In-place type changes are handled as detach-then-reattach: the
		// packet is a full snapshot, so a changed type is an explicit
		// reconfiguration and waiting for an intervening None could wedge
		// the slot if that datagram were lost.
		m.detach(i)
		m.attach(i, sub.Type)
	}

	if !s.attached() {
		return
	}
	s.state = hdls.State{
		Battery: hdls.BatteryFull,
		Buttons: sub.Buttons,
		AnalogL: hdls.StickPos{X: sub.LeftX, Y: sub.LeftY},
		AnalogR: hdls.StickPos{X: sub.RightX, Y: sub.RightY},
	}
	if err := m.sdk.SetState(s.handle, s.state); err != nil {
		m.logger.Error("failed to update virtual device state", "slot", i, "error", err)
	}
}

// attach brings slot i up as the given type. On failure the slot stays
// detached and the error is logged; the next packet naming the type retries
// naturally.
func (m *Manager) attach(i int, kind protocol.ControllerType) {
	handle, err := m.sdk.Attach(deviceConfig(kind))
	if err != nil {
		m.logger.Error("failed to attach virtual device", "slot", i, "type", kind.String(), "error", err)
		return
	}
	m.slots[i] = slot{kind: kind, handle: handle}
	m.logger.Info("virtual device attached", "slot", i, "type", kind.String())
}

// detach zeroes the reported state, detaches, and invalidates the handle.
// On a detach error the slot is still marked detached locally; the console
// may keep a zombie device, which is a known SDK limitation we cannot
// recover from by retrying against the now-unreliable handle.
func (m *Manager) detach(i int) {
	s := &m.slots[i]
	kind := s.kind
	_ = m.sdk.SetState(s.handle, hdls.State{})
	if err := m.sdk.Detach(s.handle); err != nil {
		m.logger.Error("failed to detach virtual device", "slot", i, "type", kind.String(), "error", err)
	} else {
		m.logger.Info("virtual device detached", "slot", i, "type", kind.String())
	}
	m.slots[i] = slot{}
}

// DetachAll detaches every attached slot. The bridge calls this during
// teardown, strictly after the receive loop has stopped.
func (m *Manager) DetachAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].attached() {
			m.detach(i)
		}
	}
}

// MarkStale flags the in-memory state as older than the receive window.
// Slots stay attached; staleness only tells consumers the last snapshot is
// no longer fresh.
func (m *Manager) MarkStale() {
	m.mu.Lock()
	m.stale = true
	m.mu.Unlock()
}

// Snapshot returns an immutable copy of all slot states plus the stale flag,
// taken under the apply lock so no mid-transition slot is ever visible.
func (m *Manager) Snapshot() ([protocol.SlotCount]SlotInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [protocol.SlotCount]SlotInfo
	for i := range m.slots {
		out[i] = SlotInfo{Type: m.slots[i].kind, State: m.slots[i].state}
	}
	return out, m.stale
}

// deviceConfig returns the per-type attach configuration: the fixed shell
// colors, Bluetooth transport, and grip colors for full-size controllers.
func deviceConfig(kind protocol.ControllerType) hdls.DeviceConfig {
	cfg := hdls.DeviceConfig{
		Kind:        kind,
		Interface:   hdls.InterfaceBluetooth,
		BodyColor:   hdls.Opaque(255, 153, 204),
		ButtonColor: hdls.Opaque(0, 0, 0),
	}
	if kind == protocol.TypeProController {
		cfg.LeftGripColor = hdls.Opaque(255, 0, 127)
		cfg.RightGripColor = hdls.Opaque(255, 0, 127)
	}
	return cfg
}
