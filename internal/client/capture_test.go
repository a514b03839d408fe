package client

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padlink/padlink/internal/client/input"
	"github.com/padlink/padlink/internal/log"
	"github.com/padlink/padlink/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLoopHarness wires a Loop to a fake source and a loopback UDP listener
// so every Tick's packet can be read back.
func newLoopHarness(t *testing.T, source *fakeSource) (*Loop, *net.UDPConn) {
	t.Helper()
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	tx, err := NewTransmitter(listener.LocalAddr().String(), testLogger(), log.NewRaw(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Close() })

	var slotTypes [protocol.SlotCount]protocol.ControllerType
	for i := range slotTypes {
		slotTypes[i] = protocol.TypeProController
	}
	return NewLoop(source, NewRegistry(), tx, slotTypes, testLogger()), listener
}

func recvPacket(t *testing.T, listener *net.UDPConn) *protocol.Packet {
	t.Helper()
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 2048)
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	pkt, err := protocol.Decode(buf[:n])
	require.NoError(t, err)
	return pkt
}

func holdGesture(p *fakePad, held bool) {
	p.buttons[input.ButtonLeftTrigger] = held
	p.buttons[input.ButtonRightTrigger] = held
}

func TestTickUnassignedPadsSendNone(t *testing.T) {
	source := &fakeSource{pads: []input.Pad{newFakePad("pad-a")}}
	loop, listener := newLoopHarness(t, source)

	loop.Tick()
	pkt := recvPacket(t, listener)
	assert.Equal(t, uint16(0), pkt.Count)
	for i, sub := range pkt.Subrecords {
		assert.Equal(t, protocol.TypeNone, sub.Type, "slot %d", i)
	}
}

func TestTickGestureAssignsFirstSlot(t *testing.T) {
	pad := newFakePad("pad-a")
	source := &fakeSource{pads: []input.Pad{pad}}
	loop, listener := newLoopHarness(t, source)

	holdGesture(pad, true)
	loop.Tick()

	pkt := recvPacket(t, listener)
	assert.Equal(t, uint16(1), pkt.Count)
	sub := pkt.Subrecords[0]
	assert.Equal(t, protocol.TypeProController, sub.Type)
	// The gesture's triggers are part of the same snapshot.
	assert.Equal(t, protocol.ButtonZL|protocol.ButtonZR, sub.Buttons)
}

func TestTickGestureIsEdgeTriggered(t *testing.T) {
	pad := newFakePad("pad-a")
	source := &fakeSource{pads: []input.Pad{pad}}
	loop, listener := newLoopHarness(t, source)

	holdGesture(pad, true)
	loop.Tick()
	recvPacket(t, listener)

	// The pad is assigned now; holding the triggers must not re-assign it
	// anywhere else even after its slot is vacated and re-claimed.
	loop.Tick()
	recvPacket(t, listener)
	slot, ok := loop.registry.Lookup("pad-a")
	require.True(t, ok)
	assert.Equal(t, 0, slot)
}

func TestTickSecondPadTakesNextSlot(t *testing.T) {
	padA, padB := newFakePad("pad-a"), newFakePad("pad-b")
	source := &fakeSource{pads: []input.Pad{padA, padB}}
	loop, listener := newLoopHarness(t, source)

	holdGesture(padA, true)
	loop.Tick()
	recvPacket(t, listener)

	holdGesture(padB, true)
	loop.Tick()
	pkt := recvPacket(t, listener)

	assert.Equal(t, uint16(2), pkt.Count)
	assert.Equal(t, protocol.TypeProController, pkt.Subrecords[0].Type)
	assert.Equal(t, protocol.TypeProController, pkt.Subrecords[1].Type)
}

func TestTickDisconnectReportsNoneButKeepsSlot(t *testing.T) {
	pad := newFakePad("pad-a")
	source := &fakeSource{pads: []input.Pad{pad}}
	loop, listener := newLoopHarness(t, source)

	holdGesture(pad, true)
	loop.Tick()
	recvPacket(t, listener)

	source.pads = nil
	loop.Tick()
	pkt := recvPacket(t, listener)
	assert.Equal(t, protocol.TypeNone, pkt.Subrecords[0].Type)

	slot, ok := loop.registry.Lookup("pad-a")
	require.True(t, ok, "disconnection must not free the slot")
	assert.Equal(t, 0, slot)
}

func TestTickReconnectResumesWithoutGesture(t *testing.T) {
	pad := newFakePad("pad-a")
	source := &fakeSource{pads: []input.Pad{pad}}
	loop, listener := newLoopHarness(t, source)

	holdGesture(pad, true)
	loop.Tick()
	recvPacket(t, listener)
	holdGesture(pad, false)

	source.pads = nil
	loop.Tick()
	recvPacket(t, listener)

	pad.buttons[input.ButtonEast] = true
	source.pads = []input.Pad{pad}
	loop.Tick()
	pkt := recvPacket(t, listener)

	sub := pkt.Subrecords[0]
	assert.Equal(t, protocol.TypeProController, sub.Type)
	assert.Equal(t, protocol.ButtonA, sub.Buttons)
}

// While a slot sits vacant another controller may claim it; the packet then
// reports the new occupant and the old controller needs a fresh gesture.
func TestTickClaimWhileVacant(t *testing.T) {
	padA, padB := newFakePad("pad-a"), newFakePad("pad-b")
	source := &fakeSource{pads: []input.Pad{padA}}
	loop, listener := newLoopHarness(t, source)

	holdGesture(padA, true)
	loop.Tick()
	recvPacket(t, listener)

	source.pads = []input.Pad{padB}
	loop.Tick()
	recvPacket(t, listener)

	holdGesture(padB, true)
	loop.Tick()
	pkt := recvPacket(t, listener)
	assert.Equal(t, protocol.TypeProController, pkt.Subrecords[0].Type)

	_, ok := loop.registry.Lookup("pad-a")
	assert.False(t, ok)
	slot, ok := loop.registry.Lookup("pad-b")
	require.True(t, ok)
	assert.Equal(t, 0, slot)
}

func TestResetBurstSendsDetachAll(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	tx, err := NewTransmitter(listener.LocalAddr().String(), testLogger(), log.NewRaw(nil))
	require.NoError(t, err)
	defer func() { _ = tx.Close() }()

	go ResetBurst(tx, 50*time.Millisecond, time.Millisecond)

	pkt := recvPacket(t, listener)
	assert.Equal(t, uint16(0), pkt.Count)
	for _, sub := range pkt.Subrecords {
		assert.Equal(t, protocol.TypeNone, sub.Type)
	}
}
