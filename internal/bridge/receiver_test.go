package bridge_test

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padlink/padlink/hdls/hdlstest"
	"github.com/padlink/padlink/internal/bridge"
	"github.com/padlink/padlink/internal/log"
	"github.com/padlink/padlink/protocol"
)

func startReceiver(t *testing.T, cfg bridge.ReceiverConfig, m *bridge.Manager) (net.Conn, context.CancelFunc) {
	t.Helper()
	r := bridge.NewReceiver(cfg, m, testLogger(), log.NewRaw(nil))
	require.NoError(t, r.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := net.Dial("udp", r.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, cancel
}

func defaultConfig() bridge.ReceiverConfig {
	return bridge.ReceiverConfig{
		Addr:        "127.0.0.1:0",
		ReadTimeout: 100 * time.Millisecond,
		Backoff:     time.Millisecond,
	}
}

func TestReceiverAppliesPacket(t *testing.T) {
	sdk := hdlstest.New()
	m := bridge.NewManager(sdk, testLogger())
	conn, _ := startReceiver(t, defaultConfig(), m)

	pkt := packetWith(0, protocol.Subrecord{Type: protocol.TypeProController, Buttons: 0x1})
	_, err := conn.Write(protocol.Encode(pkt))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		slots, _ := m.Snapshot()
		return slots[0].Type == protocol.TypeProController
	}, time.Second, 5*time.Millisecond)

	slots, _ := m.Snapshot()
	assert.Equal(t, uint64(0x1), slots[0].State.Buttons)
}

// Datagrams with a foreign magic produce no state change regardless of
// their other contents.
func TestReceiverDropsInvalidMagic(t *testing.T) {
	sdk := hdlstest.New()
	m := bridge.NewManager(sdk, testLogger())
	conn, _ := startReceiver(t, defaultConfig(), m)

	bad := protocol.Encode(packetWith(0, protocol.Subrecord{Type: protocol.TypeProController, Buttons: 0xFF}))
	binary.LittleEndian.PutUint16(bad[0:2], 0xDEAD)
	_, err := conn.Write(bad)
	require.NoError(t, err)

	// A good packet afterwards proves the loop survived the bad one.
	good := packetWith(1, protocol.Subrecord{Type: protocol.TypeJoyConLeft})
	_, err = conn.Write(protocol.Encode(good))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		slots, _ := m.Snapshot()
		return slots[1].Type == protocol.TypeJoyConLeft
	}, time.Second, 5*time.Millisecond)

	slots, _ := m.Snapshot()
	assert.Equal(t, protocol.TypeNone, slots[0].Type)
	assert.Empty(t, sdk.CallsOf("attach")[1:], "only the good packet may attach")
}

func TestReceiverDropsTruncated(t *testing.T) {
	sdk := hdlstest.New()
	m := bridge.NewManager(sdk, testLogger())
	conn, _ := startReceiver(t, defaultConfig(), m)

	_, err := conn.Write([]byte{0x76, 0x32, 0x01})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sdk.Calls())
}

// With no traffic inside the read window the state is marked stale; the
// next packet clears it.
func TestReceiverMarksStaleOnTimeout(t *testing.T) {
	m := bridge.NewManager(hdlstest.New(), testLogger())
	conn, _ := startReceiver(t, defaultConfig(), m)

	require.Eventually(t, func() bool {
		_, stale := m.Snapshot()
		return stale
	}, time.Second, 5*time.Millisecond)

	_, err := conn.Write(protocol.Encode(&protocol.Packet{}))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, stale := m.Snapshot()
		return !stale
	}, time.Second, 5*time.Millisecond)
}

// Successive packets must be processed back to back: the loop re-enters the
// receive immediately after an apply instead of sleeping.
func TestReceiverProcessesPacketStream(t *testing.T) {
	sdk := hdlstest.New()
	m := bridge.NewManager(sdk, testLogger())
	conn, _ := startReceiver(t, defaultConfig(), m)

	for i := 0; i < 20; i++ {
		var sub protocol.Subrecord
		sub.Type = protocol.TypeProController
		sub.Buttons = uint64(i)
		_, err := conn.Write(protocol.Encode(packetWith(0, sub)))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		slots, _ := m.Snapshot()
		return slots[0].State.Buttons == 19
	}, time.Second, 5*time.Millisecond)
	// One attach, many updates: the stream never re-attached.
	assert.Len(t, sdk.CallsOf("attach"), 1)
}

func TestReceiverStopsOnCancel(t *testing.T) {
	m := bridge.NewManager(hdlstest.New(), testLogger())
	_, cancel := startReceiver(t, defaultConfig(), m)
	cancel()
	// Cleanup asserts Run returns; nothing further to verify here.
}
