package client

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/padlink/padlink/internal/log"
	"github.com/padlink/padlink/protocol"
)

// Transmitter sends encoded snapshots to the bridge as single datagrams,
// fire-and-forget: no acknowledgment, no retry. Every packet is a complete
// snapshot, so a lost datagram is corrected by the next tick's.
type Transmitter struct {
	conn      *net.UDPConn
	logger    *slog.Logger
	rawLogger log.RawLogger
}

// NewTransmitter connects a UDP socket to the bridge address.
func NewTransmitter(addr string, logger *slog.Logger, rawLogger log.RawLogger) (*Transmitter, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve bridge address %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", addr, err)
	}
	return &Transmitter{conn: conn, logger: logger, rawLogger: rawLogger}, nil
}

// Send encodes and transmits one snapshot. Send failures (no route, host
// down) are logged and swallowed; they must never stop the capture loop.
func (t *Transmitter) Send(p *protocol.Packet) {
	b := protocol.Encode(p)
	t.rawLogger.Log(true, b)
	if _, err := t.conn.Write(b); err != nil {
		t.logger.Warn("failed to send snapshot", "error", err)
	}
}

func (t *Transmitter) Close() error {
	return t.conn.Close()
}
