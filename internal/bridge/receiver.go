package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/padlink/padlink/internal/log"
	"github.com/padlink/padlink/protocol"
)

// ReceiverConfig represents the bridge receive-loop configuration.
type ReceiverConfig struct {
	Addr        string        `help:"UDP listen address" default:":8000" env:"PADLINK_BRIDGE_ADDR"`
	ReadTimeout time.Duration `help:"Blocking receive window before the state is marked stale" default:"1s" env:"PADLINK_BRIDGE_READ_TIMEOUT"`
	Backoff     time.Duration `help:"Delay before retrying after a receive timeout or socket error" default:"10ms" env:"PADLINK_BRIDGE_BACKOFF"`
}

// Receiver runs the dedicated receive context: it blocks on datagram
// receipt with a bounded deadline, decodes, and hands packets to the
// manager. Malformed datagrams are dropped; timeouts mark state stale and
// back off briefly. After a successful apply the loop goes straight back
// into the blocking receive.
type Receiver struct {
	config    ReceiverConfig
	manager   *Manager
	logger    *slog.Logger
	rawLogger log.RawLogger
	conn      *net.UDPConn
}

func NewReceiver(config ReceiverConfig, manager *Manager, logger *slog.Logger, rawLogger log.RawLogger) *Receiver {
	return &Receiver{config: config, manager: manager, logger: logger, rawLogger: rawLogger}
}

// Listen binds the UDP socket. Separate from Run so callers learn about bind
// failures before spawning the receive goroutine.
func (r *Receiver) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("resolve listen address %q: %w", r.config.Addr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen on %q: %w", r.config.Addr, err)
	}
	r.conn = conn
	r.logger.Info("listening for controller snapshots", "addr", conn.LocalAddr().String())
	return nil
}

// Run receives until ctx is cancelled. It never holds the manager lock
// across the blocking receive, and never blocks longer than the configured
// read timeout. Callers detach the remaining devices only after Run has
// returned.
func (r *Receiver) Run(ctx context.Context) error {
	if r.conn == nil {
		if err := r.Listen(); err != nil {
			return err
		}
	}
	defer func() { _ = r.conn.Close() }()

	// Unblock the pending read when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { _ = r.conn.Close() })
	defer stop()

	buf := make([]byte, 2048)
	for {
		if err := r.conn.SetReadDeadline(time.Now().Add(r.config.ReadTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
		n, _, err := r.conn.ReadFromUDP(buf)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// Not a failure: no snapshot within the window.
				r.manager.MarkStale()
			} else {
				r.logger.Warn("receive failed", "error", err)
			}
			if !sleepCtx(ctx, r.config.Backoff) {
				return nil
			}
			continue
		}

		r.rawLogger.Log(true, buf[:n])
		pkt, err := protocol.Decode(buf[:n])
		if err != nil {
			// Foreign or corrupted datagram; the protocol is one-directional
			// so it is dropped without a response.
			r.logger.Log(ctx, log.LevelTrace, "dropping malformed datagram", "size", n, "error", err)
			continue
		}
		r.manager.Apply(pkt)
	}
}

// LocalAddr returns the bound address, or nil before Listen.
func (r *Receiver) LocalAddr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// sleepCtx sleeps for d or until ctx is done; it reports false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
