package client

import (
	"time"

	"github.com/padlink/padlink/protocol"
)

// ResetBurst floods the bridge with all-None snapshots for the given window.
// The wire has no acknowledgment, so a single detach-all packet can be lost;
// sending many for a bounded period makes it overwhelmingly likely at least
// one arrives and every virtual device detaches. Used on client shutdown and
// by the reset command.
func ResetBurst(t *Transmitter, window, interval time.Duration) {
	empty := &protocol.Packet{}
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		t.Send(empty)
		time.Sleep(interval)
	}
}
