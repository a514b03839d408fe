package cmd

import (
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/padlink/padlink/internal/client"
	"github.com/padlink/padlink/internal/log"
)

// Reset tells a bridge to detach every virtual device by bursting detach-all
// snapshots, for when a client exited without cleaning up.
type Reset struct {
	Server string        `arg:"" help:"IP or hostname of the machine running the bridge" env:"PADLINK_SERVER"`
	Port   int           `help:"Bridge UDP port" default:"8000" env:"PADLINK_PORT"`
	Window time.Duration `help:"How long to keep sending detach-all packets" default:"3s"`
}

// Run is called by Kong when the reset command is executed.
func (r *Reset) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	addr := net.JoinHostPort(r.Server, strconv.Itoa(r.Port))
	transmitter, err := client.NewTransmitter(addr, logger, rawLogger)
	if err != nil {
		return err
	}
	defer func() { _ = transmitter.Close() }()

	logger.Info("Sending detach-all packets", "bridge", addr, "window", r.Window)
	client.ResetBurst(transmitter, r.Window, time.Millisecond)
	logger.Info("Done, virtual devices should now be detached")
	return nil
}
