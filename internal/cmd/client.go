// Package cmd holds the kong command implementations for the padlink binary.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/padlink/padlink/internal/client"
	"github.com/padlink/padlink/internal/client/input"
	"github.com/padlink/padlink/internal/log"
	"github.com/padlink/padlink/protocol"
)

// Client captures physical gamepads on this machine and streams their state
// to the bridge.
type Client struct {
	Server     string        `arg:"" help:"IP or hostname of the machine running the bridge" env:"PADLINK_SERVER"`
	Port       int           `help:"Bridge UDP port" default:"8000" env:"PADLINK_PORT"`
	TickRate   int           `help:"Snapshots per second" default:"60" env:"PADLINK_TICK_RATE"`
	PadTypes   []string      `help:"Controller type per slot (pro, joycon-left, joycon-right)" default:"pro" env:"PADLINK_PAD_TYPES"`
	ResetOnEnd bool          `help:"Burst detach-all packets on shutdown so the bridge drops every virtual device" default:"true" negatable:""`
	ResetFor   time.Duration `help:"Duration of the shutdown detach burst" default:"3s"`
}

// Run is called by Kong when the client command is executed.
func (c *Client) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slotTypes, err := parseSlotTypes(c.PadTypes)
	if err != nil {
		return err
	}

	source, err := input.NewSDLSource()
	if err != nil {
		return fmt.Errorf("failed to initialize gamepad input: %w", err)
	}
	defer source.Close()

	addr := net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
	transmitter, err := client.NewTransmitter(addr, logger, rawLogger)
	if err != nil {
		return err
	}
	defer func() { _ = transmitter.Close() }()

	logger.Info("Starting padlink client", "bridge", addr, "tick_rate", c.TickRate)
	logger.Info("Press both triggers on a controller to assign it to a slot")

	loop := client.NewLoop(source, client.NewRegistry(), transmitter, slotTypes, logger)
	if err := loop.Run(ctx, c.TickRate); err != nil {
		return err
	}

	if c.ResetOnEnd {
		logger.Info("Cleaning up virtual devices, this takes a moment", "window", c.ResetFor)
		client.ResetBurst(transmitter, c.ResetFor, time.Millisecond)
	}
	return nil
}

// parseSlotTypes expands the per-slot type list; a single entry applies to
// all eight slots, matching the common "everything is a Pro Controller"
// setup without repeating it.
func parseSlotTypes(names []string) ([protocol.SlotCount]protocol.ControllerType, error) {
	var out [protocol.SlotCount]protocol.ControllerType
	if len(names) == 0 {
		return out, fmt.Errorf("at least one pad type is required")
	}
	if len(names) > protocol.SlotCount {
		return out, fmt.Errorf("at most %d pad types, got %d", protocol.SlotCount, len(names))
	}
	for i := range out {
		name := names[len(names)-1]
		if i < len(names) {
			name = names[i]
		}
		t, err := parseControllerType(name)
		if err != nil {
			return out, err
		}
		out[i] = t
	}
	return out, nil
}

func parseControllerType(name string) (protocol.ControllerType, error) {
	switch name {
	case "pro", "pro-controller":
		return protocol.TypeProController, nil
	case "joycon-left", "joycon-l":
		return protocol.TypeJoyConLeft, nil
	case "joycon-right", "joycon-r":
		return protocol.TypeJoyConRight, nil
	default:
		return protocol.TypeNone, fmt.Errorf("unknown controller type %q", name)
	}
}
