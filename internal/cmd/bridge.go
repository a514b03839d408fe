package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/padlink/padlink/hdls"
	"github.com/padlink/padlink/hdls/uinput"
	"github.com/padlink/padlink/internal/bridge"
	"github.com/padlink/padlink/internal/log"
)

// Bridge receives controller snapshots and presents them to this machine as
// virtual controllers.
type Bridge struct {
	ReceiverConfig bridge.ReceiverConfig `embed:"" prefix:"bridge."`
}

// Run is called by Kong when the bridge command is executed.
func (b *Bridge) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sdk, err := uinput.New()
	if err != nil {
		return fmt.Errorf("failed to initialize virtual device backend: %w", err)
	}
	return b.StartBridge(ctx, sdk, logger, rawLogger)
}

// StartBridge runs the receive loop against the given SDK until ctx is
// cancelled, then detaches every remaining virtual device. The detach pass
// runs strictly after the receive loop has exited so no SDK call can race
// with teardown.
func (b *Bridge) StartBridge(ctx context.Context, sdk hdls.SDK, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("Starting padlink bridge", "addr", b.ReceiverConfig.Addr)

	manager := bridge.NewManager(sdk, logger)
	receiver := bridge.NewReceiver(b.ReceiverConfig, manager, logger, rawLogger)
	if err := receiver.Listen(); err != nil {
		return err
	}

	err := receiver.Run(ctx)

	logger.Info("Shutting down, detaching virtual devices")
	manager.DetachAll()
	return err
}
