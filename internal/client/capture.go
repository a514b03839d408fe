package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/padlink/padlink/internal/client/input"
	"github.com/padlink/padlink/protocol"
)

// Loop is the capture loop: a single goroutine that polls the input source
// at a fixed tick, maintains slot assignments, and hands one snapshot per
// tick to the transmitter. Everything here runs on that one goroutine; the
// only blocking point is the tick wait.
type Loop struct {
	source      input.Source
	registry    *Registry
	transmitter *Transmitter
	logger      *slog.Logger
	slotTypes   [protocol.SlotCount]protocol.ControllerType

	connected map[string]bool
	gesturing map[string]bool
}

func NewLoop(source input.Source, registry *Registry, transmitter *Transmitter, slotTypes [protocol.SlotCount]protocol.ControllerType, logger *slog.Logger) *Loop {
	return &Loop{
		source:      source,
		registry:    registry,
		transmitter: transmitter,
		logger:      logger,
		slotTypes:   slotTypes,
		connected:   make(map[string]bool),
		gesturing:   make(map[string]bool),
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context, tickRate int) error {
	if tickRate <= 0 {
		return errors.New("client: tick rate must be positive")
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs one capture cycle: poll, reconcile hot-plug, handle the
// assignment gesture, then build and send the snapshot.
func (l *Loop) Tick() {
	l.source.Update()
	pads := l.source.Pads()

	byID := make(map[string]input.Pad, len(pads))
	for _, p := range pads {
		byID[p.ID()] = p
	}
	l.reconcile(byID)

	for id, p := range byID {
		if _, ok := l.registry.Lookup(id); ok {
			continue
		}
		gesture := assignGesture(p)
		// Edge-triggered: holding the triggers across ticks is one request.
		if gesture && !l.gesturing[id] {
			l.assign(id)
		}
		l.gesturing[id] = gesture
	}

	pkt := l.snapshot(byID)
	l.transmitter.Send(pkt)
}

// reconcile diffs the present pad set against the previous tick, resuming
// or recording disconnects in the registry.
func (l *Loop) reconcile(byID map[string]input.Pad) {
	for id := range byID {
		if l.connected[id] {
			continue
		}
		l.connected[id] = true
		if slot, ok := l.registry.MarkConnected(id); ok {
			l.logger.Info("controller reconnected, resuming slot", "id", id, "slot", slot+1)
		} else {
			l.logger.Info("controller connected, waiting for assignment gesture", "id", id)
		}
	}
	for id := range l.connected {
		if _, ok := byID[id]; ok {
			continue
		}
		delete(l.connected, id)
		delete(l.gesturing, id)
		l.registry.MarkDisconnected(id)
		l.logger.Info("controller disconnected, slot is kept", "id", id)
	}
}

func (l *Loop) assign(id string) {
	slot, err := l.registry.AssignFirstAvailable(id)
	if err != nil {
		// The gesture has no effect when all slots are held; nothing is
		// surfaced to the bridge.
		l.logger.Warn("no slot available for controller", "id", id)
		return
	}
	l.logger.Info("controller assigned", "id", id, "slot", slot+1, "type", l.slotTypes[slot].String())
}

// snapshot builds the outgoing packet. Slots whose controller is absent
// report TypeNone, so the bridge detaches them; a vacated slot claimed by a
// new controller reports the new occupant instead.
func (l *Loop) snapshot(byID map[string]input.Pad) *protocol.Packet {
	var pkt protocol.Packet
	for i := 0; i < protocol.SlotCount; i++ {
		id, connected := l.registry.Occupant(i)
		if id == "" || !connected {
			continue
		}
		p, ok := byID[id]
		if !ok {
			continue
		}
		pkt.Subrecords[i] = readPad(p, l.slotTypes[i])
		pkt.Count++
	}
	return &pkt
}
