// Package client is the host-side half of padlink: it polls physical
// gamepads, maintains their slot assignments, and transmits state snapshots
// to the bridge once per tick.
package client

import (
	"errors"
	"sync"

	"github.com/padlink/padlink/protocol"
)

// ErrNoSlotAvailable is returned when all eight slots are held by connected
// controllers. The assignment gesture simply has no effect in that case.
var ErrNoSlotAvailable = errors.New("client: no controller slot available")

type binding struct {
	id        string
	connected bool
}

// Registry assigns and preserves a stable slot index per physical
// controller. A binding survives its controller's disconnect: disconnection
// never frees a slot, so a reconnecting controller resumes its prior slot
// without a new assignment gesture. Only a new assignment claiming the slot
// while it sits vacant destroys the old binding.
//
// Slots are never pre-assigned; every controller starts unassigned until the
// user performs the assignment gesture.
type Registry struct {
	mu    sync.Mutex
	slots [protocol.SlotCount]binding
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AssignFirstAvailable binds id to the lowest-indexed slot that was never
// bound or whose bound controller is currently disconnected. The new binding
// overrides any previous one on that slot. The assigned controller is
// recorded as connected.
func (r *Registry) AssignFirstAvailable(id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i].id == "" || !r.slots[i].connected {
			r.slots[i] = binding{id: id, connected: true}
			return i, nil
		}
	}
	return 0, ErrNoSlotAvailable
}

// Lookup returns the slot previously bound to id, if the binding still
// stands.
func (r *Registry) Lookup(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i].id == id {
			return i, true
		}
	}
	return 0, false
}

// MarkConnected records id's controller as present again. A reconnect
// resumes the existing binding; ok is false when no binding stands (the slot
// was claimed while vacant, or the controller was never assigned).
func (r *Registry) MarkConnected(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i].id == id {
			r.slots[i].connected = true
			return i, true
		}
	}
	return 0, false
}

// MarkDisconnected records id's controller as absent. The binding itself is
// kept so the slot's logical identity survives the disconnect.
func (r *Registry) MarkDisconnected(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i].id == id {
			r.slots[i].connected = false
			return
		}
	}
}

// Occupant returns the controller id bound to slot i and whether it is
// currently connected.
func (r *Registry) Occupant(i int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[i].id, r.slots[i].connected
}
