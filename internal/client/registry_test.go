package client_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padlink/padlink/internal/client"
)

func TestAssignFirstAvailableOrder(t *testing.T) {
	r := client.NewRegistry()
	for i := 0; i < 3; i++ {
		slot, err := r.AssignFirstAvailable(fmt.Sprintf("pad-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, slot)
	}
}

func TestAssignExhaustion(t *testing.T) {
	r := client.NewRegistry()
	for i := 0; i < 8; i++ {
		_, err := r.AssignFirstAvailable(fmt.Sprintf("pad-%d", i))
		require.NoError(t, err)
	}
	_, err := r.AssignFirstAvailable("pad-9")
	assert.ErrorIs(t, err, client.ErrNoSlotAvailable)
}

// Disconnection alone never frees a slot: lookup still answers and a
// reconnect resumes the same slot without a new gesture.
func TestDisconnectKeepsBinding(t *testing.T) {
	r := client.NewRegistry()
	_, err := r.AssignFirstAvailable("pad-a")
	require.NoError(t, err)
	slot, err := r.AssignFirstAvailable("pad-b")
	require.NoError(t, err)
	require.Equal(t, 1, slot)

	r.MarkDisconnected("pad-b")

	got, ok := r.Lookup("pad-b")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	resumed, ok := r.MarkConnected("pad-b")
	require.True(t, ok)
	assert.Equal(t, 1, resumed)
}

// A vacant slot (bound controller disconnected) can be claimed by a new
// assignment, which destroys the old binding.
func TestClaimWhileVacantOverrides(t *testing.T) {
	r := client.NewRegistry()
	_, err := r.AssignFirstAvailable("pad-a")
	require.NoError(t, err)
	r.MarkDisconnected("pad-a")

	slot, err := r.AssignFirstAvailable("pad-b")
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	_, ok := r.Lookup("pad-a")
	assert.False(t, ok, "old binding must be destroyed")
	_, ok = r.MarkConnected("pad-a")
	assert.False(t, ok, "returning controller needs a new gesture")
}

// A connected controller's slot is never stolen; the new controller takes
// the next free index.
func TestConnectedSlotNotStolen(t *testing.T) {
	r := client.NewRegistry()
	_, err := r.AssignFirstAvailable("pad-a")
	require.NoError(t, err)

	slot, err := r.AssignFirstAvailable("pad-b")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	id, connected := r.Occupant(0)
	assert.Equal(t, "pad-a", id)
	assert.True(t, connected)
}

func TestLookupUnassigned(t *testing.T) {
	r := client.NewRegistry()
	_, ok := r.Lookup("nobody")
	assert.False(t, ok)
}
