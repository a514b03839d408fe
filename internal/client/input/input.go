// Package input abstracts the host's gamepad library behind a small polling
// surface so the capture loop can be driven by a fake in tests.
package input

// Button enumerates the controls that are universally available on gamepads.
// Face buttons are named by position; the per-slot controller type decides
// which console button each position maps to.
type Button int

const (
	ButtonNorth Button = iota
	ButtonSouth
	ButtonEast
	ButtonWest
	ButtonLeftBumper
	ButtonRightBumper
	ButtonLeftTrigger
	ButtonRightTrigger
	ButtonStart
	ButtonSelect
	ButtonLeftStick
	ButtonRightStick
	ButtonDpadUp
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight
)

// Axis enumerates the analog stick axes. Values are signed 16-bit with up
// positive; implementations convert from their library's convention.
type Axis int

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
)

// Pad is one currently-connected physical gamepad.
type Pad interface {
	// ID is a stable hardware identity that survives disconnect/reconnect
	// cycles, used to key slot assignments.
	ID() string
	Button(b Button) bool
	Axis(a Axis) int16
}

// Source supplies the currently-connected pads. Update polls the underlying
// library; it is called once per capture tick from the loop's goroutine and
// must not block.
type Source interface {
	Update()
	Pads() []Pad
	Close()
}
