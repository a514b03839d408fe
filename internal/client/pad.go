package client

import (
	"github.com/padlink/padlink/internal/client/input"
	"github.com/padlink/padlink/protocol"
)

// mapButton resolves a physical control to its wire bit for the given
// controller type. Face buttons are positional on the physical pad; a
// sideways Joy-Con holds its face buttons rotated a quarter turn, so the
// left one presents its d-pad as the four face buttons and the right one
// shifts its letter layout.
func mapButton(b input.Button, kind protocol.ControllerType) (uint64, bool) {
	switch b {
	case input.ButtonDpadUp:
		return protocol.ButtonDpadUp, true
	case input.ButtonDpadDown:
		return protocol.ButtonDpadDown, true
	case input.ButtonDpadLeft:
		return protocol.ButtonDpadLeft, true
	case input.ButtonDpadRight:
		return protocol.ButtonDpadRight, true
	case input.ButtonLeftBumper:
		return protocol.ButtonL, true
	case input.ButtonRightBumper:
		return protocol.ButtonR, true
	case input.ButtonLeftTrigger:
		return protocol.ButtonZL, true
	case input.ButtonRightTrigger:
		return protocol.ButtonZR, true
	case input.ButtonStart:
		return protocol.ButtonPlus, true
	case input.ButtonSelect:
		return protocol.ButtonMinus, true
	case input.ButtonLeftStick:
		return protocol.ButtonStickL, true
	case input.ButtonRightStick:
		return protocol.ButtonStickR, true
	case input.ButtonNorth:
		switch kind {
		case protocol.TypeJoyConLeft:
			return protocol.ButtonDpadRight, true
		case protocol.TypeJoyConRight:
			return protocol.ButtonY, true
		default:
			return protocol.ButtonX, true
		}
	case input.ButtonEast:
		switch kind {
		case protocol.TypeJoyConLeft:
			return protocol.ButtonDpadDown, true
		case protocol.TypeJoyConRight:
			return protocol.ButtonX, true
		default:
			return protocol.ButtonA, true
		}
	case input.ButtonSouth:
		switch kind {
		case protocol.TypeJoyConLeft:
			return protocol.ButtonDpadLeft, true
		case protocol.TypeJoyConRight:
			return protocol.ButtonA, true
		default:
			return protocol.ButtonB, true
		}
	case input.ButtonWest:
		switch kind {
		case protocol.TypeJoyConLeft:
			return protocol.ButtonDpadUp, true
		case protocol.TypeJoyConRight:
			return protocol.ButtonB, true
		default:
			return protocol.ButtonY, true
		}
	default:
		return 0, false
	}
}

// readableButtons is every physical control the snapshot reader samples.
var readableButtons = []input.Button{
	input.ButtonNorth, input.ButtonSouth, input.ButtonEast, input.ButtonWest,
	input.ButtonLeftBumper, input.ButtonRightBumper,
	input.ButtonLeftTrigger, input.ButtonRightTrigger,
	input.ButtonStart, input.ButtonSelect,
	input.ButtonLeftStick, input.ButtonRightStick,
	input.ButtonDpadUp, input.ButtonDpadDown,
	input.ButtonDpadLeft, input.ButtonDpadRight,
}

// readPad samples a connected pad into the slot's subrecord. Stick axes pass
// through at the pad's native signed range; the codec does no scaling and
// the console expects the same centering.
func readPad(p input.Pad, kind protocol.ControllerType) protocol.Subrecord {
	sub := protocol.Subrecord{
		Type:   kind,
		LeftX:  int32(p.Axis(input.AxisLeftX)),
		LeftY:  int32(p.Axis(input.AxisLeftY)),
		RightX: int32(p.Axis(input.AxisRightX)),
		RightY: int32(p.Axis(input.AxisRightY)),
	}
	for _, b := range readableButtons {
		if !p.Button(b) {
			continue
		}
		if bit, ok := mapButton(b, kind); ok {
			sub.Buttons |= bit
		}
	}
	return sub
}

// assignGesture reports whether the pad is currently holding both triggers,
// the gesture that requests a slot assignment.
func assignGesture(p input.Pad) bool {
	return p.Button(input.ButtonLeftTrigger) && p.Button(input.ButtonRightTrigger)
}
