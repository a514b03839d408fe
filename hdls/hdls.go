// Package hdls declares the console-side virtual HID surface consumed by the
// bridge. The real implementation lives in the console's debug HID service;
// padlink treats it as a fixed external contract and never reaches past it.
package hdls

import "github.com/padlink/padlink/protocol"

// Handle identifies one attached virtual device. The zero value means "no
// handle"; the bridge clears handles to zero immediately after detach.
type Handle uint64

// Valid reports whether h refers to a live attachment.
func (h Handle) Valid() bool { return h != 0 }

// Interface is the transport a virtual device claims to be connected over.
type Interface uint8

const (
	InterfaceBluetooth Interface = iota
	InterfaceRail
	InterfaceUSB
)

// RGBA is an 8-bit-per-channel color used for the virtual device shell.
type RGBA struct {
	R, G, B, A uint8
}

// Opaque returns a fully opaque color, the form every device config uses.
func Opaque(r, g, b uint8) RGBA { return RGBA{R: r, G: g, B: b, A: 0xFF} }

// DeviceConfig describes the device presented to the console on attach.
// Grip colors are only honored for full-size controllers.
type DeviceConfig struct {
	Kind           protocol.ControllerType
	Interface      Interface
	BodyColor      RGBA
	ButtonColor    RGBA
	LeftGripColor  RGBA
	RightGripColor RGBA
}

// StickPos is one analog stick position, centered at 0.
type StickPos struct {
	X, Y int32
}

// BatteryFull is the battery level reported for every virtual device.
const BatteryFull uint8 = 4

// State is the input state pushed to an attached device.
type State struct {
	Battery uint8
	Buttons uint64
	AnalogL StickPos
	AnalogR StickPos
}

// SDK is the attach/update/detach surface of the console's virtual HID
// service. Implementations must tolerate SetState and Detach being called
// only with handles they returned from Attach.
type SDK interface {
	Attach(cfg DeviceConfig) (Handle, error)
	SetState(h Handle, st State) error
	Detach(h Handle) error
}
