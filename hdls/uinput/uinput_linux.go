//go:build linux

// Package uinput implements the hdls.SDK contract on top of /dev/uinput so
// the bridge half can be exercised end-to-end on a Linux host: every
// attached slot shows up as a kernel input device.
package uinput

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/padlink/padlink/hdls"
	"github.com/padlink/padlink/protocol"
)

const (
	uinputPath = "/dev/uinput"

	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567

	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0

	btnSouth     = 0x130
	btnEast      = 0x131
	btnNorth     = 0x133
	btnWest      = 0x134
	btnTL        = 0x136
	btnTR        = 0x137
	btnTL2       = 0x138
	btnTR2       = 0x139
	btnSelect    = 0x13a
	btnStart     = 0x13b
	btnThumbL    = 0x13d
	btnThumbR    = 0x13e
	btnDpadUp    = 0x220
	btnDpadDown  = 0x221
	btnDpadLeft  = 0x222
	btnDpadRight = 0x223

	absX  = 0x00
	absY  = 0x01
	absRX = 0x03
	absRY = 0x04

	// uinput_user_dev: name[80] + input_id(4*u16) + ff_effects_max(u32) +
	// absmax/absmin/absfuzz/absflat ([64]i32 each).
	userDevSize = 80 + 8 + 4 + 4*64*4

	axisRange = 32767

	vendorNintendo = 0x057e
)

// buttonCodes maps wire button bits to evdev key codes. Stick-direction and
// SL/SR bits have no evdev counterpart on a composite pad and are skipped.
var buttonCodes = map[uint64]uint16{
	protocol.ButtonA:         btnEast,
	protocol.ButtonB:         btnSouth,
	protocol.ButtonX:         btnNorth,
	protocol.ButtonY:         btnWest,
	protocol.ButtonL:         btnTL,
	protocol.ButtonR:         btnTR,
	protocol.ButtonZL:        btnTL2,
	protocol.ButtonZR:        btnTR2,
	protocol.ButtonPlus:      btnStart,
	protocol.ButtonMinus:     btnSelect,
	protocol.ButtonStickL:    btnThumbL,
	protocol.ButtonStickR:    btnThumbR,
	protocol.ButtonDpadUp:    btnDpadUp,
	protocol.ButtonDpadDown:  btnDpadDown,
	protocol.ButtonDpadLeft:  btnDpadLeft,
	protocol.ButtonDpadRight: btnDpadRight,
}

var axisCodes = []uint16{absX, absY, absRX, absRY}

type device struct {
	fd   int
	prev hdls.State
}

// SDK creates one uinput device per attach. Safe for concurrent use.
type SDK struct {
	mu      sync.Mutex
	next    hdls.Handle
	devices map[hdls.Handle]*device
}

// New returns a uinput-backed SDK. It fails early when /dev/uinput is not
// openable so misconfiguration surfaces at startup rather than on the first
// attach.
func New() (*SDK, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uinput: open %s: %w", uinputPath, err)
	}
	_ = unix.Close(fd)
	return &SDK{devices: make(map[hdls.Handle]*device)}, nil
}

func deviceName(kind protocol.ControllerType) string {
	switch kind {
	case protocol.TypeJoyConLeft:
		return "padlink Joy-Con (L)"
	case protocol.TypeJoyConRight:
		return "padlink Joy-Con (R)"
	default:
		return "padlink Pro Controller"
	}
}

func productID(kind protocol.ControllerType) uint16 {
	switch kind {
	case protocol.TypeJoyConLeft:
		return 0x2006
	case protocol.TypeJoyConRight:
		return 0x2007
	default:
		return 0x2009
	}
}

// Attach registers a new input device with the kernel and returns its handle.
func (s *SDK) Attach(cfg hdls.DeviceConfig) (hdls.Handle, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return 0, fmt.Errorf("uinput: open: %w", err)
	}

	setup := func() error {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, evKey); err != nil {
			return fmt.Errorf("uinput: enable EV_KEY: %w", err)
		}
		for _, code := range buttonCodes {
			if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(code)); err != nil {
				return fmt.Errorf("uinput: enable key %#x: %w", code, err)
			}
		}
		if err := unix.IoctlSetInt(fd, uiSetEvBit, evAbs); err != nil {
			return fmt.Errorf("uinput: enable EV_ABS: %w", err)
		}
		for _, code := range axisCodes {
			if err := unix.IoctlSetInt(fd, uiSetAbsBit, int(code)); err != nil {
				return fmt.Errorf("uinput: enable axis %#x: %w", code, err)
			}
		}
		if _, err := unix.Write(fd, userDev(cfg)); err != nil {
			return fmt.Errorf("uinput: write user dev: %w", err)
		}
		if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
			return fmt.Errorf("uinput: create device: %w", err)
		}
		return nil
	}
	if err := setup(); err != nil {
		_ = unix.Close(fd)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.devices[h] = &device{fd: fd}
	return h, nil
}

// userDev encodes a uinput_user_dev struct for the given config.
func userDev(cfg hdls.DeviceConfig) []byte {
	b := make([]byte, userDevSize)
	copy(b[:79], deviceName(cfg.Kind))
	binary.LittleEndian.PutUint16(b[80:], unix.BUS_VIRTUAL)
	binary.LittleEndian.PutUint16(b[82:], vendorNintendo)
	binary.LittleEndian.PutUint16(b[84:], productID(cfg.Kind))
	binary.LittleEndian.PutUint16(b[86:], 1) // version
	// absmax then absmin for the four stick axes.
	maxOff, minOff := 92, 92+64*4
	negRange := int32(-axisRange)
	for _, code := range axisCodes {
		binary.LittleEndian.PutUint32(b[maxOff+int(code)*4:], uint32(axisRange))
		binary.LittleEndian.PutUint32(b[minOff+int(code)*4:], uint32(negRange))
	}
	return b
}

// SetState pushes the full input state as a single event batch. Only fields
// that changed since the last push are written, followed by one SYN_REPORT.
func (s *SDK) SetState(h hdls.Handle, st hdls.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dev, ok := s.devices[h]
	if !ok {
		return fmt.Errorf("uinput: set state: unknown handle %d", h)
	}

	var events []byte
	for bit, code := range buttonCodes {
		now, was := st.Buttons&bit != 0, dev.prev.Buttons&bit != 0
		if now != was {
			events = appendEvent(events, evKey, code, boolVal(now))
		}
	}
	axes := [...]struct {
		code uint16
		now  int32
		was  int32
	}{
		{absX, st.AnalogL.X, dev.prev.AnalogL.X},
		{absY, -st.AnalogL.Y, -dev.prev.AnalogL.Y}, // evdev Y grows downward
		{absRX, st.AnalogR.X, dev.prev.AnalogR.X},
		{absRY, -st.AnalogR.Y, -dev.prev.AnalogR.Y},
	}
	for _, a := range axes {
		if a.now != a.was {
			events = appendEvent(events, evAbs, a.code, a.now)
		}
	}
	if len(events) == 0 {
		return nil
	}
	events = appendEvent(events, evSyn, synReport, 0)
	if _, err := unix.Write(dev.fd, events); err != nil {
		return fmt.Errorf("uinput: write events: %w", err)
	}
	dev.prev = st
	return nil
}

// Detach destroys the kernel device and releases the handle.
func (s *SDK) Detach(h hdls.Handle) error {
	s.mu.Lock()
	dev, ok := s.devices[h]
	delete(s.devices, h)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("uinput: detach: unknown handle %d", h)
	}
	destroyErr := unix.IoctlSetInt(dev.fd, uiDevDestroy, 0)
	closeErr := unix.Close(dev.fd)
	if destroyErr != nil {
		return fmt.Errorf("uinput: destroy device: %w", destroyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("uinput: close: %w", closeErr)
	}
	return nil
}

// appendEvent appends one struct input_event (64-bit layout: 16-byte
// timestamp the kernel fills in, type, code, value).
func appendEvent(b []byte, typ, code uint16, value int32) []byte {
	var ev [24]byte
	binary.LittleEndian.PutUint16(ev[16:], typ)
	binary.LittleEndian.PutUint16(ev[18:], code)
	binary.LittleEndian.PutUint32(ev[20:], uint32(value))
	return append(b, ev[:]...)
}

func boolVal(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
