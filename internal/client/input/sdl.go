package input

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/sdl"
)

// Trigger axes run 0..32767; past this point the trigger counts as pressed.
const triggerThreshold = 0x4000

// SDLSource polls gamepads through SDL3. Opened pads are tracked by joystick
// instance id; hot-plug is detected by diffing the id set on every Update.
type SDLSource struct {
	lib  interface{ Unload() }
	pads map[sdl.JoystickID]*sdlPad
}

// NewSDLSource loads the bundled SDL library and initializes the gamepad
// subsystem.
func NewSDLSource() (*SDLSource, error) {
	lib := binsdl.Load()
	if err := sdl.Init(sdl.INIT_GAMEPAD); err != nil {
		lib.Unload()
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	return &SDLSource{lib: lib, pads: make(map[sdl.JoystickID]*sdlPad)}, nil
}

// Update pumps SDL gamepad state and reconciles the open pad set against the
// currently present joystick ids.
func (s *SDLSource) Update() {
	sdl.UpdateGamepads()
	ids, err := sdl.GetGamepads()
	if err != nil {
		return
	}
	present := make(map[sdl.JoystickID]bool, len(ids))
	for _, id := range ids {
		present[id] = true
		if _, ok := s.pads[id]; ok {
			continue
		}
		g, err := id.OpenGamepad()
		if err != nil {
			continue
		}
		s.pads[id] = &sdlPad{id: stableID(g, id), g: g}
	}
	for id, p := range s.pads {
		if !present[id] {
			p.g.Close()
			delete(s.pads, id)
		}
	}
}

func (s *SDLSource) Pads() []Pad {
	out := make([]Pad, 0, len(s.pads))
	for _, p := range s.pads {
		out = append(out, p)
	}
	return out
}

func (s *SDLSource) Close() {
	for id, p := range s.pads {
		p.g.Close()
		delete(s.pads, id)
	}
	sdl.Quit()
	s.lib.Unload()
}

// stableID prefers the hardware serial so a pad keeps its identity across
// reconnects; pads without one fall back to name plus instance id and lose
// slot persistence across replug.
func stableID(g *sdl.Gamepad, id sdl.JoystickID) string {
	if serial := g.Serial(); serial != "" {
		return serial
	}
	return fmt.Sprintf("%s#%d", g.Name(), id)
}

type sdlPad struct {
	id string
	g  *sdl.Gamepad
}

func (p *sdlPad) ID() string { return p.id }

func (p *sdlPad) Button(b Button) bool {
	switch b {
	case ButtonNorth:
		return p.g.Button(sdl.GAMEPAD_BUTTON_NORTH)
	case ButtonSouth:
		return p.g.Button(sdl.GAMEPAD_BUTTON_SOUTH)
	case ButtonEast:
		return p.g.Button(sdl.GAMEPAD_BUTTON_EAST)
	case ButtonWest:
		return p.g.Button(sdl.GAMEPAD_BUTTON_WEST)
	case ButtonLeftBumper:
		return p.g.Button(sdl.GAMEPAD_BUTTON_LEFT_SHOULDER)
	case ButtonRightBumper:
		return p.g.Button(sdl.GAMEPAD_BUTTON_RIGHT_SHOULDER)
	case ButtonLeftTrigger:
		return p.g.Axis(sdl.GAMEPAD_AXIS_LEFT_TRIGGER) >= triggerThreshold
	case ButtonRightTrigger:
		return p.g.Axis(sdl.GAMEPAD_AXIS_RIGHT_TRIGGER) >= triggerThreshold
	case ButtonStart:
		return p.g.Button(sdl.GAMEPAD_BUTTON_START)
	case ButtonSelect:
		return p.g.Button(sdl.GAMEPAD_BUTTON_BACK)
	case ButtonLeftStick:
		return p.g.Button(sdl.GAMEPAD_BUTTON_LEFT_STICK)
	case ButtonRightStick:
		return p.g.Button(sdl.GAMEPAD_BUTTON_RIGHT_STICK)
	case ButtonDpadUp:
		return p.g.Button(sdl.GAMEPAD_BUTTON_DPAD_UP)
	case ButtonDpadDown:
		return p.g.Button(sdl.GAMEPAD_BUTTON_DPAD_DOWN)
	case ButtonDpadLeft:
		return p.g.Button(sdl.GAMEPAD_BUTTON_DPAD_LEFT)
	case ButtonDpadRight:
		return p.g.Button(sdl.GAMEPAD_BUTTON_DPAD_RIGHT)
	default:
		return false
	}
}

func (p *sdlPad) Axis(a Axis) int16 {
	switch a {
	case AxisLeftX:
		return p.g.Axis(sdl.GAMEPAD_AXIS_LEFTX)
	case AxisLeftY:
		return negate(p.g.Axis(sdl.GAMEPAD_AXIS_LEFTY))
	case AxisRightX:
		return p.g.Axis(sdl.GAMEPAD_AXIS_RIGHTX)
	case AxisRightY:
		return negate(p.g.Axis(sdl.GAMEPAD_AXIS_RIGHTY))
	default:
		return 0
	}
}

// negate flips SDL's down-positive Y to the console's up-positive
// convention without overflowing at the extreme.
func negate(v int16) int16 {
	if v == -32768 {
		return 32767
	}
	return -v
}
