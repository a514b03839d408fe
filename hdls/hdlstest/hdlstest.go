// Package hdlstest provides a recording in-memory SDK for exercising the
// bridge's slot state machine without a console.
package hdlstest

import (
	"errors"
	"sync"

	"github.com/padlink/padlink/hdls"
)

// Call is one recorded SDK invocation.
type Call struct {
	Op     string // "attach", "setstate", "detach"
	Handle hdls.Handle
	Config hdls.DeviceConfig
	State  hdls.State
}

// SDK records every call and hands out monotonically increasing handles.
// AttachErr/SetStateErr/DetachErr, when set, make the next matching call
// fail without being recorded as attached.
type SDK struct {
	mu          sync.Mutex
	next        hdls.Handle
	attached    map[hdls.Handle]hdls.DeviceConfig
	calls       []Call
	AttachErr   error
	SetStateErr error
	DetachErr   error
}

func New() *SDK {
	return &SDK{attached: make(map[hdls.Handle]hdls.DeviceConfig)}
}

func (s *SDK) Attach(cfg hdls.DeviceConfig) (hdls.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AttachErr != nil {
		return 0, s.AttachErr
	}
	s.next++
	h := s.next
	s.attached[h] = cfg
	s.calls = append(s.calls, Call{Op: "attach", Handle: h, Config: cfg})
	return h, nil
}

func (s *SDK) SetState(h hdls.Handle, st hdls.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetStateErr != nil {
		return s.SetStateErr
	}
	if _, ok := s.attached[h]; !ok {
		return errors.New("hdlstest: set state on unattached handle")
	}
	s.calls = append(s.calls, Call{Op: "setstate", Handle: h, State: st})
	return nil
}

func (s *SDK) Detach(h hdls.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DetachErr != nil {
		return s.DetachErr
	}
	if _, ok := s.attached[h]; !ok {
		return errors.New("hdlstest: detach of unattached handle")
	}
	delete(s.attached, h)
	s.calls = append(s.calls, Call{Op: "detach", Handle: h})
	return nil
}

// Calls returns a copy of the recorded call log.
func (s *SDK) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsOf returns the recorded calls matching op, in order.
func (s *SDK) CallsOf(op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// AttachedCount returns the number of currently live handles.
func (s *SDK) AttachedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attached)
}
