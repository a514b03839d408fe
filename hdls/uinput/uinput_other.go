//go:build !linux

package uinput

import (
	"errors"

	"github.com/padlink/padlink/hdls"
)

var errUnsupported = errors.New("uinput: virtual devices require linux")

// SDK is only available on Linux.
type SDK struct{}

func New() (*SDK, error) { return nil, errUnsupported }

func (s *SDK) Attach(hdls.DeviceConfig) (hdls.Handle, error) { return 0, errUnsupported }
func (s *SDK) SetState(hdls.Handle, hdls.State) error        { return errUnsupported }
func (s *SDK) Detach(hdls.Handle) error                      { return errUnsupported }
