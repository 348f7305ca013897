package input

import (
	"fmt"
	"slices"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// Info describes an evdev node for listings.
type Info struct {
	Path  string
	Name  string
	Seat  string
	Touch bool
}

// IsTouch reports whether dev is a touchscreen: absolute positions plus
// BTN_TOUCH.
func IsTouch(dev *evdev.InputDevice) bool {
	abs := dev.CapabilitiesFlat[evdev.EV_ABS]
	keys := dev.CapabilitiesFlat[evdev.EV_KEY]
	hasPos := slices.Contains(abs, evdev.ABS_MT_POSITION_X) || slices.Contains(abs, evdev.ABS_X)
	return hasPos && slices.Contains(keys, evdev.BTN_TOUCH)
}

func isMultitouch(dev *evdev.InputDevice) bool {
	return slices.Contains(dev.CapabilitiesFlat[evdev.EV_ABS], evdev.ABS_MT_POSITION_X)
}

// eventReader is the part of an evdev node the dispatcher needs.
type eventReader interface {
	// Ready reports whether a read would not block.
	Ready() (bool, error)
	Read() ([]evdev.InputEvent, error)
	Close() error
}

type evdevReader struct {
	dev *evdev.InputDevice
}

func (r evdevReader) Ready() (bool, error) {
	fds := []unix.PollFd{{Fd: int32(r.dev.File.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err == unix.EINTR {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, fmt.Errorf("%s: hangup", r.dev.Fn)
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

func (r evdevReader) Read() ([]evdev.InputEvent, error) { return r.dev.Read() }
func (r evdevReader) Close() error                      { return r.dev.File.Close() }

// touchDevice is an open touchscreen with its axis ranges.
type touchDevice struct {
	path   string
	name   string
	r      eventReader
	xr, yr AbsRange
	dec    *decoder
}

func newTouchDevice(dev *evdev.InputDevice) (*touchDevice, error) {
	mt := isMultitouch(dev)
	dec := newDecoder(mt)
	fd := dev.File.Fd()

	xr, err := getAbsRange(fd, dec.xCode)
	if err != nil {
		return nil, fmt.Errorf("%s: x range: %w", dev.Fn, err)
	}
	yr, err := getAbsRange(fd, dec.yCode)
	if err != nil {
		return nil, fmt.Errorf("%s: y range: %w", dev.Fn, err)
	}
	return &touchDevice{
		path: dev.Fn,
		name: dev.Name,
		r:    evdevReader{dev: dev},
		xr:   xr,
		yr:   yr,
		dec:  dec,
	}, nil
}
