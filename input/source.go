package input

import (
	"errors"
	"fmt"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/NeowayLabs/touchballs/internal/logger"
)

// Event is a touch in display units. X runs along the panel's long side
// and is scaled to the display height, Y is scaled to the display width.
type Event struct {
	Kind Kind
	X, Y float64
}

// Options select which devices a Source reads.
type Options struct {
	Glob         string
	UdevDir      string
	Seat         string
	FallbackSeat string

	// Display size the coordinates are scaled to.
	Width, Height int
}

// Source is a non-blocking touch event pump over the touchscreens of one
// seat. A Source with no devices is valid and never yields events.
type Source struct {
	devices       []*touchDevice
	width, height int
	seat          string
	raw           []rawTouch
}

type candidate struct {
	dev  *evdev.InputDevice
	seat string
}

// List describes every evdev node matching glob.
func List(glob, udevDir string) ([]Info, error) {
	devs, err := evdev.ListInputDevices(glob)
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}
	infos := make([]Info, 0, len(devs))
	for _, dev := range devs {
		seat, err := SeatOf(udevDir, dev.Fn)
		if err != nil {
			seat = "?"
		}
		infos = append(infos, Info{Path: dev.Fn, Name: dev.Name, Seat: seat, Touch: IsTouch(dev)})
		dev.File.Close()
	}
	return infos, nil
}

// Open binds the touchscreens of opts.Seat, falling back to
// opts.FallbackSeat. Failing both, it logs and returns an empty Source.
func Open(opts Options) (*Source, error) {
	devs, err := evdev.ListInputDevices(opts.Glob)
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	var cands []candidate
	for _, dev := range devs {
		if !IsTouch(dev) {
			dev.File.Close()
			continue
		}
		seat, err := SeatOf(opts.UdevDir, dev.Fn)
		if err != nil {
			logger.Debug("skipping input device", "path", dev.Fn, "err", err)
			dev.File.Close()
			continue
		}
		cands = append(cands, candidate{dev: dev, seat: seat})
	}

	chosen, seat := pickSeat(cands, opts.Seat, opts.FallbackSeat)
	for _, c := range cands {
		if !containsDev(chosen, c.dev) {
			c.dev.File.Close()
		}
	}

	s := &Source{width: opts.Width, height: opts.Height, seat: seat}
	for _, c := range chosen {
		td, err := newTouchDevice(c.dev)
		if err != nil {
			logger.Warn("cannot use touch device", "err", err)
			c.dev.File.Close()
			continue
		}
		logger.Info("touch device bound", "path", td.path, "name", td.name, "seat", seat)
		s.devices = append(s.devices, td)
	}
	return s, nil
}

func pickSeat(cands []candidate, primary, fallback string) ([]candidate, string) {
	for _, seat := range []string{primary, fallback} {
		if seat == "" {
			continue
		}
		var on []candidate
		for _, c := range cands {
			if c.seat == seat {
				on = append(on, c)
			}
		}
		if len(on) > 0 {
			return on, seat
		}
		logger.Warnf("Could not assign %s: no touch devices on seat", seat)
	}
	return nil, ""
}

func containsDev(cands []candidate, dev *evdev.InputDevice) bool {
	for _, c := range cands {
		if c.dev == dev {
			return true
		}
	}
	return false
}

// Seat is the seat the source is bound to, empty if none.
func (s *Source) Seat() string { return s.seat }

// Devices is the number of bound touchscreens.
func (s *Source) Devices() int { return len(s.devices) }

// Dispatch reads every device until it has nothing more to give and
// returns the touches decoded from it. Frames split across reads are
// completed within the same call, so an empty result means no device was
// readable.
func (s *Source) Dispatch() ([]Event, error) {
	var events []Event
	var errs []error
	live := s.devices[:0]
	for _, d := range s.devices {
		evs, err := s.pump(d)
		if errors.Is(err, errDeviceGone) {
			logger.Warn("dropping touch device", "path", d.path, "err", err)
			errs = append(errs, err, d.r.Close())
			continue
		}
		live = append(live, d)
		events = append(events, evs...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	s.devices = live
	return events, errors.Join(errs...)
}

var errDeviceGone = errors.New("device gone")

func (s *Source) pump(d *touchDevice) ([]Event, error) {
	var events []Event
	for {
		ready, err := d.r.Ready()
		if err != nil {
			return events, fmt.Errorf("%w: %w", errDeviceGone, err)
		}
		if !ready {
			return events, nil
		}
		evs, err := d.r.Read()
		if err != nil {
			return events, fmt.Errorf("%s: %w", d.path, err)
		}
		s.raw = s.raw[:0]
		for _, ev := range evs {
			s.raw = d.dec.feed(ev, s.raw)
		}
		for _, t := range s.raw {
			events = append(events, Event{
				Kind: t.Kind,
				X:    d.xr.Scale(t.X, s.height),
				Y:    d.yr.Scale(t.Y, s.width),
			})
		}
	}
}

func (s *Source) Close() error {
	var errs []error
	for _, d := range s.devices {
		errs = append(errs, d.r.Close())
	}
	s.devices = nil
	return errors.Join(errs...)
}
