package input

import (
	"maps"
	"slices"

	evdev "github.com/gvalkov/golang-evdev"
)

// Kind is the phase of a touch event.
type Kind uint8

const (
	Down Kind = iota + 1
	Motion
	Up
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Motion:
		return "motion"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// rawTouch is a decoded contact in device units.
type rawTouch struct {
	Kind Kind
	X, Y int32
}

// contact is the last known state of one multitouch slot.
type contact struct {
	x, y   int32
	active bool
}

// decoder turns an evdev frame stream into down/motion/up for a single
// contact. When the followed finger lifts while another stays down, the
// decoder reports Up and then follows the lowest remaining slot. Frames
// end at SYN_REPORT; a SYN_DROPPED discards everything up to the next
// report.
type decoder struct {
	xCode, yCode uint16
	mt           bool

	slot     int32
	track    int32
	slots    map[int32]*contact
	touching bool

	moved    bool
	pressed  bool
	released bool
	lifted   bool
	dropped  bool
}

func newDecoder(mt bool) *decoder {
	d := &decoder{mt: mt, xCode: evdev.ABS_X, yCode: evdev.ABS_Y, slots: map[int32]*contact{}}
	if mt {
		d.xCode, d.yCode = evdev.ABS_MT_POSITION_X, evdev.ABS_MT_POSITION_Y
	}
	return d
}

func (d *decoder) at(slot int32) *contact {
	c, ok := d.slots[slot]
	if !ok {
		c = &contact{}
		d.slots[slot] = c
	}
	return c
}

// feed consumes one event and appends any completed touches to out.
func (d *decoder) feed(ev evdev.InputEvent, out []rawTouch) []rawTouch {
	switch ev.Type {
	case evdev.EV_SYN:
		switch ev.Code {
		case evdev.SYN_DROPPED:
			d.dropped = true
			d.reset()
		case evdev.SYN_REPORT:
			if d.dropped {
				d.dropped = false
				d.reset()
				return out
			}
			return d.report(out)
		}
	case evdev.EV_KEY:
		if ev.Code == evdev.BTN_TOUCH && !d.dropped {
			if ev.Value != 0 {
				d.pressed = true
			} else {
				d.released = true
			}
		}
	case evdev.EV_ABS:
		if d.dropped {
			return out
		}
		switch ev.Code {
		case evdev.ABS_MT_SLOT:
			if d.mt {
				d.slot = ev.Value
			}
		case evdev.ABS_MT_TRACKING_ID:
			if !d.mt {
				break
			}
			c := d.at(d.slot)
			c.active = ev.Value >= 0
			if !c.active && d.slot == d.track {
				d.lifted = true
			}
		case d.xCode:
			d.at(d.slot).x = ev.Value
			if d.slot == d.track {
				d.moved = true
			}
		case d.yCode:
			d.at(d.slot).y = ev.Value
			if d.slot == d.track {
				d.moved = true
			}
		}
	}
	return out
}

func (d *decoder) report(out []rawTouch) []rawTouch {
	defer d.reset()
	switch {
	case d.pressed && !d.touching:
		if c := d.slots[d.track]; c == nil || !c.active {
			if next, ok := d.nextActive(); ok {
				d.track = next
			}
		}
		c := d.at(d.track)
		out = append(out, rawTouch{Kind: Down, X: c.x, Y: c.y})
		d.touching = true
		if d.released || d.lifted {
			out = append(out, rawTouch{Kind: Up})
			d.touching = false
		}
	case (d.released || d.lifted) && d.touching:
		out = append(out, rawTouch{Kind: Up})
		d.touching = false
		if d.released {
			break
		}
		if next, ok := d.nextActive(); ok {
			d.track = next
			c := d.at(next)
			out = append(out, rawTouch{Kind: Motion, X: c.x, Y: c.y})
			d.touching = true
		}
	case d.moved && d.touching:
		c := d.at(d.track)
		out = append(out, rawTouch{Kind: Motion, X: c.x, Y: c.y})
	}
	return out
}

// nextActive is the lowest slot that still holds a contact.
func (d *decoder) nextActive() (int32, bool) {
	for _, slot := range slices.Sorted(maps.Keys(d.slots)) {
		if d.slots[slot].active {
			return slot, true
		}
	}
	return 0, false
}

func (d *decoder) reset() {
	d.moved, d.pressed, d.released, d.lifted = false, false, false, false
}
