package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(typ, code uint16, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: typ, Code: code, Value: value}
}

func syn() evdev.InputEvent { return ev(evdev.EV_SYN, evdev.SYN_REPORT, 0) }

func feedAll(d *decoder, evs ...evdev.InputEvent) []rawTouch {
	var out []rawTouch
	for _, e := range evs {
		out = d.feed(e, out)
	}
	return out
}

func TestDecoderMultitouch(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 0),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, 7),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 100),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 50),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 120),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 55),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, -1),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 0),
		syn(),
	)

	assert.Equal(t, []rawTouch{
		{Kind: Down, X: 100, Y: 50},
		{Kind: Motion, X: 120, Y: 50},
		{Kind: Motion, X: 120, Y: 55},
		{Kind: Up},
	}, got)
}

func TestDecoderIgnoresOtherSlots(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 10),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 20),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 1),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 900),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 0),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 11),
		syn(),
	)

	assert.Equal(t, []rawTouch{
		{Kind: Down, X: 10, Y: 20},
		{Kind: Motion, X: 11, Y: 20},
	}, got)
}

func TestDecoderFollowsRemainingFinger(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 0),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, 1),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 100),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 10),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 1),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, 2),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 200),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 20),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 0),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, -1),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 1),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 210),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, -1),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 0),
		syn(),
	)

	assert.Equal(t, []rawTouch{
		{Kind: Down, X: 100, Y: 10},
		{Kind: Up},
		{Kind: Motion, X: 200, Y: 20},
		{Kind: Motion, X: 210, Y: 20},
		{Kind: Up},
	}, got)
}

func TestDecoderDownOnLaterSlot(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_SLOT, 2),
		ev(evdev.EV_ABS, evdev.ABS_MT_TRACKING_ID, 9),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 30),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 40),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 31),
		syn(),
	)

	assert.Equal(t, []rawTouch{
		{Kind: Down, X: 30, Y: 40},
		{Kind: Motion, X: 31, Y: 40},
	}, got)
}

func TestDecoderSingleTouch(t *testing.T) {
	d := newDecoder(false)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 999),
		ev(evdev.EV_ABS, evdev.ABS_X, 3),
		ev(evdev.EV_ABS, evdev.ABS_Y, 4),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
	)
	assert.Equal(t, []rawTouch{{Kind: Down, X: 3, Y: 4}}, got)
}

func TestDecoderTapInOneFrame(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 5),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 6),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 0),
		syn(),
	)
	assert.Equal(t, []rawTouch{{Kind: Down, X: 5, Y: 6}, {Kind: Up}}, got)
}

func TestDecoderMotionWithoutContact(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 5),
		syn(),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 0),
		syn(),
	)
	assert.Empty(t, got)
}

func TestDecoderDropped(t *testing.T) {
	d := newDecoder(true)

	got := feedAll(d,
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 5),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		ev(evdev.EV_SYN, evdev.SYN_DROPPED, 0),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 6),
		syn(),
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 7),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
	)
	assert.Equal(t, []rawTouch{{Kind: Down, X: 5, Y: 7}}, got)
}

func TestScale(t *testing.T) {
	r := AbsRange{Min: 0, Max: 1999}
	assert.InDelta(t, 0, r.Scale(0, 2008), 1e-9)
	assert.InDelta(t, 1004, r.Scale(1000, 2008), 1e-9)
	assert.InDelta(t, 2006.996, r.Scale(1999, 2008), 1e-9)

	off := AbsRange{Min: -100, Max: 99}
	assert.InDelta(t, 30, off.Scale(0, 60), 1e-9)

	assert.Zero(t, AbsRange{Min: 5, Max: 3}.Scale(4, 60))
}

func TestCodeGetAbs(t *testing.T) {
	assert.Equal(t, uint32(0x80184540), codeGetAbs(evdev.ABS_X))
	assert.Equal(t, uint32(0x80184575), codeGetAbs(evdev.ABS_MT_POSITION_X))
	assert.Equal(t, uint32(0x80184576), codeGetAbs(evdev.ABS_MT_POSITION_Y))
}

func TestReadSeat(t *testing.T) {
	for name, tc := range map[string]struct {
		db   string
		want string
	}{
		"tagged":   {"I:123\nE:ID_INPUT=1\nE:ID_SEAT=seat-touchbar\nG:seat\n", "seat-touchbar"},
		"untagged": {"I:123\nE:ID_INPUT=1\n", DefaultSeat},
		"empty":    {"", DefaultSeat},
		"blank":    {"E:ID_SEAT=\n", DefaultSeat},
	} {
		t.Run(name, func(t *testing.T) {
			seat, err := readSeat(strings.NewReader(tc.db))
			require.NoError(t, err)
			assert.Equal(t, tc.want, seat)
		})
	}
}

func TestSeatOfRejectsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := SeatOf(t.TempDir(), path)
	assert.ErrorContains(t, err, "not a character device")

	_, err = SeatOf(t.TempDir(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestSeatOfCharDevice(t *testing.T) {
	// /dev/null is c1:3 on every Linux system
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c1:3"), []byte("E:ID_SEAT=seat1\n"), 0o600))

	seat, err := SeatOf(dir, "/dev/null")
	require.NoError(t, err)
	assert.Equal(t, "seat1", seat)

	seat, err = SeatOf(t.TempDir(), "/dev/null")
	require.NoError(t, err)
	assert.Equal(t, DefaultSeat, seat)
}

func touchscreen(mt bool) *evdev.InputDevice {
	abs := []int{evdev.ABS_X, evdev.ABS_Y}
	if mt {
		abs = append(abs, evdev.ABS_MT_SLOT, evdev.ABS_MT_POSITION_X, evdev.ABS_MT_POSITION_Y)
	}
	return &evdev.InputDevice{CapabilitiesFlat: map[int][]int{
		evdev.EV_ABS: abs,
		evdev.EV_KEY: {evdev.BTN_TOUCH},
	}}
}

func TestIsTouch(t *testing.T) {
	assert.True(t, IsTouch(touchscreen(true)))
	assert.True(t, IsTouch(touchscreen(false)))
	assert.True(t, isMultitouch(touchscreen(true)))
	assert.False(t, isMultitouch(touchscreen(false)))

	tablet := &evdev.InputDevice{CapabilitiesFlat: map[int][]int{
		evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y},
		evdev.EV_KEY: {evdev.BTN_LEFT},
	}}
	assert.False(t, IsTouch(tablet))

	mouse := &evdev.InputDevice{CapabilitiesFlat: map[int][]int{
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
		evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_TOUCH},
	}}
	assert.False(t, IsTouch(mouse))
	assert.False(t, IsTouch(&evdev.InputDevice{}))
}

func TestPickSeat(t *testing.T) {
	a := candidate{dev: &evdev.InputDevice{Fn: "a"}, seat: "seat-touchbar"}
	b := candidate{dev: &evdev.InputDevice{Fn: "b"}, seat: "seat0"}
	c := candidate{dev: &evdev.InputDevice{Fn: "c"}, seat: "seat0"}

	got, seat := pickSeat([]candidate{b, a, c}, "seat-touchbar", "seat0")
	assert.Equal(t, "seat-touchbar", seat)
	assert.Equal(t, []candidate{a}, got)

	got, seat = pickSeat([]candidate{b, c}, "seat-touchbar", "seat0")
	assert.Equal(t, "seat0", seat)
	assert.Equal(t, []candidate{b, c}, got)

	got, seat = pickSeat([]candidate{a}, "seat1", "seat0")
	assert.Empty(t, seat)
	assert.Empty(t, got)
}

type fakeReader struct {
	batches [][]evdev.InputEvent
	err     error
	closed  bool
}

func (f *fakeReader) Ready() (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return len(f.batches) > 0, nil
}

func (f *fakeReader) Read() ([]evdev.InputEvent, error) {
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeReader) Close() error { f.closed = true; return nil }

func TestDispatch(t *testing.T) {
	r := &fakeReader{batches: [][]evdev.InputEvent{
		{
			ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 500),
			ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 50),
			ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
			syn(),
		},
		{
			ev(evdev.EV_KEY, evdev.BTN_TOUCH, 0),
			syn(),
		},
	}}
	s := &Source{
		width:  60,
		height: 2008,
		devices: []*touchDevice{{
			path: "/dev/input/event3",
			r:    r,
			xr:   AbsRange{Min: 0, Max: 999},
			yr:   AbsRange{Min: 0, Max: 99},
			dec:  newDecoder(true),
		}},
	}

	evs, err := s.Dispatch()
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, Down, evs[0].Kind)
	assert.InDelta(t, 1004, evs[0].X, 1e-9)
	assert.InDelta(t, 30, evs[0].Y, 1e-9)
	assert.Equal(t, Event{Kind: Up}, evs[1])
	assert.Empty(t, r.batches)

	evs, err = s.Dispatch()
	require.NoError(t, err)
	assert.Empty(t, evs, "drained")
}

func TestDispatchCompletesSplitFrame(t *testing.T) {
	// one frame arriving over two reads
	r := &fakeReader{batches: [][]evdev.InputEvent{
		{
			ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 100),
			ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_Y, 10),
		},
		{
			ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
			syn(),
		},
	}}
	s := &Source{
		width:  60,
		height: 2008,
		devices: []*touchDevice{{
			path: "/dev/input/event3",
			r:    r,
			xr:   AbsRange{Min: 0, Max: 2007},
			yr:   AbsRange{Min: 0, Max: 59},
			dec:  newDecoder(true),
		}},
	}

	evs, err := s.Dispatch()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: Down, X: 100, Y: 10}}, evs)
	assert.Empty(t, r.batches)
}

func TestDispatchPressureOnlyFrames(t *testing.T) {
	var batches [][]evdev.InputEvent
	for i := int32(0); i < 5; i++ {
		batches = append(batches, []evdev.InputEvent{
			ev(evdev.EV_ABS, evdev.ABS_MT_PRESSURE, 30+i),
			syn(),
		})
	}
	batches = append(batches, []evdev.InputEvent{
		ev(evdev.EV_ABS, evdev.ABS_MT_POSITION_X, 4),
		ev(evdev.EV_KEY, evdev.BTN_TOUCH, 1),
		syn(),
	})
	r := &fakeReader{batches: batches}
	s := &Source{
		width:  60,
		height: 2008,
		devices: []*touchDevice{{
			path: "/dev/input/event3",
			r:    r,
			xr:   AbsRange{Min: 0, Max: 2007},
			yr:   AbsRange{Min: 0, Max: 59},
			dec:  newDecoder(true),
		}},
	}

	evs, err := s.Dispatch()
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: Down, X: 4, Y: 0}}, evs)
	assert.Empty(t, r.batches)
}

func TestDispatchDropsDeadDevice(t *testing.T) {
	dead := &fakeReader{err: errors.New("/dev/input/event3: device gone")}
	s := &Source{devices: []*touchDevice{{path: "/dev/input/event3", r: dead, dec: newDecoder(true)}}}

	_, err := s.Dispatch()
	assert.ErrorContains(t, err, "device gone")
	assert.True(t, dead.closed)
	assert.Zero(t, s.Devices())

	evs, err := s.Dispatch()
	assert.NoError(t, err)
	assert.Empty(t, evs)
}

func TestEmptySource(t *testing.T) {
	s := &Source{}
	evs, err := s.Dispatch()
	assert.NoError(t, err)
	assert.Empty(t, evs)
	assert.NoError(t, s.Close())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "motion", Motion.String())
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
