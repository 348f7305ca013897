package display

import (
	"errors"

	"github.com/NeowayLabs/touchballs/mode"
)

var (
	ErrNoConnector = errors.New("no connected connectors found")
	ErrNoModes     = errors.New("no modes found")
	ErrNoCrtcs     = errors.New("no crtcs found")
	ErrNoPlanes    = errors.New("no planes found")
)

// Selection is what the backend drives: one connector, its mode, one
// CRTC and one plane.
type Selection struct {
	Connector *mode.Connector
	Mode      mode.Info
	Crtc      *mode.Crtc
	Plane     uint32
}

// Select applies the first-available policy: the first connected
// connector, its first mode (the preferred timing), the first CRTC and
// the first plane, each in the order the device reported them. Nothing is
// scored or matched against encoders.
func Select(t *mode.Topology) (Selection, error) {
	var sel Selection
	for _, c := range t.Connectors {
		if c.Connection == mode.Connected {
			sel.Connector = c
			break
		}
	}
	if sel.Connector == nil {
		return sel, ErrNoConnector
	}
	if len(sel.Connector.Modes) == 0 {
		return sel, ErrNoModes
	}
	sel.Mode = sel.Connector.Modes[0]

	if len(t.Crtcs) == 0 {
		return sel, ErrNoCrtcs
	}
	sel.Crtc = t.Crtcs[0]

	if len(t.Planes) == 0 {
		return sel, ErrNoPlanes
	}
	sel.Plane = t.Planes[0]
	return sel, nil
}

// BufferWidth is the dumb buffer width for a display width. The Touch
// Bar reports 60 pixels but scans out of a 64 pixel wide buffer.
func BufferWidth(width uint16) uint16 {
	if width == 60 {
		return 64
	}
	return width
}

// DirtyRect is the clip sent after every frame. x2 carries the mode
// height and y2 the width. Kept as observed on the Touch Bar until it is
// confirmed on hardware whether the swap accounts for the panel rotation.
func DirtyRect(m mode.Info) mode.ClipRect {
	w, h := m.Size()
	return mode.ClipRect{X1: 0, Y1: 0, X2: h, Y2: w}
}

type binding struct {
	obj   Object
	name  string
	value uint64
}

// BuildActivation resolves every property the first commit touches and
// returns the request. Any missing property fails the whole build, so a
// partial request is never committed.
func BuildActivation(dev Device, sel Selection, blobID, fbID uint32) (*mode.AtomicReq, error) {
	w, h := sel.Mode.Size()
	conn := ConnectorObject(sel.Connector.ID)
	crtc := CrtcObject(sel.Crtc.ID)
	plane := PlaneObject(sel.Plane)

	bindings := []binding{
		{conn, "CRTC_ID", uint64(sel.Crtc.ID)},

		{crtc, "MODE_ID", uint64(blobID)},
		{crtc, "ACTIVE", 1},

		{plane, "FB_ID", uint64(fbID)},
		{plane, "CRTC_ID", uint64(sel.Crtc.ID)},

		// source rectangle is 16.16 fixed point
		{plane, "SRC_X", 0},
		{plane, "SRC_Y", 0},
		{plane, "SRC_W", uint64(w) << 16},
		{plane, "SRC_H", uint64(h) << 16},

		{plane, "CRTC_X", uint64(int64(0))},
		{plane, "CRTC_Y", uint64(int64(0))},
		{plane, "CRTC_W", uint64(w)},
		{plane, "CRTC_H", uint64(h)},
	}

	req := mode.NewAtomicReq()
	for _, b := range bindings {
		id, err := FindProperty(dev, b.obj, b.name)
		if err != nil {
			return nil, err
		}
		req.Add(b.obj.ID, id, b.value)
	}
	return req, nil
}
