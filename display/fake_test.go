package display

import (
	"errors"
	"fmt"
	"sort"

	"github.com/NeowayLabs/touchballs/mode"
)

var errIO = errors.New("input/output error")

var (
	connectorProps = []string{"EDID", "DPMS", "CRTC_ID", "link-status"}
	crtcProps      = []string{"ACTIVE", "MODE_ID", "VRR_ENABLED"}
	planeProps     = []string{"type", "FB_ID", "CRTC_ID", "SRC_X", "SRC_Y", "SRC_W", "SRC_H",
		"CRTC_X", "CRTC_Y", "CRTC_W", "CRTC_H"}
)

// fakeDevice is a scriptable card. Property ids are objectID*100+index.
type fakeDevice struct {
	path string

	connectors []*mode.Connector
	crtcs      []*mode.Crtc
	planes     []uint32
	props      map[uint32][]string // object id -> property names

	failMaster bool
	failCommit bool

	master    bool
	closed    int
	committed *mode.AtomicReq
	flags     uint32
	dirty     [][]mode.ClipRect
	mem       []byte
	blobs     map[uint32][]byte
	fbs       map[uint32]bool
	dumbs     map[uint32]bool
	nextID    uint32
}

func newFakeDevice(path string, width, height uint16) *fakeDevice {
	m := mode.Info{Hdisplay: width, Vdisplay: height, Vrefresh: 60, Clock: 8000}
	copy(m.Name[:], fmt.Sprintf("%dx%d", width, height))
	d := &fakeDevice{
		path: path,
		connectors: []*mode.Connector{
			{ID: 10, Connection: mode.Disconnected},
			{ID: 11, Connection: mode.Connected, Modes: []mode.Info{m, {Hdisplay: 1, Vdisplay: 1}}},
		},
		crtcs:  []*mode.Crtc{{ID: 20}, {ID: 21}},
		planes: []uint32{30, 31},
		props:  map[uint32][]string{},
		blobs:  map[uint32][]byte{},
		fbs:    map[uint32]bool{},
		dumbs:  map[uint32]bool{},
		nextID: 1000,
	}
	for _, c := range d.connectors {
		d.props[c.ID] = connectorProps
	}
	for _, c := range d.crtcs {
		d.props[c.ID] = crtcProps
	}
	for _, p := range d.planes {
		d.props[p] = planeProps
	}
	return d
}

func (d *fakeDevice) opener() OpenFunc {
	return func(string) (Device, error) { return d, nil }
}

func (d *fakeDevice) withoutProp(obj uint32, name string) *fakeDevice {
	var kept []string
	for _, p := range d.props[obj] {
		if p != name {
			kept = append(kept, p)
		}
	}
	d.props[obj] = kept
	return d
}

func (d *fakeDevice) propID(obj uint32, name string) uint32 {
	for i, p := range d.props[obj] {
		if p == name {
			return obj*100 + uint32(i)
		}
	}
	return 0
}

func (d *fakeDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) Path() string                   { return d.path }
func (d *fakeDevice) SetClientCap(_, _ uint64) error { return nil }

func (d *fakeDevice) SetMaster() error {
	if d.failMaster {
		return errors.New("acquire master lock: device or resource busy")
	}
	d.master = true
	return nil
}

func (d *fakeDevice) DropMaster() error { d.master = false; return nil }

func (d *fakeDevice) Resources() (*mode.Resources, error) {
	res := &mode.Resources{}
	for _, c := range d.connectors {
		res.Connectors = append(res.Connectors, c.ID)
	}
	for _, c := range d.crtcs {
		res.Crtcs = append(res.Crtcs, c.ID)
	}
	return res, nil
}

func (d *fakeDevice) Connector(id uint32) (*mode.Connector, error) {
	for _, c := range d.connectors {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errIO
}

func (d *fakeDevice) Crtc(id uint32) (*mode.Crtc, error) {
	for _, c := range d.crtcs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errIO
}

func (d *fakeDevice) Planes() ([]uint32, error) { return d.planes, nil }

func (d *fakeDevice) ObjectProperties(obj Object) (*mode.ObjectProperties, error) {
	names, ok := d.props[obj.ID]
	if !ok {
		return nil, errIO
	}
	ret := &mode.ObjectProperties{}
	for i := range names {
		ret.Props = append(ret.Props, obj.ID*100+uint32(i))
		ret.Values = append(ret.Values, 0)
	}
	return ret, nil
}

func (d *fakeDevice) Property(id uint32) (*mode.Property, error) {
	names := d.props[id/100]
	i := int(id % 100)
	if i >= len(names) {
		return nil, errIO
	}
	return &mode.Property{ID: id, Name: names[i]}, nil
}

func (d *fakeDevice) CreateBlob(data []byte) (uint32, error) {
	id := d.id()
	d.blobs[id] = append([]byte(nil), data...)
	return id, nil
}

func (d *fakeDevice) DestroyBlob(id uint32) error { delete(d.blobs, id); return nil }

func (d *fakeDevice) CreateDumb(width, height uint16, bpp uint32) (*mode.FB, error) {
	h := d.id()
	d.dumbs[h] = true
	pitch := (uint32(width)*bpp/8 + 63) &^ 63
	return &mode.FB{Width: uint32(width), Height: uint32(height), BPP: bpp, Handle: h,
		Pitch: pitch, Size: uint64(pitch) * uint64(height)}, nil
}

func (d *fakeDevice) DestroyDumb(handle uint32) error { delete(d.dumbs, handle); return nil }

func (d *fakeDevice) AddFB(_, _ uint16, _, _ uint8, _, handle uint32) (uint32, error) {
	if !d.dumbs[handle] {
		return 0, errIO
	}
	id := d.id()
	d.fbs[id] = true
	return id, nil
}

func (d *fakeDevice) RmFB(id uint32) error { delete(d.fbs, id); return nil }

func (d *fakeDevice) Map(fb *mode.FB) ([]byte, error) {
	d.mem = make([]byte, fb.Size)
	return d.mem, nil
}

func (d *fakeDevice) Unmap([]byte) error { d.mem = nil; return nil }

func (d *fakeDevice) AtomicCommit(req *mode.AtomicReq, flags uint32) error {
	if d.failCommit {
		return errors.New("atomic commit: invalid argument")
	}
	d.committed = req
	d.flags = flags
	return nil
}

func (d *fakeDevice) DirtyFB(_ uint32, clips []mode.ClipRect) error {
	d.dirty = append(d.dirty, clips)
	return nil
}

func (d *fakeDevice) Close() error { d.closed++; return nil }

// leaked reports kernel objects still alive on the fake.
func (d *fakeDevice) leaked() []string {
	var out []string
	for id := range d.blobs {
		out = append(out, fmt.Sprintf("blob %d", id))
	}
	for id := range d.fbs {
		out = append(out, fmt.Sprintf("fb %d", id))
	}
	for id := range d.dumbs {
		out = append(out, fmt.Sprintf("dumb %d", id))
	}
	if d.master {
		out = append(out, "master")
	}
	sort.Strings(out)
	return out
}

// devices opens fakes by path.
type devices map[string]*fakeDevice

func (ds devices) open(path string) (Device, error) {
	d, ok := ds[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file or directory", path)
	}
	return d, nil
}
