package display

import (
	"fmt"
	"os"

	"launchpad.net/gommap"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/mode"
)

// Card is a Device backed by a DRM device node.
type Card struct {
	file *os.File
	path string
}

var _ Device = (*Card)(nil)

// OpenCard opens path read-write. It satisfies OpenFunc.
func OpenCard(path string) (Device, error) {
	file, err := drm.Open(path)
	if err != nil {
		return nil, err
	}
	return &Card{file: file, path: path}, nil
}

func (c *Card) Path() string { return c.path }

func (c *Card) SetClientCap(cap, value uint64) error { return drm.SetClientCap(c.file, cap, value) }
func (c *Card) SetMaster() error                     { return drm.SetMaster(c.file) }
func (c *Card) DropMaster() error                    { return drm.DropMaster(c.file) }

func (c *Card) Resources() (*mode.Resources, error)         { return mode.GetResources(c.file) }
func (c *Card) Connector(id uint32) (*mode.Connector, error) { return mode.GetConnector(c.file, id) }
func (c *Card) Crtc(id uint32) (*mode.Crtc, error)           { return mode.GetCrtc(c.file, id) }
func (c *Card) Planes() ([]uint32, error)                    { return mode.GetPlaneResources(c.file) }

func (c *Card) ObjectProperties(obj Object) (*mode.ObjectProperties, error) {
	return mode.GetObjectProperties(c.file, obj.ID, obj.Type)
}

func (c *Card) Property(id uint32) (*mode.Property, error) { return mode.GetProperty(c.file, id) }

func (c *Card) CreateBlob(data []byte) (uint32, error) {
	return mode.CreatePropertyBlob(c.file, data)
}

func (c *Card) DestroyBlob(id uint32) error { return mode.DestroyPropertyBlob(c.file, id) }

func (c *Card) CreateDumb(width, height uint16, bpp uint32) (*mode.FB, error) {
	return mode.CreateFB(c.file, width, height, bpp)
}

func (c *Card) DestroyDumb(handle uint32) error { return mode.DestroyDumb(c.file, handle) }

func (c *Card) AddFB(width, height uint16, depth, bpp uint8, pitch, handle uint32) (uint32, error) {
	return mode.AddFB(c.file, width, height, depth, bpp, pitch, handle)
}

func (c *Card) RmFB(id uint32) error { return mode.RmFB(c.file, id) }

// Map maps the whole dumb buffer shared and writable.
func (c *Card) Map(fb *mode.FB) ([]byte, error) {
	offset, err := mode.MapDumb(c.file, fb.Handle)
	if err != nil {
		return nil, err
	}
	mem, err := gommap.MapAt(0, c.file.Fd(), int64(offset), int64(fb.Size),
		gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap framebuffer: %w", err)
	}
	return mem, nil
}

func (c *Card) Unmap(mem []byte) error {
	return gommap.MMap(mem).UnsafeUnmap()
}

func (c *Card) AtomicCommit(req *mode.AtomicReq, flags uint32) error {
	return mode.AtomicCommit(c.file, req, flags)
}

func (c *Card) DirtyFB(fbID uint32, clips []mode.ClipRect) error {
	return mode.DirtyFB(c.file, fbID, clips)
}

func (c *Card) Close() error { return c.file.Close() }
