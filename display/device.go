package display

import (
	"github.com/NeowayLabs/touchballs/mode"
)

// Device is everything the backend needs from an open card. Card is the
// real implementation; tests substitute fakes.
type Device interface {
	mode.Reader

	Path() string
	SetClientCap(cap, value uint64) error
	SetMaster() error
	DropMaster() error

	ObjectProperties(obj Object) (*mode.ObjectProperties, error)
	Property(id uint32) (*mode.Property, error)
	CreateBlob(data []byte) (uint32, error)
	DestroyBlob(id uint32) error

	CreateDumb(width, height uint16, bpp uint32) (*mode.FB, error)
	DestroyDumb(handle uint32) error
	AddFB(width, height uint16, depth, bpp uint8, pitch, handle uint32) (uint32, error)
	RmFB(id uint32) error
	Map(fb *mode.FB) ([]byte, error)
	Unmap(mem []byte) error

	AtomicCommit(req *mode.AtomicReq, flags uint32) error
	DirtyFB(fbID uint32, clips []mode.ClipRect) error

	Close() error
}

// OpenFunc opens the device node at path.
type OpenFunc func(path string) (Device, error)

// Object identifies a KMS object for property lookups.
type Object struct {
	ID   uint32
	Type uint32
}

func ConnectorObject(id uint32) Object { return Object{ID: id, Type: mode.ObjectConnector} }
func CrtcObject(id uint32) Object      { return Object{ID: id, Type: mode.ObjectCrtc} }
func PlaneObject(id uint32) Object     { return Object{ID: id, Type: mode.ObjectPlane} }
