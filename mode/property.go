package mode

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/ioctl"
)

// Object types, DRM_MODE_OBJECT_* in drm_mode.h.
const (
	ObjectCrtc      = 0xcccccccc
	ObjectConnector = 0xc0c0c0c0
	ObjectPlane     = 0xeeeeeeee
)

type (
	sysObjGetProperties struct {
		propsPtr      uint64
		propValuesPtr uint64
		countProps    uint32
		objID         uint32
		objType       uint32
		pad           uint32
	}

	sysGetProperty struct {
		valuesPtr     uint64
		enumBlobPtr   uint64
		propID        uint32
		flags         uint32
		name          [PropNameLen]byte
		countValues   uint32
		countEnumBlob uint32
	}

	sysCreateBlob struct {
		data   uint64
		length uint32
		blobID uint32
	}

	sysDestroyBlob struct {
		blobID uint32
	}

	// ObjectProperties is the property set currently attached to a KMS
	// object, ids and values in the same order.
	ObjectProperties struct {
		Props  []uint32
		Values []uint64
	}

	// Property is the metadata of a single property. Enum and range
	// details are not fetched.
	Property struct {
		ID    uint32
		Flags uint32
		Name  string
	}
)

var (
	// DRM_IOWR(0xAA, struct drm_mode_get_property)
	IOCTLModeGetProperty = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetProperty{})), drm.IOCTLBase, 0xAA)

	// DRM_IOWR(0xB9, struct drm_mode_obj_get_properties)
	IOCTLModeObjGetProperties = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysObjGetProperties{})), drm.IOCTLBase, 0xB9)

	// DRM_IOWR(0xBD, struct drm_mode_create_blob)
	IOCTLModeCreatePropBlob = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateBlob{})), drm.IOCTLBase, 0xBD)

	// DRM_IOWR(0xBE, struct drm_mode_destroy_blob)
	IOCTLModeDestroyPropBlob = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysDestroyBlob{})), drm.IOCTLBase, 0xBE)
)

func GetObjectProperties(file *os.File, objID, objType uint32) (*ObjectProperties, error) {
	req := &sysObjGetProperties{objID: objID, objType: objType}
	err := call(file, IOCTLModeObjGetProperties, unsafe.Pointer(req))
	if err != nil {
		return nil, fmt.Errorf("get properties of object %d: %w", objID, err)
	}

	ret := &ObjectProperties{}
	if req.countProps == 0 {
		return ret, nil
	}

	props := make([]uint32, req.countProps)
	values := make([]uint64, req.countProps)
	req.propsPtr = addr(props)
	req.propValuesPtr = addr(values)
	err = call(file, IOCTLModeObjGetProperties, unsafe.Pointer(req))
	if err != nil {
		return nil, fmt.Errorf("get properties of object %d: %w", objID, err)
	}

	n := min(len(props), int(req.countProps))
	ret.Props = props[:n]
	ret.Values = values[:n]
	return ret, nil
}

func GetProperty(file *os.File, propID uint32) (*Property, error) {
	req := &sysGetProperty{propID: propID}
	err := call(file, IOCTLModeGetProperty, unsafe.Pointer(req))
	if err != nil {
		return nil, fmt.Errorf("get property %d: %w", propID, err)
	}
	return &Property{
		ID:    req.propID,
		Flags: req.flags,
		Name:  string(bytes.TrimRight(req.name[:], "\x00")),
	}, nil
}

// CreatePropertyBlob copies data into a kernel-owned blob and returns its
// id. The blob lives until DestroyPropertyBlob or until the file closes.
func CreatePropertyBlob(file *os.File, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("create property blob: empty data")
	}
	req := &sysCreateBlob{
		data:   addr(data),
		length: uint32(len(data)),
	}
	err := call(file, IOCTLModeCreatePropBlob, unsafe.Pointer(req))
	runtime.KeepAlive(data)
	if err != nil {
		return 0, fmt.Errorf("create property blob: %w", err)
	}
	return req.blobID, nil
}

func DestroyPropertyBlob(file *os.File, blobID uint32) error {
	return call(file, IOCTLModeDestroyPropBlob, unsafe.Pointer(&sysDestroyBlob{blobID}))
}
