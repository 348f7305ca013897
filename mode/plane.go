package mode

import (
	"os"
	"unsafe"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/ioctl"
)

type (
	sysPlaneRes struct {
		planeIdPtr  uint64
		countPlanes uint32
		pad         uint32
	}

	sysGetPlane struct {
		id            uint32
		crtcID        uint32
		fbID          uint32
		possibleCrtcs uint32
		gammaSize     uint32

		countFormatTypes uint32
		formatTypePtr    uint64
	}

	Plane struct {
		ID            uint32
		CrtcID        uint32
		BufferID      uint32
		PossibleCrtcs uint32
		GammaSize     uint32
		Formats       []uint32 // fourcc codes
	}
)

var (
	// DRM_IOWR(0xB5, struct drm_mode_get_plane_res)
	IOCTLModeGetPlaneResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysPlaneRes{})), drm.IOCTLBase, 0xB5)

	// DRM_IOWR(0xB6, struct drm_mode_get_plane)
	IOCTLModeGetPlane = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetPlane{})), drm.IOCTLBase, 0xB6)
)

// GetPlaneResources lists every plane id, primary and cursor planes
// included. Without the universal planes client cap only overlays show up.
func GetPlaneResources(file *os.File) ([]uint32, error) {
	res := &sysPlaneRes{}
	err := call(file, IOCTLModeGetPlaneResources, unsafe.Pointer(res))
	if err != nil {
		return nil, err
	}
	if res.countPlanes == 0 {
		return nil, nil
	}

	ids := make([]uint32, res.countPlanes)
	res.planeIdPtr = addr(ids)
	err = call(file, IOCTLModeGetPlaneResources, unsafe.Pointer(res))
	if err != nil {
		return nil, err
	}
	return ids[:min(len(ids), int(res.countPlanes))], nil
}

func GetPlane(file *os.File, id uint32) (*Plane, error) {
	p := &sysGetPlane{id: id}
	err := call(file, IOCTLModeGetPlane, unsafe.Pointer(p))
	if err != nil {
		return nil, err
	}

	var formats []uint32
	if p.countFormatTypes > 0 {
		formats = make([]uint32, p.countFormatTypes)
		p.formatTypePtr = addr(formats)
		err = call(file, IOCTLModeGetPlane, unsafe.Pointer(p))
		if err != nil {
			return nil, err
		}
		formats = formats[:min(len(formats), int(p.countFormatTypes))]
	}

	return &Plane{
		ID:            p.id,
		CrtcID:        p.crtcID,
		BufferID:      p.fbID,
		PossibleCrtcs: p.possibleCrtcs,
		GammaSize:     p.gammaSize,
		Formats:       formats,
	}, nil
}
