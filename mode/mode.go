package mode

import (
	"bytes"
	"fmt"
	"os"
	"unsafe"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/ioctl"
)

const (
	DisplayInfoLen   = 32
	ConnectorNameLen = 32
	DisplayModeLen   = 32
	PropNameLen      = 32

	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

type (
	sysResources struct {
		fbIdPtr              uint64
		crtcIdPtr            uint64
		connectorIdPtr       uint64
		encoderIdPtr         uint64
		CountFbs             uint32
		CountCrtcs           uint32
		CountConnectors      uint32
		CountEncoders        uint32
		MinWidth, MaxWidth   uint32
		MinHeight, MaxHeight uint32
	}

	sysGetConnector struct {
		encodersPtr   uint64
		modesPtr      uint64
		propsPtr      uint64
		propValuesPtr uint64

		countModes    uint32
		countProps    uint32
		countEncoders uint32

		encoderID       uint32 // current encoder
		ID              uint32
		connectorType   uint32
		connectorTypeID uint32

		connection        uint32
		mmWidth, mmHeight uint32 // HxW in millimeters
		subpixel          uint32
		pad               uint32
	}

	sysGetEncoder struct {
		id  uint32
		typ uint32

		crtcID uint32

		possibleCrtcs  uint32
		possibleClones uint32
	}

	// Info is struct drm_mode_modeinfo, byte for byte. Its raw bytes are
	// what the MODE_ID property blob carries.
	Info struct {
		Clock                                         uint32
		Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
		Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16

		Vrefresh uint32

		Flags uint32
		Type  uint32
		Name  [DisplayModeLen]uint8
	}

	Resources struct {
		sysResources

		Fbs        []uint32
		Crtcs      []uint32
		Connectors []uint32
		Encoders   []uint32
	}

	Connector struct {
		sysGetConnector

		ID            uint32
		EncoderID     uint32
		Type          uint32
		TypeID        uint32
		Connection    uint8
		Width, Height uint32
		Subpixel      uint8

		Modes []Info

		Props      []uint32
		PropValues []uint64

		Encoders []uint32
	}

	Encoder struct {
		ID   uint32
		Type uint32

		CrtcID uint32

		PossibleCrtcs  uint32
		PossibleClones uint32
	}

	sysCreateDumb struct {
		height, width uint32
		bpp           uint32
		flags         uint32

		// returned values
		handle uint32
		pitch  uint32
		size   uint64
	}

	sysMapDumb struct {
		handle uint32 // Handle for the object being mapped
		pad    uint32

		// Fake offset to use for subsequent mmap call
		// This is a fixed-size type for 32/64 compatibility.
		offset uint64
	}

	sysFBCmd struct {
		fbID          uint32
		width, height uint32
		pitch         uint32
		bpp           uint32
		depth         uint32

		/* driver specific handle */
		handle uint32
	}

	sysCrtc struct {
		setConnectorsPtr uint64
		countConnectors  uint32

		id   uint32
		fbID uint32 // Id of framebuffer

		x, y uint32 // Position on the frameuffer

		gammaSize uint32
		modeValid uint32
		mode      Info
	}

	sysDestroyDumb struct {
		handle uint32
	}

	Crtc struct {
		ID       uint32
		BufferID uint32 // FB id to connect to 0 = disconnect

		X, Y          uint32 // Position on the framebuffer
		Width, Height uint32
		ModeValid     int
		Mode          Info

		GammaSize int // Number of gamma stops
	}

	FB struct {
		Height, Width, BPP, Flags uint32
		Handle                    uint32
		Pitch                     uint32
		Size                      uint64
	}
)

var (
	// DRM_IOWR(0xA0, struct drm_mode_card_res)
	IOCTLModeResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysResources{})), drm.IOCTLBase, 0xA0)

	// DRM_IOWR(0xA1, struct drm_mode_crtc)
	IOCTLModeGetCrtc = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCrtc{})), drm.IOCTLBase, 0xA1)

	// DRM_IOWR(0xA6, struct drm_mode_get_encoder)
	IOCTLModeGetEncoder = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetEncoder{})), drm.IOCTLBase, 0xA6)

	// DRM_IOWR(0xA7, struct drm_mode_get_connector)
	IOCTLModeGetConnector = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetConnector{})), drm.IOCTLBase, 0xA7)

	// DRM_IOWR(0xAE, struct drm_mode_fb_cmd)
	IOCTLModeAddFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysFBCmd{})), drm.IOCTLBase, 0xAE)

	// DRM_IOWR(0xAF, unsigned int)
	IOCTLModeRmFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(uint32(0))), drm.IOCTLBase, 0xAF)

	// DRM_IOWR(0xB2, struct drm_mode_create_dumb)
	IOCTLModeCreateDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateDumb{})), drm.IOCTLBase, 0xB2)

	// DRM_IOWR(0xB3, struct drm_mode_map_dumb)
	IOCTLModeMapDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysMapDumb{})), drm.IOCTLBase, 0xB3)

	// DRM_IOWR(0xB4, struct drm_mode_destroy_dumb)
	IOCTLModeDestroyDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysDestroyDumb{})), drm.IOCTLBase, 0xB4)
)

// Size returns the active area of the mode as (width, height).
func (i Info) Size() (uint16, uint16) {
	return i.Hdisplay, i.Vdisplay
}

func (i Info) String() string {
	return string(bytes.TrimRight(i.Name[:], "\x00"))
}

// Bytes returns the kernel representation of the mode, suitable as the
// payload of a MODE_ID blob.
func (i *Info) Bytes() []byte {
	b := make([]byte, unsafe.Sizeof(*i))
	copy(b, unsafe.Slice((*byte)(unsafe.Pointer(i)), len(b)))
	return b
}

// GetResources lists the ids of every framebuffer, CRTC, encoder and
// connector. It sizes the arrays with a first call and fills them with a
// second; hot-plug between the two only ever shrinks the result.
func GetResources(file *os.File) (*Resources, error) {
	mres := &sysResources{}
	if err := call(file, IOCTLModeResources, unsafe.Pointer(mres)); err != nil {
		return nil, fmt.Errorf("get resources: %w", err)
	}

	fbs := make([]uint32, mres.CountFbs)
	crtcs := make([]uint32, mres.CountCrtcs)
	encoders := make([]uint32, mres.CountEncoders)
	connectors := make([]uint32, mres.CountConnectors)
	mres.fbIdPtr = addr(fbs)
	mres.crtcIdPtr = addr(crtcs)
	mres.encoderIdPtr = addr(encoders)
	mres.connectorIdPtr = addr(connectors)

	if err := call(file, IOCTLModeResources, unsafe.Pointer(mres)); err != nil {
		return nil, fmt.Errorf("get resources: %w", err)
	}

	return &Resources{
		sysResources: *mres,
		Fbs:          clip(fbs, mres.CountFbs),
		Crtcs:        clip(crtcs, mres.CountCrtcs),
		Encoders:     clip(encoders, mres.CountEncoders),
		Connectors:   clip(connectors, mres.CountConnectors),
	}, nil
}

// GetConnector reads a connector with its modes, properties and
// possible encoders. Modes come back in the driver's order, preferred
// first.
func GetConnector(file *os.File, id uint32) (*Connector, error) {
	conn := &sysGetConnector{ID: id}
	if err := call(file, IOCTLModeGetConnector, unsafe.Pointer(conn)); err != nil {
		return nil, fmt.Errorf("get connector %d: %w", id, err)
	}

	props := make([]uint32, conn.countProps)
	values := make([]uint64, conn.countProps)
	modes := make([]Info, conn.countModes)
	encoders := make([]uint32, conn.countEncoders)
	conn.propsPtr = addr(props)
	conn.propValuesPtr = addr(values)
	conn.modesPtr = addr(modes)
	conn.encodersPtr = addr(encoders)

	if err := call(file, IOCTLModeGetConnector, unsafe.Pointer(conn)); err != nil {
		return nil, fmt.Errorf("get connector %d: %w", id, err)
	}

	return &Connector{
		sysGetConnector: *conn,
		ID:              conn.ID,
		EncoderID:       conn.encoderID,
		Type:            conn.connectorType,
		TypeID:          conn.connectorTypeID,
		Connection:      uint8(conn.connection),
		Width:           conn.mmWidth,
		Height:          conn.mmHeight,
		// kernel subpixel enum starts at 0, libdrm's at 1
		Subpixel:   uint8(conn.subpixel + 1),
		Modes:      clip(modes, conn.countModes),
		Props:      clip(props, conn.countProps),
		PropValues: clip(values, conn.countProps),
		Encoders:   clip(encoders, conn.countEncoders),
	}, nil
}

func GetEncoder(file *os.File, id uint32) (*Encoder, error) {
	enc := &sysGetEncoder{id: id}
	if err := call(file, IOCTLModeGetEncoder, unsafe.Pointer(enc)); err != nil {
		return nil, fmt.Errorf("get encoder %d: %w", id, err)
	}
	return &Encoder{
		ID:             enc.id,
		Type:           enc.typ,
		CrtcID:         enc.crtcID,
		PossibleCrtcs:  enc.possibleCrtcs,
		PossibleClones: enc.possibleClones,
	}, nil
}

// CreateFB allocates a dumb buffer object. The kernel picks the pitch;
// it can exceed width*bpp/8.
func CreateFB(file *os.File, width, height uint16, bpp uint32) (*FB, error) {
	req := &sysCreateDumb{width: uint32(width), height: uint32(height), bpp: bpp}
	if err := call(file, IOCTLModeCreateDumb, unsafe.Pointer(req)); err != nil {
		return nil, fmt.Errorf("create dumb buffer %dx%d: %w", width, height, err)
	}
	return &FB{
		Width:  req.width,
		Height: req.height,
		BPP:    req.bpp,
		Handle: req.handle,
		Pitch:  req.pitch,
		Size:   req.size,
	}, nil
}

// AddFB wraps a buffer object in a framebuffer the planes can scan out.
func AddFB(file *os.File, width, height uint16,
	depth, bpp uint8, pitch, boHandle uint32) (uint32, error) {
	req := &sysFBCmd{
		width:  uint32(width),
		height: uint32(height),
		pitch:  pitch,
		bpp:    uint32(bpp),
		depth:  uint32(depth),
		handle: boHandle,
	}
	if err := call(file, IOCTLModeAddFB, unsafe.Pointer(req)); err != nil {
		return 0, fmt.Errorf("add framebuffer: %w", err)
	}
	return req.fbID, nil
}

func RmFB(file *os.File, id uint32) error {
	return call(file, IOCTLModeRmFB, unsafe.Pointer(&id))
}

// MapDumb returns the fake offset to pass to mmap(2) on the device file.
func MapDumb(file *os.File, boHandle uint32) (uint64, error) {
	req := &sysMapDumb{handle: boHandle}
	if err := call(file, IOCTLModeMapDumb, unsafe.Pointer(req)); err != nil {
		return 0, fmt.Errorf("map dumb buffer: %w", err)
	}
	return req.offset, nil
}

func DestroyDumb(file *os.File, handle uint32) error {
	return call(file, IOCTLModeDestroyDumb, unsafe.Pointer(&sysDestroyDumb{handle: handle}))
}

func GetCrtc(file *os.File, id uint32) (*Crtc, error) {
	req := &sysCrtc{id: id}
	if err := call(file, IOCTLModeGetCrtc, unsafe.Pointer(req)); err != nil {
		return nil, fmt.Errorf("get crtc %d: %w", id, err)
	}
	return &Crtc{
		ID:        req.id,
		BufferID:  req.fbID,
		X:         req.x,
		Y:         req.y,
		Width:     uint32(req.mode.Hdisplay),
		Height:    uint32(req.mode.Vdisplay),
		ModeValid: int(req.modeValid),
		Mode:      req.mode,
		GammaSize: int(req.gammaSize),
	}, nil
}
