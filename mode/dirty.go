package mode

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/ioctl"
)

type (
	// ClipRect is struct drm_clip_rect; x2/y2 are exclusive.
	ClipRect struct {
		X1, Y1, X2, Y2 uint16
	}

	sysFBDirty struct {
		fbID     uint32
		flags    uint32
		color    uint32
		numClips uint32
		clipsPtr uint64
	}
)

// DRM_MODE_FB_DIRTY_MAX_CLIPS
const MaxDirtyClips = 256

var (
	// DRM_IOWR(0xB1, struct drm_mode_fb_dirty_cmd)
	IOCTLModeDirtyFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysFBDirty{})), drm.IOCTLBase, 0xB1)
)

// DirtyFB tells the driver which parts of a framebuffer changed so it can
// push them to the panel. Drivers without a dirty hook return ENOSYS.
func DirtyFB(file *os.File, fbID uint32, clips []ClipRect) error {
	if len(clips) > MaxDirtyClips {
		return fmt.Errorf("dirty fb: %d clips exceeds %d", len(clips), MaxDirtyClips)
	}
	cmd := &sysFBDirty{fbID: fbID, numClips: uint32(len(clips))}
	if len(clips) > 0 {
		cmd.clipsPtr = addr(clips)
	}
	err := call(file, IOCTLModeDirtyFB, unsafe.Pointer(cmd))
	runtime.KeepAlive(clips)
	if err != nil {
		return fmt.Errorf("dirty fb %d: %w", fbID, err)
	}
	return nil
}
