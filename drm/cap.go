package drm

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/NeowayLabs/touchballs/ioctl"
)

type (
	// shared by drm_get_cap and drm_set_client_cap, both are {u64, u64}
	capability struct {
		cap uint64
		val uint64
	}
)

const (
	CapDumbBuffer = iota + 1
	CapVBlankHighCRTC
	CapDumbPreferredDepth
	CapDumbPreferShadow
	CapPrime
	CapTimestampMonotonic
	CapAsyncPageFlip

	CapAddFB2Modifiers = 0x10
)

// Client capabilities, see DRM_CLIENT_CAP_* in drm.h.
const (
	ClientCapStereo3D = iota + 1
	ClientCapUniversalPlanes
	ClientCapAtomic
	ClientCapAspectRatio
	ClientCapWritebackConnectors
)

func GetCap(file *os.File, cap uint64) (uint64, error) {
	c := &capability{cap: cap}
	err := ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLGetCap), uintptr(unsafe.Pointer(c)))
	if err != nil {
		return 0, err
	}
	return c.val, nil
}

func HasDumbBuffer(file *os.File) bool {
	val, err := GetCap(file, CapDumbBuffer)
	if err != nil {
		return false
	}
	return val != 0
}

// SetClientCap asks the kernel to expose an optional part of the uAPI to
// this file description. Atomic implies universal planes on most drivers
// but both are requested explicitly.
func SetClientCap(file *os.File, cap, value uint64) error {
	c := &capability{cap: cap, val: value}
	err := ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLSetClientCap), uintptr(unsafe.Pointer(c)))
	if err != nil {
		return fmt.Errorf("set client cap %d: %w", cap, err)
	}
	return nil
}

// SetMaster takes the DRM master lock. Only the master may change modes,
// and the lock stays with the file until DropMaster or close.
func SetMaster(file *os.File) error {
	if err := ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLSetMaster), 0); err != nil {
		return fmt.Errorf("acquire master lock: %w", err)
	}
	return nil
}

func DropMaster(file *os.File) error {
	if err := ioctl.Do(uintptr(file.Fd()), uintptr(IOCTLDropMaster), 0); err != nil {
		return fmt.Errorf("drop master lock: %w", err)
	}
	return nil
}
