package ioctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Request codes follow the generic Linux layout (asm-generic/ioctl.h):
//
//  bits    meaning
//  31-30	direction: 00 none, 01 write, 10 read, 11 read/write
//  29-16	size of the argument struct
//  15-8	driver type ('d' for DRM, 'E' for evdev)
//  7-0	function number
//
// So DRM_IOWR(0xA0, struct drm_mode_card_res) on a 64-bit kernel is
// 0xC04064A0: read/write, 0x40 bytes, 'd', function 0xA0.

const (
	None  = uint8(0x0)
	Write = uint8(0x1)
	Read  = uint8(0x2)

	maxSize = 1<<14 - 1
)

func NewCode(typ uint8, sz uint16, uniq, fn uint8) uint32 {
	var code uint32
	if typ > Write|Read {
		panic(fmt.Errorf("invalid ioctl code value: %d", typ))
	}

	if sz > maxSize {
		panic(fmt.Errorf("invalid ioctl size value: %d", sz))
	}

	code = code | (uint32(typ) << 30)
	code = code | (uint32(sz) << 16) // sz has 14bits
	code = code | (uint32(uniq) << 8)
	code = code | uint32(fn)
	return code
}

// IO, IOR, IOW and IOWR mirror the kernel macros of the same name.
func IO(uniq, fn uint8) uint32 { return NewCode(None, 0, uniq, fn) }

func IOR(uniq, fn uint8, sz uintptr) uint32 { return NewCode(Read, uint16(sz), uniq, fn) }

func IOW(uniq, fn uint8, sz uintptr) uint32 { return NewCode(Write, uint16(sz), uniq, fn) }

func IOWR(uniq, fn uint8, sz uintptr) uint32 {
	return NewCode(Read|Write, uint16(sz), uniq, fn)
}

// Do issues the ioctl, retrying when interrupted by a signal.
func Do(fd, cmd, ptr uintptr) error {
	for {
		_, _, errcode := unix.Syscall(unix.SYS_IOCTL, fd, cmd, ptr)
		switch errcode {
		case 0:
			return nil
		case unix.EINTR, unix.EAGAIN:
			continue
		}
		return errcode
	}
}
