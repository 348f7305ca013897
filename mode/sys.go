package mode

import (
	"os"
	"unsafe"

	"github.com/NeowayLabs/touchballs/ioctl"
)

// call issues a DRM ioctl with arg as its in/out struct.
func call(file *os.File, code uint32, arg unsafe.Pointer) error {
	return ioctl.Do(file.Fd(), uintptr(code), uintptr(arg))
}

// addr is the user pointer the kernel expects in a __u64 field. The
// caller must keep s alive until the ioctl returns.
func addr[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

// clip trims s to the count the kernel filled in, which may have shrunk
// between the sizing call and the fetch.
func clip[T any](s []T, n uint32) []T {
	return s[:min(len(s), int(n))]
}
