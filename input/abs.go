package input

import (
	"unsafe"

	"github.com/NeowayLabs/touchballs/ioctl"
)

// struct input_absinfo
type sysAbsInfo struct {
	value      int32
	minimum    int32
	maximum    int32
	fuzz       int32
	flat       int32
	resolution int32
}

// AbsRange is the reported range of an absolute axis.
type AbsRange struct {
	Min, Max int32
}

// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
func codeGetAbs(axis uint16) uint32 {
	return ioctl.IOR('E', uint8(0x40+axis), unsafe.Sizeof(sysAbsInfo{}))
}

func getAbsRange(fd uintptr, axis uint16) (AbsRange, error) {
	var info sysAbsInfo
	err := ioctl.Do(fd, uintptr(codeGetAbs(axis)), uintptr(unsafe.Pointer(&info)))
	if err != nil {
		return AbsRange{}, err
	}
	return AbsRange{Min: info.minimum, Max: info.maximum}, nil
}

// Scale maps v into [0, extent) the way libinput transforms touch
// coordinates to screen size.
func (r AbsRange) Scale(v int32, extent int) float64 {
	span := float64(r.Max) - float64(r.Min) + 1
	if span <= 0 {
		return 0
	}
	return (float64(v) - float64(r.Min)) * float64(extent) / span
}
