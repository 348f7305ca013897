package mode

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/ioctl"
)

// DRM_MODE_ATOMIC_ALLOW_MODESET
const AtomicAllowModeset = 0x0400

type (
	sysAtomic struct {
		flags         uint32
		countObjs     uint32
		objsPtr       uint64
		countPropsPtr uint64
		propsPtr      uint64
		propValuesPtr uint64
		reserved      uint64
		userData      uint64
	}

	// AtomicItem is one (object, property, value) triple.
	AtomicItem struct {
		Object   uint32
		Property uint32
		Value    uint64
	}

	// AtomicReq collects property changes for a single atomic commit.
	// It is write-only: build it, commit it, throw it away.
	AtomicReq struct {
		items []AtomicItem
	}
)

var (
	// DRM_IOWR(0xBC, struct drm_mode_atomic)
	IOCTLModeAtomic = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysAtomic{})), drm.IOCTLBase, 0xBC)
)

func NewAtomicReq() *AtomicReq {
	return &AtomicReq{}
}

// Add appends a property change. Signed range values are passed as their
// two's complement bit pattern, as the kernel expects.
func (r *AtomicReq) Add(object, property uint32, value uint64) {
	r.items = append(r.items, AtomicItem{Object: object, Property: property, Value: value})
}

func (r *AtomicReq) Items() []AtomicItem {
	return append([]AtomicItem(nil), r.items...)
}

func (r *AtomicReq) Len() int { return len(r.items) }

// arrays lays the request out the way drm_mode_atomic wants it: one entry
// per object in first-seen order, each followed by its properties.
func (r *AtomicReq) arrays() (objs, counts, props []uint32, values []uint64) {
	index := map[uint32]int{}
	var grouped [][]AtomicItem
	for _, it := range r.items {
		i, ok := index[it.Object]
		if !ok {
			i = len(objs)
			index[it.Object] = i
			objs = append(objs, it.Object)
			grouped = append(grouped, nil)
		}
		grouped[i] = append(grouped[i], it)
	}

	for _, g := range grouped {
		counts = append(counts, uint32(len(g)))
		for _, it := range g {
			props = append(props, it.Property)
			values = append(values, it.Value)
		}
	}
	return objs, counts, props, values
}

func AtomicCommit(file *os.File, req *AtomicReq, flags uint32) error {
	if req.Len() == 0 {
		return fmt.Errorf("atomic commit: empty request")
	}

	objs, counts, props, values := req.arrays()
	a := &sysAtomic{
		flags:         flags,
		countObjs:     uint32(len(objs)),
		objsPtr:       addr(objs),
		countPropsPtr: addr(counts),
		propsPtr:      addr(props),
		propValuesPtr: addr(values),
	}
	err := call(file, IOCTLModeAtomic, unsafe.Pointer(a))
	runtime.KeepAlive(objs)
	runtime.KeepAlive(counts)
	runtime.KeepAlive(props)
	runtime.KeepAlive(values)
	if err != nil {
		return fmt.Errorf("atomic commit: %w", err)
	}
	return nil
}
