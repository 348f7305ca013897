package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NeowayLabs/touchballs/drm"
	"github.com/NeowayLabs/touchballs/internal/logger"
	"github.com/NeowayLabs/touchballs/mode"
)

const (
	bpp   = 32
	depth = 24
)

var ErrNotMapped = errors.New("scanout buffer is not mapped")

// Backend owns one card for the life of the process: master lock, the
// single dumb buffer, its framebuffer and the mode blob.
type Backend struct {
	dev  Device
	sel  Selection
	fb   *mode.FB
	fbID uint32
	blob uint32
	mem  []byte

	master bool
}

// Attempt is one failed candidate during discovery.
type Attempt struct {
	Path string
	Err  error
}

// DiscoveryError lists every candidate that was tried and why it failed.
type DiscoveryError struct {
	Attempts []Attempt
}

func (e *DiscoveryError) Error() string {
	lines := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		lines[i] = fmt.Sprintf("%s: %v", a.Path, a.Err)
	}
	return fmt.Sprintf("no touchbar device found, attempted: [\n    %s\n]",
		strings.Join(lines, ",\n    "))
}

func (e *DiscoveryError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Open returns the backend for the first path that comes up completely.
// Every failed candidate is torn down before the next one is tried.
func Open(paths []string, open OpenFunc) (*Backend, error) {
	derr := &DiscoveryError{}
	for _, path := range paths {
		b, err := TryOpen(path, open)
		if err == nil {
			return b, nil
		}
		logger.Debug("candidate rejected", "path", path, "err", err)
		derr.Attempts = append(derr.Attempts, Attempt{Path: path, Err: err})
	}
	return nil, derr
}

// TryOpen brings up a single card.
func TryOpen(path string, open OpenFunc) (b *Backend, err error) {
	dev, err := open(path)
	if err != nil {
		return nil, err
	}

	b = &Backend{dev: dev}
	defer func() {
		if err != nil {
			if rerr := b.release(); rerr != nil {
				logger.Debug("cleanup after failed open", "path", path, "err", rerr)
			}
			b = nil
		}
	}()

	if err = dev.SetClientCap(drm.ClientCapUniversalPlanes, 1); err != nil {
		return b, err
	}
	if err = dev.SetClientCap(drm.ClientCapAtomic, 1); err != nil {
		return b, err
	}
	if err = dev.SetMaster(); err != nil {
		return b, err
	}
	b.master = true

	top, err := mode.Snapshot(dev)
	if err != nil {
		return b, err
	}
	if b.sel, err = Select(top); err != nil {
		return b, err
	}
	logModes(path, b.sel)

	w, h := b.sel.Mode.Size()
	if b.fb, err = dev.CreateDumb(BufferWidth(w), h, bpp); err != nil {
		return b, err
	}
	if b.fbID, err = dev.AddFB(uint16(b.fb.Width), h, depth, bpp, b.fb.Pitch, b.fb.Handle); err != nil {
		return b, err
	}
	if b.blob, err = dev.CreateBlob(b.sel.Mode.Bytes()); err != nil {
		return b, err
	}

	req, err := BuildActivation(dev, b.sel, b.blob, b.fbID)
	if err != nil {
		return b, err
	}
	if err = dev.AtomicCommit(req, mode.AtomicAllowModeset); err != nil {
		return b, err
	}

	logger.Info("display ready", "path", path, "width", w, "height", h, "pitch", b.fb.Pitch)
	return b, nil
}

func logModes(path string, sel Selection) {
	logger.Debug("available modes", "path", path, "connector", sel.Connector.ID)
	for i, m := range sel.Connector.Modes {
		w, h := m.Size()
		logger.Debugf("  Mode %d: %dx%d @ %dHz (clock: %d kHz)", i, w, h, m.Vrefresh, m.Clock)
	}
	w, h := sel.Mode.Size()
	logger.Infof("Selected Mode: %dx%d @ %dHz", w, h, sel.Mode.Vrefresh)
}

func (b *Backend) Path() string    { return b.dev.Path() }
func (b *Backend) Mode() mode.Info { return b.sel.Mode }

// Size is the display size in pixels, which may be narrower than the
// buffer.
func (b *Backend) Size() (width, height int) {
	w, h := b.sel.Mode.Size()
	return int(w), int(h)
}

// Pitch is the buffer row stride in bytes.
func (b *Backend) Pitch() int { return int(b.fb.Pitch) }

// FrameSize is the byte length of an offscreen buffer matching the
// scanout layout.
func (b *Backend) FrameSize() int {
	_, h := b.Size()
	return b.Pitch() * h
}

// Map maps the scanout buffer into the process. It stays mapped until
// Close.
func (b *Backend) Map() error {
	if b.mem != nil {
		return nil
	}
	mem, err := b.dev.Map(b.fb)
	if err != nil {
		return err
	}
	b.mem = mem
	return nil
}

// Present copies frame into the scanout buffer and marks the whole frame
// dirty.
func (b *Backend) Present(frame []byte) error {
	if b.mem == nil {
		return ErrNotMapped
	}
	if len(frame) > len(b.mem) {
		return fmt.Errorf("frame of %d bytes does not fit buffer of %d", len(frame), len(b.mem))
	}
	copy(b.mem, frame)
	return b.dev.DirtyFB(b.fbID, []mode.ClipRect{DirtyRect(b.sel.Mode)})
}

// Close unmaps the buffer, frees the kernel objects, drops master and
// closes the device, in that order.
func (b *Backend) Close() error {
	return b.release()
}

func (b *Backend) release() error {
	if b.dev == nil {
		return nil
	}
	var errs []error
	if b.mem != nil {
		errs = append(errs, b.dev.Unmap(b.mem))
		b.mem = nil
	}
	if b.blob != 0 {
		errs = append(errs, b.dev.DestroyBlob(b.blob))
		b.blob = 0
	}
	if b.fbID != 0 {
		errs = append(errs, b.dev.RmFB(b.fbID))
		b.fbID = 0
	}
	if b.fb != nil {
		errs = append(errs, b.dev.DestroyDumb(b.fb.Handle))
	}
	if b.master {
		errs = append(errs, b.dev.DropMaster())
		b.master = false
	}
	errs = append(errs, b.dev.Close())
	b.dev = nil
	return errors.Join(errs...)
}
