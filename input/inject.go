package input

import (
	"context"
	"fmt"
	"time"

	"github.com/ThomasT75/uinput"
)

// Toucher is a virtual single-contact touch surface. uinput.TouchPad
// satisfies it.
type Toucher interface {
	MoveTo(x, y int32) error
	TouchDown() error
	TouchUp() error
}

// Swipe describes a straight drag in device units.
type Swipe struct {
	FromX, FromY int32
	ToX, ToY     int32
	Steps        int
	Interval     time.Duration
}

// CreateVirtualTouch creates a uinput touch device with the given axis
// ranges.
func CreateVirtualTouch(path, name string, maxX, maxY int32) (uinput.TouchPad, error) {
	pad, err := uinput.CreateTouchPad(path, []byte(name), 0, maxX, 0, maxY)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual touch device: %w", err)
	}
	return pad, nil
}

// Play presses at the start point, moves in Steps equal increments and
// lifts at the end point.
func (s Swipe) Play(ctx context.Context, t Toucher) error {
	steps := max(s.Steps, 1)
	if err := t.MoveTo(s.FromX, s.FromY); err != nil {
		return err
	}
	if err := t.TouchDown(); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		x := s.FromX + (s.ToX-s.FromX)*int32(i)/int32(steps)
		y := s.FromY + (s.ToY-s.FromY)*int32(i)/int32(steps)
		if err := sleep(ctx, s.Interval); err != nil {
			t.TouchUp()
			return err
		}
		if err := t.MoveTo(x, y); err != nil {
			return err
		}
	}
	return t.TouchUp()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
