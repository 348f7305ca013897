// Package frame runs the cooperative render loop: drain input, step the
// scene, draw, present.
package frame

import (
	"context"
	"image/color"

	"github.com/go-errors/errors"

	"github.com/NeowayLabs/touchballs/balls"
	"github.com/NeowayLabs/touchballs/input"
	"github.com/NeowayLabs/touchballs/internal/logger"
	"github.com/NeowayLabs/touchballs/raster"
)

// Source yields the touch events that are ready now. An empty batch means
// nothing is queued.
type Source interface {
	Dispatch() ([]input.Event, error)
}

// Scene is the animation state driven by the loop.
type Scene interface {
	SetTouchRaw(x, y float64)
	HandleTouchStart()
	ClearTouch()
	Update()
	Balls() []balls.Ball
	DarkMode() bool
}

// Display takes a finished frame.
type Display interface {
	Present(frame []byte) error
}

var (
	backgroundLight = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	backgroundDark  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// Loop owns the offscreen buffer. Every frame is drawn there in full and
// then handed to the Display.
type Loop struct {
	src    Source
	scene  Scene
	disp   Display
	canvas *raster.Canvas
	frames uint64
}

// New allocates a pitch*height offscreen buffer for a width x height
// display.
func New(src Source, scene Scene, disp Display, width, height, pitch int) (*Loop, error) {
	canvas, err := raster.New(make([]byte, pitch*height), width, height, pitch)
	if err != nil {
		return nil, err
	}
	return &Loop{src: src, scene: scene, disp: disp, canvas: canvas}, nil
}

// Frames is the number of frames presented so far.
func (l *Loop) Frames() uint64 { return l.frames }

// Run draws frames until ctx is done. Cancellation is seen between
// frames only; a frame that has started is always presented. A failed
// present ends the loop with the error.
func (l *Loop) Run(ctx context.Context) error {
	logger.Info("Running animation. Press Ctrl+C to exit.")
	for ctx.Err() == nil {
		if err := l.Step(); err != nil {
			return err
		}
	}
	logger.Info("Exiting...", "frames", l.frames)
	return nil
}

// Step runs a single iteration.
func (l *Loop) Step() error {
	l.drain()
	l.scene.Update()
	l.render()

	if err := l.disp.Present(l.canvas.Pix); err != nil {
		return errors.WrapPrefix(err, "present frame", 0)
	}
	l.frames++
	return nil
}

func (l *Loop) drain() {
	for {
		events, err := l.src.Dispatch()
		if err != nil {
			logger.Debug("input dispatch failed", "err", err)
		}
		if len(events) == 0 {
			return
		}
		for _, ev := range events {
			l.apply(ev)
		}
	}
}

func (l *Loop) apply(ev input.Event) {
	switch ev.Kind {
	case input.Down:
		l.scene.SetTouchRaw(ev.X, ev.Y)
		l.scene.HandleTouchStart()
	case input.Motion:
		l.scene.SetTouchRaw(ev.X, ev.Y)
	case input.Up:
		l.scene.ClearTouch()
	}
}

func (l *Loop) render() {
	dark := l.scene.DarkMode()
	bg := backgroundLight
	if dark {
		bg = backgroundDark
	}
	l.canvas.Clear(bg)
	l.canvas.Switch(dark)
	for _, b := range l.scene.Balls() {
		l.canvas.Circle(b.Pos.X, b.Pos.Y, b.Radius, color.RGBA{R: b.Color.R, G: b.Color.G, B: b.Color.B, A: 255})
	}
}
