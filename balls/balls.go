// Package balls is the touch-reactive scene: a logo made of balls that
// scatter from the finger and spring back.
package balls

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// InteractionRadius is how close a touch must be to push a ball.
	InteractionRadius = 40.0
	// SwitchArea is the band at the start of the panel that holds the
	// mode switch. Touches there flip dark mode and leave the balls be.
	SwitchArea = 120.0

	spring  = 0.1
	damping = 0.8

	logoHeight = 50.0
	logoInset  = 7.0
)

// Vec is a point or velocity in framebuffer pixels.
type Vec struct {
	X, Y float64
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Ball is one circle of the scene.
type Ball struct {
	Color    RGB
	Pos      Vec
	Radius   float64
	origin   Vec
	velocity Vec
	target   Vec
	base     float64
}

func newBall(pos Vec, radius float64, color RGB) Ball {
	return Ball{Color: color, Pos: pos, Radius: radius, origin: pos, target: pos, base: radius}
}

func (b *Ball) step() {
	b.velocity.X = (b.velocity.X + (b.target.X-b.Pos.X)*spring) * damping
	b.Pos.X += b.velocity.X
	b.velocity.Y = (b.velocity.Y + (b.target.Y-b.Pos.Y)*spring) * damping
	b.Pos.Y += b.velocity.Y

	d := math.Hypot(b.origin.X-b.Pos.X, b.origin.Y-b.Pos.Y)
	b.Radius = max(b.base*(d/100+1), 1)
}

// Scene holds the balls, the current touch and the display mode.
type Scene struct {
	balls         []Ball
	touch         *Vec
	width, height int
	dark          bool
}

// New lays the logo out on a width x height panel. The panel scans out
// rotated, so the logo runs along the framebuffer's y axis.
func New(width, height int) *Scene {
	scale := logoHeight / designHeight
	offsetY := (float64(height) - designWidth*scale) / 2

	s := &Scene{width: width, height: height}
	s.balls = make([]Ball, 0, len(logo))
	for _, sd := range logo {
		pos := Vec{
			X: float64(width) - (logoInset + sd.y*scale),
			Y: offsetY + sd.x*scale,
		}
		s.balls = append(s.balls, newBall(pos, sd.size*scale, parseColor(sd.color)))
	}
	return s
}

func parseColor(hex string) RGB {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{255, 255, 255}
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

// Transform maps a raw touch position to framebuffer coordinates for a
// panel mounted rotated: (x, y) becomes (width - y, x).
func Transform(x, y float64, width int) Vec {
	return Vec{X: float64(width) - y, Y: x}
}

// SetTouchRaw records the touch at raw position (x, y).
func (s *Scene) SetTouchRaw(x, y float64) {
	v := Transform(x, y, s.width)
	s.touch = &v
}

// HandleTouchStart flips dark mode when the current touch landed on the
// switch.
func (s *Scene) HandleTouchStart() {
	if s.touch != nil && s.touch.Y < SwitchArea {
		s.dark = !s.dark
	}
}

func (s *Scene) ClearTouch() { s.touch = nil }

// Touch returns the current touch in framebuffer coordinates.
func (s *Scene) Touch() (Vec, bool) {
	if s.touch == nil {
		return Vec{}, false
	}
	return *s.touch, true
}

// Update advances every ball by one frame. While the switch is held the
// balls are retargeted home but do not move.
func (s *Scene) Update() {
	for i := range s.balls {
		b := &s.balls[i]
		b.target = b.origin
		if t := s.touch; t != nil {
			if t.Y < SwitchArea {
				continue
			}
			dx, dy := t.X-b.Pos.X, t.Y-b.Pos.Y
			if math.Hypot(dx, dy) < InteractionRadius {
				b.target = Vec{X: b.Pos.X - dx, Y: b.Pos.Y - dy}
			}
		}
		b.step()
	}
}

// Balls returns the balls for drawing. The slice must not be modified.
func (s *Scene) Balls() []Ball { return s.balls }

func (s *Scene) DarkMode() bool { return s.dark }

func (s *Scene) Size() (width, height int) { return s.width, s.height }
