// Package raster draws into XRGB8888 buffers laid out as the scanout
// buffer is: bytes B, G, R, X per pixel, rows Pitch bytes apart.
package raster

import (
	"fmt"
	"image/color"
	"math"
)

const bytesPerPixel = 4

// Canvas is a view over a pixel buffer. Pixels outside Width x Height
// are never written, even when Pitch leaves room for them.
type Canvas struct {
	Pix           []byte
	Width, Height int
	Pitch         int
}

// New checks that pix can hold height rows of pitch bytes.
func New(pix []byte, width, height, pitch int) (*Canvas, error) {
	if pitch < width*bytesPerPixel {
		return nil, fmt.Errorf("pitch %d too small for width %d", pitch, width)
	}
	if len(pix) < pitch*height {
		return nil, fmt.Errorf("buffer of %d bytes too small for %dx%d pitch %d",
			len(pix), width, height, pitch)
	}
	return &Canvas{Pix: pix, Width: width, Height: height, Pitch: pitch}, nil
}

func (c *Canvas) offset(x, y int) int { return y*c.Pitch + x*bytesPerPixel }

func (c *Canvas) set(x, y int, col color.RGBA) {
	o := c.offset(x, y)
	c.Pix[o] = col.B
	c.Pix[o+1] = col.G
	c.Pix[o+2] = col.R
	c.Pix[o+3] = 0
}

// paint writes col over the pixel with coverage alpha, leaving the X byte.
func (c *Canvas) paint(x, y int, col color.RGBA, alpha float64) {
	o := c.offset(x, y)
	p := c.Pix[o : o+3 : o+3]
	p[0] = mix(col.B, p[0], alpha)
	p[1] = mix(col.G, p[1], alpha)
	p[2] = mix(col.R, p[2], alpha)
}

func mix(fg, bg uint8, alpha float64) uint8 {
	return uint8(float64(fg)*alpha + float64(bg)*(1-alpha))
}

// Clear fills the visible area with col.
func (c *Canvas) Clear(col color.RGBA) {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			c.set(x, y, col)
		}
	}
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && x < c.Width && y >= 0 && y < c.Height
}

// edge shades a pixel at signed distance delta from a shape's boundary:
// solid inside by half a pixel, blended within half a pixel of the edge.
func (c *Canvas) edge(x, y int, delta float64, col color.RGBA, solid bool) {
	switch {
	case delta <= -0.5:
		if solid {
			c.set(x, y, col)
		} else {
			c.paint(x, y, col, 1)
		}
	case delta < 0.5:
		c.paint(x, y, col, 0.5-delta)
	}
}

// Circle draws a filled, anti-aliased circle centered on (cx, cy).
func (c *Canvas) Circle(cx, cy, radius float64, col color.RGBA) {
	minX := max(int(math.Floor(cx-radius-1)), 0)
	maxX := min(int(math.Ceil(cx+radius+1)), c.Width-1)
	minY := max(int(math.Floor(cy-radius-1)), 0)
	maxY := min(int(math.Ceil(cy+radius+1)), c.Height-1)

	outer := (radius + 1) * (radius + 1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			d2 := dx*dx + dy*dy
			if d2 > outer {
				continue
			}
			c.edge(x, y, math.Sqrt(d2)-radius, col, true)
		}
	}
}

// Switch geometry. The pill lies along y, centered across the panel.
const (
	switchCenterX = 30.0
	switchCenterY = 60.0
	switchLength  = 50.0
	switchThick   = 26.0
	knobInset     = 2.0
	knobShrink    = 4.0
)

var (
	pillLight = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	pillDark  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	knobLight = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	knobDark  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Switch draws the dark mode toggle: a pill with a knob at its far end
// when dark is set and at its near end otherwise.
func (c *Canvas) Switch(dark bool) {
	pill, knob := pillLight, knobLight
	if dark {
		pill, knob = pillDark, knobDark
	}

	r := switchThick / 2
	top := switchCenterY - switchLength/2 + r
	bot := switchCenterY + switchLength/2 - r

	minX := int(math.Floor(switchCenterX-r)) - 2
	maxX := int(math.Ceil(switchCenterX+r)) + 2
	minY := int(math.Floor(switchCenterY-switchLength/2)) - 2
	maxY := int(math.Ceil(switchCenterY+switchLength/2)) + 2

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			if !c.inside(x, y) {
				continue
			}
			fx, fy := float64(x), float64(y)
			var d float64
			switch {
			case fy < top:
				d = math.Hypot(fx-switchCenterX, fy-top)
			case fy > bot:
				d = math.Hypot(fx-switchCenterX, fy-bot)
			default:
				d = math.Abs(fx - switchCenterX)
			}
			c.edge(x, y, d-r, pill, false)
		}
	}

	knobY := top + knobInset
	if dark {
		knobY = bot - knobInset
	}
	c.Circle(switchCenterX, knobY, r-knobShrink, knob)
}
