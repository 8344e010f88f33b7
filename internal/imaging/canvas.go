package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"storefront-imagery/internal/catalog"
)

// MaxDimension bounds canvas and output sizes.
const MaxDimension = 4096

// Canvas is a width×height buffer of packed 0xRRGGBBAA pixels. It is owned by
// a single synthesis call and is not safe for concurrent use.
type Canvas struct {
	width  int
	height int
	pix    []uint32
}

// NewCanvas allocates a zeroed canvas. Callers are expected to Fill it before
// any other pass.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("canvas %dx%d out of range", width, height)
	}
	return &Canvas{
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}, nil
}

// Pack encodes c as 0xRRGGBBAA.
func Pack(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Unpack is the inverse of Pack.
func Unpack(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

func (c *Canvas) ColorModel() color.Model { return color.RGBAModel }

func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

func (c *Canvas) At(x, y int) color.Color { return c.RGBAAt(x, y) }

// RGBAAt returns the pixel at (x, y), or the zero color outside the canvas.
func (c *Canvas) RGBAAt(x, y int) color.RGBA {
	if !c.in(x, y) {
		return color.RGBA{}
	}
	return Unpack(c.pix[y*c.width+x])
}

func (c *Canvas) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// Set writes one pixel and reports whether (x, y) was inside the canvas.
func (c *Canvas) Set(x, y int, col color.RGBA) bool {
	if !c.in(x, y) {
		return false
	}
	c.pix[y*c.width+x] = Pack(col)
	return true
}

// Fill paints every pixel.
func (c *Canvas) Fill(col color.RGBA) {
	v := Pack(col)
	for i := range c.pix {
		c.pix[i] = v
	}
}

// FillRect paints r clipped to the canvas.
func (c *Canvas) FillRect(r image.Rectangle, col color.RGBA) {
	r = r.Intersect(c.Bounds())
	v := Pack(col)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.pix[y*c.width : (y+1)*c.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = v
		}
	}
}

// FillRectTextured paints each pixel of r independently with probability
// density, leaving the rest untouched.
func (c *Canvas) FillRectTextured(r image.Rectangle, col color.RGBA, density float64, rng catalog.Rand) {
	if density >= 1 {
		c.FillRect(r, col)
		return
	}
	r = r.Intersect(c.Bounds())
	v := Pack(col)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if rng.Float64() < density {
				c.pix[y*c.width+x] = v
			}
		}
	}
}

// FillRadial paints the disc of the given radius around center, restricted
// to clip. A density below 1 skips pixels at random like FillRectTextured.
func (c *Canvas) FillRadial(clip image.Rectangle, center image.Point, radius int, col color.RGBA, density float64, rng catalog.Rand) {
	box := image.Rect(center.X-radius, center.Y-radius, center.X+radius+1, center.Y+radius+1)
	box = box.Intersect(clip).Intersect(c.Bounds())
	v := Pack(col)
	r2 := radius * radius
	for y := box.Min.Y; y < box.Max.Y; y++ {
		dy := y - center.Y
		for x := box.Min.X; x < box.Max.X; x++ {
			dx := x - center.X
			if dx*dx+dy*dy > r2 {
				continue
			}
			if density < 1 && rng.Float64() >= density {
				continue
			}
			c.pix[y*c.width+x] = v
		}
	}
}

// FillRing traces a ring of the given thickness outward from radius by
// stepping the angle in polar coordinates.
func (c *Canvas) FillRing(center image.Point, radius, thickness int, col color.RGBA) {
	outer := float64(radius + thickness)
	if outer <= 0 {
		return
	}
	step := 1 / (2 * outer)
	for a := 0.0; a < 2*math.Pi; a += step {
		sin, cos := math.Sincos(a)
		for t := 0; t < thickness; t++ {
			rr := float64(radius + t)
			x := center.X + int(math.Round(rr*cos))
			y := center.Y + int(math.Round(rr*sin))
			c.Set(x, y, col)
		}
	}
}

// DrawLine draws a Bresenham line between p0 and p1. Endpoints are clamped
// into the canvas first, so every write lands inside. It returns the number
// of pixels written.
func (c *Canvas) DrawLine(p0, p1 image.Point, col color.RGBA) int {
	p0 = c.clampPoint(p0)
	p1 = c.clampPoint(p1)

	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}

	written := 0
	x, y := p0.X, p0.Y
	e := dx + dy
	for {
		if c.Set(x, y, col) {
			written++
		}
		if x == p1.X && y == p1.Y {
			return written
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (c *Canvas) clampPoint(p image.Point) image.Point {
	return image.Pt(clamp(p.X, 0, c.width-1), clamp(p.Y, 0, c.height-1))
}

// Image copies the canvas into a standard RGBA image for encoding.
func (c *Canvas) Image() *image.RGBA {
	dst := image.NewRGBA(c.Bounds())
	draw.Draw(dst, dst.Bounds(), c, image.Point{}, draw.Src)
	return dst
}
