package texmap

import (
	"image"
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}


// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D point or offset.
type Vec2 struct {
	X, Y float64
}

// Size is a 2D extent.
type Size struct {
	Width, Height float64
}

// IsEmpty reports whether either dimension is non-positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromImage converts an integer rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Size returns the rectangle's extent.
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ContainsRect reports whether other lies entirely inside r. An empty r
// contains nothing.
func (r Rect) ContainsRect(other Rect) bool {
	if r.IsEmpty() {
		return false
	}
	return r.X <= other.X && other.MaxX() <= r.MaxX() &&
		r.Y <= other.Y && other.MaxY() <= r.MaxY()
}

// Intersect returns the overlap of r and other, or the zero Rect when they
// do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := math.Max(r.X, other.X)
	y0 := math.Max(r.Y, other.Y)
	x1 := math.Min(r.MaxX(), other.MaxX())
	y1 := math.Min(r.MaxY(), other.MaxY())
	if x0 >= x1 || y0 >= y1 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest Rect containing both a and b. Empty operands
// are ignored.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.MaxX(), other.MaxX())
	maxY := math.Max(r.MaxY(), other.MaxY())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inflate grows the rectangle by dx on the left and right and by dy on the
// top and bottom.
func (r Rect) Inflate(dx, dy float64) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Scale multiplies origin and extent by s.
func (r Rect) Scale(s float64) Rect {
	return Rect{X: r.X * s, Y: r.Y * s, Width: r.Width * s, Height: r.Height * s}
}

// Enclosing returns the smallest integer rectangle containing r.
func (r Rect) Enclosing() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.MaxX())),
		int(math.Ceil(r.MaxY())),
	)
}

// Edges is a bitmask of tile edges that lie on the content boundary. The
// drawing backend antialiases exposed edges and leaves internal seams hard.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom

	EdgesNone Edges = 0
	EdgesAll        = EdgeLeft | EdgeTop | EdgeRight | EdgeBottom
)

// exposedEdges reports which edges of tile lie on or past the boundary of
// the content rectangle total.
func exposedEdges(total, tile Rect) Edges {
	var e Edges
	if tile.X <= 0 {
		e |= EdgeLeft
	}
	if tile.Y <= 0 {
		e |= EdgeTop
	}
	if tile.MaxX() >= total.Width {
		e |= EdgeRight
	}
	if tile.MaxY() >= total.Height {
		e |= EdgeBottom
	}
	return e
}

// TextureFlags configure a texture's storage on Reset.
type TextureFlags uint8

const (
	// TextureSupportsAlpha keeps an alpha channel. Without it the backend may
	// treat the texture as opaque.
	TextureSupportsAlpha TextureFlags = 1 << iota
)

// UpdateContentsFlag tells a texture whether it may take ownership of, or
// write into, the pixel buffer passed to UpdateContents.
type UpdateContentsFlag uint8

const (
	UpdateCannotModifyOriginalImageData UpdateContentsFlag = iota // copy the source
	UpdateCanModifyOriginalImageData                              // source buffer may be adopted
)
