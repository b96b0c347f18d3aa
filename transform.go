package texmap

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
)

// Transform is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Transform [6]float64

// Identity is the identity transform.
var Identity = Transform{1, 0, 0, 1, 0, 0}

// Translation returns a transform that moves points by (tx, ty).
func Translation(tx, ty float64) Transform {
	return Transform{1, 0, 0, 1, tx, ty}
}

// Scaling returns a transform that scales points by (sx, sy).
func Scaling(sx, sy float64) Transform {
	return Transform{sx, 0, 0, sy, 0, 0}
}

// Rotation returns a clockwise rotation by r radians (Y down).
func Rotation(r float64) Transform {
	sin, cos := math.Sincos(r)
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// RectToRect returns the transform mapping from onto to. A degenerate from
// rectangle yields a transform that collapses every point onto to's origin.
func RectToRect(from, to Rect) Transform {
	var sx, sy float64
	if from.Width != 0 {
		sx = to.Width / from.Width
	}
	if from.Height != 0 {
		sy = to.Height / from.Height
	}
	return Transform{sx, 0, 0, sy, to.X - from.X*sx, to.Y - from.Y*sy}
}

// Multiply returns m * c: c is applied first, then m.
func (m Transform) Multiply(c Transform) Transform {
	return Transform{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

func (m Transform) det() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// IsInvertible reports whether the transform has a non-zero determinant.
func (m Transform) IsInvertible() bool {
	det := m.det()
	return !(det > -1e-12 && det < 1e-12) && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Inverse returns the inverse transform. ok is false and the identity is
// returned when the matrix is singular.
func (m Transform) Inverse() (inv Transform, ok bool) {
	if !m.IsInvertible() {
		return Identity, false
	}
	invDet := 1.0 / m.det()
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Transform{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// Apply maps a point.
func (m Transform) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// MapRect returns the axis-aligned bounding box of r after transformation.
func (m Transform) MapRect(r Rect) Rect {
	if m.IsRectilinear() {
		x0, y0 := m.Apply(r.X, r.Y)
		x1, y1 := m.Apply(r.MaxX(), r.MaxY())
		return Rect{
			X:      math.Min(x0, x1),
			Y:      math.Min(y0, y1),
			Width:  math.Abs(x1 - x0),
			Height: math.Abs(y1 - y0),
		}
	}
	q := m.MapQuad(r)
	minX := math.Min(math.Min(q[0].X, q[1].X), math.Min(q[2].X, q[3].X))
	minY := math.Min(math.Min(q[0].Y, q[1].Y), math.Min(q[2].Y, q[3].Y))
	maxX := math.Max(math.Max(q[0].X, q[1].X), math.Max(q[2].X, q[3].X))
	maxY := math.Max(math.Max(q[0].Y, q[1].Y), math.Max(q[2].Y, q[3].Y))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// MapQuad transforms the four corners of r: top-left, top-right,
// bottom-right, bottom-left.
func (m Transform) MapQuad(r Rect) [4]Vec2 {
	var q [4]Vec2
	q[0].X, q[0].Y = m.Apply(r.X, r.Y)
	q[1].X, q[1].Y = m.Apply(r.MaxX(), r.Y)
	q[2].X, q[2].Y = m.Apply(r.MaxX(), r.MaxY())
	q[3].X, q[3].Y = m.Apply(r.X, r.MaxY())
	return q
}

// IsRectilinear reports whether the transform maps axis-aligned rectangles
// to axis-aligned rectangles (no rotation or skew other than multiples of
// 90 degrees).
func (m Transform) IsRectilinear() bool {
	return (m[1] == 0 && m[2] == 0) || (m[0] == 0 && m[3] == 0)
}

// geoM converts to ebiten's matrix layout.
func (m Transform) geoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

// matrix converts to gg's row-major layout.
func (m Transform) matrix() gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}

// transformFromMatrix converts from gg's row-major layout.
func transformFromMatrix(g gg.Matrix) Transform {
	return Transform{g.A, g.D, g.B, g.E, g.C, g.F}
}
