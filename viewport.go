package texmap

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the viewport offset.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Viewport is a scrollable, zoomable window onto layer content. It produces
// the paint transform and device clip a TiledBackingStore recomputes its
// grid against.
type Viewport struct {
	// X and Y are the layer-space point shown at the viewport's top-left
	// corner when Rotation is zero.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the rotation in radians (clockwise) about the viewport
	// center.
	Rotation float64
	// Width and Height are the viewport size in device pixels.
	Width, Height float64

	// BoundsEnabled clamps the offset so the visible area stays within
	// Bounds.
	BoundsEnabled bool
	// Bounds is the layer-space rectangle the offset is clamped to.
	Bounds Rect

	scrollTween *scrollAnim
}

// NewViewport creates a viewport of the given device size at zoom 1.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Zoom: 1, Width: width, Height: height}
}

// SetBounds enables bounds clamping.
func (v *Viewport) SetBounds(bounds Rect) {
	v.BoundsEnabled = true
	v.Bounds = bounds
	v.clampToBounds()
}

// ClearBounds disables bounds clamping.
func (v *Viewport) ClearBounds() {
	v.BoundsEnabled = false
}

// ScrollBy moves the offset by (dx, dy) layer units and cancels any running
// scroll animation.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.scrollTween = nil
	v.X += dx
	v.Y += dy
	if v.BoundsEnabled {
		v.clampToBounds()
	}
}

// ScrollTo animates the offset to (x, y) over duration seconds. A
// non-positive duration jumps immediately.
func (v *Viewport) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		v.scrollTween = nil
		v.X, v.Y = x, y
		if v.BoundsEnabled {
			v.clampToBounds()
		}
		return
	}
	if easeFn == nil {
		easeFn = ease.Linear
	}
	v.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(v.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(v.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a scroll animation is running.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// ZoomAt sets the zoom while keeping the device point (sx, sy) over the
// same layer point.
func (v *Viewport) ZoomAt(zoom, sx, sy float64) {
	if zoom <= 0 {
		return
	}
	lx, ly := v.ScreenToContent(sx, sy)
	v.Zoom = zoom
	nx, ny := v.ScreenToContent(sx, sy)
	v.X += lx - nx
	v.Y += ly - ny
	if v.BoundsEnabled {
		v.clampToBounds()
	}
}

// Update advances scroll animation and bounds clamping by dt seconds.
func (v *Viewport) Update(dt float32) {
	if v.scrollTween != nil {
		if !v.scrollTween.doneX {
			val, done := v.scrollTween.tweenX.Update(dt)
			v.X = float64(val)
			v.scrollTween.doneX = done
		}
		if !v.scrollTween.doneY {
			val, done := v.scrollTween.tweenY.Update(dt)
			v.Y = float64(val)
			v.scrollTween.doneY = done
		}
		if v.scrollTween.doneX && v.scrollTween.doneY {
			v.scrollTween = nil
		}
	}
	if v.BoundsEnabled {
		v.clampToBounds()
	}
}

// clampToBounds restricts the offset so the unrotated visible area stays
// within Bounds. Bounds smaller than the visible area are centered.
func (v *Viewport) clampToBounds() {
	if v.Zoom <= 0 {
		return
	}
	w := v.Width / v.Zoom
	h := v.Height / v.Zoom

	maxX := v.Bounds.MaxX() - w
	maxY := v.Bounds.MaxY() - h
	if maxX < v.Bounds.X {
		v.X = v.Bounds.X + (v.Bounds.Width-w)/2
	} else {
		v.X = math.Max(v.Bounds.X, math.Min(v.X, maxX))
	}
	if maxY < v.Bounds.Y {
		v.Y = v.Bounds.Y + (v.Bounds.Height-h)/2
	} else {
		v.Y = math.Max(v.Bounds.Y, math.Min(v.Y, maxY))
	}
}

// Transform maps layer space to device space:
//
//	Translate(c) * Rotate(rotation) * Translate(-c) * Scale(zoom) * Translate(-X, -Y)
//
// where c is the viewport center.
func (v *Viewport) Transform() Transform {
	t := Scaling(v.Zoom, v.Zoom).Multiply(Translation(-v.X, -v.Y))
	if v.Rotation == 0 {
		return t
	}
	cx, cy := v.Width/2, v.Height/2
	rot := Translation(cx, cy).Multiply(Rotation(v.Rotation)).Multiply(Translation(-cx, -cy))
	return rot.Multiply(t)
}

// ClipBounds returns the device-space clip of the viewport.
func (v *Viewport) ClipBounds() Rect {
	return Rect{Width: v.Width, Height: v.Height}
}

// VisibleBounds returns the layer-space bounding box of the area the
// viewport shows. It is empty when the transform cannot be inverted.
func (v *Viewport) VisibleBounds() Rect {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return Rect{}
	}
	return inv.MapRect(v.ClipBounds())
}

// ContentToScreen converts layer coordinates to device coordinates.
func (v *Viewport) ContentToScreen(x, y float64) (sx, sy float64) {
	return v.Transform().Apply(x, y)
}

// ScreenToContent converts device coordinates to layer coordinates. The
// input is returned unchanged when the transform cannot be inverted.
func (v *Viewport) ScreenToContent(sx, sy float64) (x, y float64) {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return sx, sy
	}
	return inv.Apply(sx, sy)
}
