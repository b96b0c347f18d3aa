package texmap

import (
	"image"
	"log/slog"
	"math"

	"github.com/gogpu/gg"
)

// StrokeStyle selects how lines and outlines are stroked.
type StrokeStyle uint8

const (
	NoStroke StrokeStyle = iota
	SolidStroke
	DottedStroke
	DashedStroke
)

// LineCap is the shape of stroke endpoints.
type LineCap uint8

const (
	ButtCap LineCap = iota
	RoundCap
	SquareCap
)

// LineJoin is the shape of stroke corners.
type LineJoin uint8

const (
	MiterJoin LineJoin = iota
	RoundJoin
	BevelJoin
)

// gcState is the drawing state saved and restored by Save/Restore. gg only
// tracks the matrix and clip on its own stack, so paint state lives here.
type gcState struct {
	fill        Color
	stroke      Color
	thickness   float64
	strokeStyle StrokeStyle
	lineCap     LineCap
	lineJoin    LineJoin
	miterLimit  float64
	dash        []float64
	dashOffset  float64
	alpha       float64
	clip        Rect // device space
}

// GraphicsContext is a 2D drawing context backed by a gg.Context. It
// presents the stateful fill/stroke/clip model layers paint with, and keeps
// a conservative device-space clip rectangle for ClipBounds.
type GraphicsContext struct {
	dc       *gg.Context
	width    int
	height   int
	state    gcState
	stack    []gcState
	layers   []int // stack depth at each BeginTransparencyLayer
	disabled bool
}

// NewGraphicsContext creates a transparent w x h drawing surface.
func NewGraphicsContext(w, h int) *GraphicsContext {
	return &GraphicsContext{
		dc:     gg.NewContext(w, h),
		width:  w,
		height: h,
		state: gcState{
			fill:        Color{0, 0, 0, 1},
			stroke:      Color{0, 0, 0, 1},
			thickness:   1,
			strokeStyle: SolidStroke,
			miterLimit:  10,
			alpha:       1,
			clip:        Rect{Width: float64(w), Height: float64(h)},
		},
	}
}

// Close releases the underlying gg context.
func (gc *GraphicsContext) Close() error {
	return gc.dc.Close()
}

// Flush writes pending accelerated drawing into the pixel buffer. Call it
// before Image when the surface must reflect every draw so far.
func (gc *GraphicsContext) Flush() error {
	return gc.dc.FlushGPU()
}

// Width returns the surface width in pixels.
func (gc *GraphicsContext) Width() int { return gc.width }

// Height returns the surface height in pixels.
func (gc *GraphicsContext) Height() int { return gc.height }

// Image returns a copy of the surface as premultiplied RGBA. Open
// transparency layers are not included.
func (gc *GraphicsContext) Image() *image.RGBA {
	img := gc.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}

// SetPaintingDisabled turns every drawing call into a no-op. State changes
// still apply.
func (gc *GraphicsContext) SetPaintingDisabled(disabled bool) {
	gc.disabled = disabled
}

// PaintingDisabled reports whether drawing calls are suppressed.
func (gc *GraphicsContext) PaintingDisabled() bool {
	return gc.disabled
}

// --- State stack ---

// Save pushes the drawing state, transform and clip.
func (gc *GraphicsContext) Save() {
	saved := gc.state
	saved.dash = append([]float64(nil), gc.state.dash...)
	gc.stack = append(gc.stack, saved)
	gc.dc.Push()
}

// Restore pops the state pushed by the matching Save. Unbalanced calls are
// ignored.
func (gc *GraphicsContext) Restore() {
	if len(gc.stack) == 0 {
		return
	}
	gc.state = gc.stack[len(gc.stack)-1]
	gc.stack = gc.stack[:len(gc.stack)-1]
	gc.dc.Pop()
}

// --- Transform ---

// Translate moves the user-space origin.
func (gc *GraphicsContext) Translate(x, y float64) {
	gc.dc.Translate(x, y)
}

// Scale scales user space.
func (gc *GraphicsContext) Scale(sx, sy float64) {
	gc.dc.Scale(sx, sy)
}

// Rotate rotates user space clockwise by r radians.
func (gc *GraphicsContext) Rotate(r float64) {
	gc.ConcatCTM(Rotation(r))
}

// ConcatCTM applies t in user space before the current transform.
func (gc *GraphicsContext) ConcatCTM(t Transform) {
	gc.dc.Transform(t.matrix())
}

// SetCTM replaces the current transform.
func (gc *GraphicsContext) SetCTM(t Transform) {
	gc.dc.SetTransform(t.matrix())
}

// CTM returns the current user-to-device transform.
func (gc *GraphicsContext) CTM() Transform {
	return transformFromMatrix(gc.dc.GetTransform())
}

// --- Paint state ---

func (gc *GraphicsContext) SetFillColor(c Color)   { gc.state.fill = c }
func (gc *GraphicsContext) SetStrokeColor(c Color) { gc.state.stroke = c }

// FillColor returns the current fill color.
func (gc *GraphicsContext) FillColor() Color { return gc.state.fill }

// StrokeColor returns the current stroke color.
func (gc *GraphicsContext) StrokeColor() Color { return gc.state.stroke }

// SetStrokeThickness sets the stroke width in user units.
func (gc *GraphicsContext) SetStrokeThickness(w float64) { gc.state.thickness = w }

// StrokeThickness returns the stroke width in user units.
func (gc *GraphicsContext) StrokeThickness() float64 { return gc.state.thickness }

func (gc *GraphicsContext) SetStrokeStyle(s StrokeStyle) { gc.state.strokeStyle = s }
func (gc *GraphicsContext) SetLineCap(c LineCap)         { gc.state.lineCap = c }
func (gc *GraphicsContext) SetLineJoin(j LineJoin)       { gc.state.lineJoin = j }

// SetMiterLimit sets the miter limit for MiterJoin corners.
func (gc *GraphicsContext) SetMiterLimit(limit float64) { gc.state.miterLimit = limit }

// SetLineDash sets an explicit dash pattern, overriding the dash implied by
// the stroke style. An empty pattern restores the style's default.
func (gc *GraphicsContext) SetLineDash(dashes []float64, offset float64) {
	gc.state.dash = append(gc.state.dash[:0], dashes...)
	gc.state.dashOffset = offset
}

// SetAlpha sets the global alpha multiplied into every fill and stroke.
func (gc *GraphicsContext) SetAlpha(a float64) { gc.state.alpha = clamp01(a) }

// Alpha returns the global alpha.
func (gc *GraphicsContext) Alpha() float64 { return gc.state.alpha }

func (gc *GraphicsContext) applyFill(c Color) {
	gc.dc.SetRGBA(c.R, c.G, c.B, c.A*gc.state.alpha)
}

func (gc *GraphicsContext) applyStroke(width float64) {
	s := &gc.state
	gc.dc.SetRGBA(s.stroke.R, s.stroke.G, s.stroke.B, s.stroke.A*s.alpha)
	gc.dc.SetLineWidth(width)
	switch s.lineCap {
	case RoundCap:
		gc.dc.SetLineCap(gg.LineCapRound)
	case SquareCap:
		gc.dc.SetLineCap(gg.LineCapSquare)
	default:
		gc.dc.SetLineCap(gg.LineCapButt)
	}
	switch s.lineJoin {
	case RoundJoin:
		gc.dc.SetLineJoin(gg.LineJoinRound)
	case BevelJoin:
		gc.dc.SetLineJoin(gg.LineJoinBevel)
	default:
		gc.dc.SetLineJoin(gg.LineJoinMiter)
	}
	gc.dc.SetMiterLimit(s.miterLimit)

	switch {
	case len(s.dash) > 0:
		gc.dc.SetDash(s.dash...)
		gc.dc.SetDashOffset(s.dashOffset)
	case s.strokeStyle == DashedStroke:
		gc.dc.SetDash(3*width, 3*width)
	case s.strokeStyle == DottedStroke:
		gc.dc.SetDash(width, width)
	default:
		gc.dc.ClearDash()
	}
}

func (gc *GraphicsContext) fill() {
	if err := gc.dc.Fill(); err != nil {
		Logger().Debug("texmap: fill failed", slog.Any("err", err))
	}
}

func (gc *GraphicsContext) strokePath() {
	if err := gc.dc.Stroke(); err != nil {
		Logger().Debug("texmap: stroke failed", slog.Any("err", err))
	}
}

// --- Drawing ---

// FillRect fills r with the current fill color.
func (gc *GraphicsContext) FillRect(r Rect) {
	gc.FillRectColor(r, gc.state.fill)
}

// FillRectColor fills r with c.
func (gc *GraphicsContext) FillRectColor(r Rect, c Color) {
	if gc.disabled || r.IsEmpty() {
		return
	}
	gc.applyFill(c)
	gc.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	gc.fill()
}

// FillRoundedRect fills r with corners of the given radius.
func (gc *GraphicsContext) FillRoundedRect(r Rect, radius float64, c Color) {
	if gc.disabled || r.IsEmpty() {
		return
	}
	gc.applyFill(c)
	gc.dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, radius)
	gc.fill()
}

// StrokeRect outlines r with the current stroke color at the given width.
func (gc *GraphicsContext) StrokeRect(r Rect, width float64) {
	if gc.disabled || width <= 0 || gc.state.strokeStyle == NoStroke {
		return
	}
	gc.applyStroke(width)
	gc.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	gc.strokePath()
}

// DrawRect fills r and draws a border of borderThickness inside its edges.
func (gc *GraphicsContext) DrawRect(r Rect, borderThickness float64) {
	if gc.disabled || r.IsEmpty() {
		return
	}
	gc.FillRect(r)
	if borderThickness <= 0 || gc.state.strokeStyle == NoStroke {
		return
	}
	half := borderThickness / 2
	inner := r.Inflate(-half, -half)
	if inner.Width < 0 || inner.Height < 0 {
		return
	}
	gc.StrokeRect(inner, borderThickness)
}

// DrawLine strokes a line between two points. It draws nothing when the
// stroke style is NoStroke or the thickness is zero.
func (gc *GraphicsContext) DrawLine(p1, p2 Vec2) {
	if gc.disabled || gc.state.strokeStyle == NoStroke || gc.state.thickness <= 0 {
		return
	}
	if p1 == p2 {
		return
	}
	gc.applyStroke(gc.state.thickness)
	gc.dc.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
	gc.strokePath()
}

// DrawEllipse fills the ellipse inscribed in r and strokes its outline
// unless the stroke style is NoStroke.
func (gc *GraphicsContext) DrawEllipse(r Rect) {
	if gc.disabled || r.IsEmpty() {
		return
	}
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	gc.applyFill(gc.state.fill)
	gc.dc.DrawEllipse(cx, cy, r.Width/2, r.Height/2)
	gc.fill()
	if gc.state.strokeStyle == NoStroke || gc.state.thickness <= 0 {
		return
	}
	gc.applyStroke(gc.state.thickness)
	gc.dc.DrawEllipse(cx, cy, r.Width/2, r.Height/2)
	gc.strokePath()
}

// ClearRect sets every device pixel covered by r to transparent, ignoring
// alpha and fill color. Rotated transforms clear r's bounding box.
func (gc *GraphicsContext) ClearRect(r Rect) {
	if gc.disabled || r.IsEmpty() {
		return
	}
	dev := gc.CTM().MapRect(r).Intersect(gc.state.clip)
	box := dev.Enclosing().Intersect(image.Rect(0, 0, gc.width, gc.height))
	if box.Empty() {
		return
	}
	pm := gc.dc.ResizeTarget()
	data := pm.Data()
	stride := pm.Width() * 4
	for y := box.Min.Y; y < box.Max.Y; y++ {
		row := data[y*stride+box.Min.X*4 : y*stride+box.Max.X*4]
		clear(row)
	}
}

// DrawImage draws img scaled into dst.
func (gc *GraphicsContext) DrawImage(img image.Image, dst Rect) {
	if gc.disabled || img == nil || dst.IsEmpty() {
		return
	}
	gc.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         dst.X,
		Y:         dst.Y,
		DstWidth:  dst.Width,
		DstHeight: dst.Height,
		Opacity:   gc.state.alpha,
	})
}

// --- Clipping ---

// Clip intersects the clip with r.
func (gc *GraphicsContext) Clip(r Rect) {
	dev := gc.CTM().MapRect(r)
	gc.state.clip = gc.state.clip.Intersect(dev)
	gc.dc.ClipRect(r.X, r.Y, r.Width, r.Height)
}

// ClipBounds returns the clip's bounding box in device space, rounded out to
// whole pixels.
func (gc *GraphicsContext) ClipBounds() image.Rectangle {
	return gc.state.clip.Enclosing()
}

// --- Transparency layers ---

// BeginTransparencyLayer redirects drawing into an offscreen layer that is
// composited at opacity by the matching EndTransparencyLayer.
func (gc *GraphicsContext) BeginTransparencyLayer(opacity float64) {
	gc.Save()
	gc.layers = append(gc.layers, len(gc.stack))
	gc.dc.PushLayer(gg.BlendNormal, clamp01(opacity))
}

// EndTransparencyLayer composites the innermost open layer. Calls without a
// matching begin are ignored.
func (gc *GraphicsContext) EndTransparencyLayer() {
	if len(gc.layers) == 0 {
		return
	}
	depth := gc.layers[len(gc.layers)-1]
	gc.layers = gc.layers[:len(gc.layers)-1]
	gc.dc.PopLayer()
	for len(gc.stack) >= depth && len(gc.stack) > 0 {
		gc.Restore()
	}
}

// TransparencyLayerDepth returns the number of open transparency layers.
func (gc *GraphicsContext) TransparencyLayerDepth() int {
	return len(gc.layers)
}

// RoundToDevicePixels snaps r to the device pixel grid under the current
// transform and returns it in user space.
func (gc *GraphicsContext) RoundToDevicePixels(r Rect) Rect {
	ctm := gc.CTM()
	inv, ok := ctm.Inverse()
	if !ok {
		return r
	}
	dev := ctm.MapRect(r)
	snapped := Rect{
		X: math.Round(dev.X),
		Y: math.Round(dev.Y),
	}
	snapped.Width = math.Round(dev.MaxX()) - snapped.X
	snapped.Height = math.Round(dev.MaxY()) - snapped.Y
	return inv.MapRect(snapped)
}
