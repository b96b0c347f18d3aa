package texmap

import (
	"image"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// DefaultMaxTextureSize is the texture limit EbitenMapper reports unless
// SetMaxTextureSize overrides it.
const DefaultMaxTextureSize = 4096

// EbitenMapper is a TextureMapper that keeps tile textures as ebiten images
// and draws them onto a target image on the GPU.
type EbitenMapper struct {
	target     *ebiten.Image
	clip       Rect
	maxTexture image.Point
	pool       texturePool[*ebiten.Image]

	// Preallocated buffers for rotated tile quads.
	verts [4]ebiten.Vertex
	inds  [6]uint16

	label *ebiten.Image // scratch for DrawNumber
}

// NewEbitenMapper creates a mapper. Call Begin before painting.
func NewEbitenMapper() *EbitenMapper {
	m := &EbitenMapper{
		maxTexture: image.Pt(DefaultMaxTextureSize, DefaultMaxTextureSize),
		inds:       [6]uint16{0, 1, 2, 0, 2, 3},
	}
	m.pool = texturePool[*ebiten.Image]{
		alloc: func(w, h int) *ebiten.Image {
			return ebiten.NewImageWithOptions(
				image.Rect(0, 0, w, h),
				&ebiten.NewImageOptions{Unmanaged: true},
			)
		},
		clear: func(img *ebiten.Image) { img.Clear() },
		size:  func(img *ebiten.Image) image.Point { return img.Bounds().Size() },
	}
	return m
}

// Begin sets the draw target and resets the clip to its bounds.
func (m *EbitenMapper) Begin(target *ebiten.Image) {
	m.target = target
	if target != nil {
		m.clip = RectFromImage(target.Bounds())
	} else {
		m.clip = Rect{}
	}
}

// SetClipBounds overrides the device-space clip.
func (m *EbitenMapper) SetClipBounds(r Rect) { m.clip = r }

// SetMaxTextureSize overrides the reported texture limit.
func (m *EbitenMapper) SetMaxTextureSize(size image.Point) { m.maxTexture = size }

// MaxTextureSize implements TextureMapper.
func (m *EbitenMapper) MaxTextureSize() image.Point { return m.maxTexture }

// ClipBounds implements TextureMapper.
func (m *EbitenMapper) ClipBounds() Rect { return m.clip }

// CreateTexture implements TextureMapper. Storage is taken from the pool on
// the first Reset.
func (m *EbitenMapper) CreateTexture() BitmapTexture {
	return &ebitenTexture{mapper: m}
}

// Dispose deallocates every pooled image. Textures still held by tiles
// remain valid.
func (m *EbitenMapper) Dispose() {
	m.pool.drain(func(img *ebiten.Image) { img.Deallocate() })
	if m.label != nil {
		m.label.Deallocate()
		m.label = nil
	}
}

// dst returns the target restricted to the clip, or nil when nothing can
// be drawn.
func (m *EbitenMapper) dst() *ebiten.Image {
	if m.target == nil {
		return nil
	}
	r := m.clip.Enclosing().Intersect(m.target.Bounds())
	if r.Empty() {
		return nil
	}
	return m.target.SubImage(r).(*ebiten.Image)
}

// DrawTexture implements TextureMapper. Axis-aligned tiles are drawn with
// DrawImage; rotated tiles with an exposed edge are drawn as an
// antialiased quad so the content boundary stays smooth.
func (m *EbitenMapper) DrawTexture(tex BitmapTexture, target Rect, t Transform, opacity float64, edges Edges) {
	et, ok := tex.(*ebitenTexture)
	if !ok || et.img == nil || opacity <= 0 || target.IsEmpty() {
		return
	}
	dst := m.dst()
	if dst == nil {
		return
	}
	w := min(int(math.Ceil(target.Width)), et.size.X)
	h := min(int(math.Ceil(target.Height)), et.size.Y)
	if w <= 0 || h <= 0 {
		return
	}
	src := et.img.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	a := float32(clamp01(opacity))

	if t.IsRectilinear() || edges == EdgesNone {
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(target.Width/float64(w), target.Height/float64(h))
		op.GeoM.Translate(target.X, target.Y)
		op.GeoM.Concat(t.geoM())
		op.ColorScale.Scale(a, a, a, a)
		op.Filter = ebiten.FilterLinear
		dst.DrawImage(src, &op)
		return
	}

	q := t.MapQuad(target)
	uv := [4][2]float32{{0, 0}, {float32(w), 0}, {float32(w), float32(h)}, {0, float32(h)}}
	for i := range m.verts {
		m.verts[i] = ebiten.Vertex{
			DstX:   float32(q[i].X),
			DstY:   float32(q[i].Y),
			SrcX:   uv[i][0],
			SrcY:   uv[i][1],
			ColorR: a,
			ColorG: a,
			ColorB: a,
			ColorA: a,
		}
	}
	dst.DrawTriangles(m.verts[:], m.inds[:], src, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		Filter:    ebiten.FilterLinear,
	})
}

// DrawBorder implements TextureMapper.
func (m *EbitenMapper) DrawBorder(c Color, width float64, r Rect, t Transform) {
	dst := m.dst()
	if dst == nil || width <= 0 {
		return
	}
	q := t.MapQuad(r)
	clr := c.toRGBA()
	for i := range q {
		p0, p1 := q[i], q[(i+1)%4]
		vector.StrokeLine(dst,
			float32(p0.X), float32(p0.Y), float32(p1.X), float32(p1.Y),
			float32(width), clr, true)
	}
}

// DrawNumber implements TextureMapper. The number is printed with the
// ebiten debug font and tinted with c.
func (m *EbitenMapper) DrawNumber(n int, c Color, at Vec2, t Transform) {
	dst := m.dst()
	if dst == nil {
		return
	}
	if m.label == nil {
		m.label = ebiten.NewImage(80, 16)
	}
	m.label.Clear()
	ebitenutil.DebugPrintAt(m.label, strconv.Itoa(n), 0, 0)

	x, y := t.Apply(at.X, at.Y)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(math.Round(x)+2, math.Round(y)+2)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	dst.DrawImage(m.label, &op)
}

// ebitenTexture is a tile texture backed by a pooled ebiten image.
type ebitenTexture struct {
	mapper  *EbitenMapper
	img     *ebiten.Image
	size    image.Point
	flags   TextureFlags
	scratch *image.RGBA
}

func (t *ebitenTexture) Size() image.Point { return t.size }

func (t *ebitenTexture) IsValid() bool { return t.img != nil }

func (t *ebitenTexture) Reset(size image.Point, flags TextureFlags) {
	t.flags = flags
	if size.X <= 0 || size.Y <= 0 {
		t.Release()
		return
	}
	if t.img != nil && t.size == size {
		t.img.Clear()
		return
	}
	if t.img != nil {
		t.mapper.pool.release(t.img)
	}
	t.img = t.mapper.pool.acquire(size.X, size.Y)
	t.size = size
}

func (t *ebitenTexture) UpdateContents(src image.Image, target image.Rectangle, srcOffset image.Point, _ UpdateContentsFlag) {
	if t.img == nil || src == nil {
		return
	}
	clipped := target.Intersect(image.Rectangle{Max: t.size})
	if clipped.Empty() {
		return
	}
	srcOffset = srcOffset.Add(clipped.Min.Sub(target.Min))
	size := clipped.Size()
	buf := packedRGBA(src, size, srcOffset, &t.scratch)
	t.img.SubImage(clipped).(*ebiten.Image).WritePixels(buf.Pix[:4*size.X*size.Y])
}

func (t *ebitenTexture) Release() {
	if t.img != nil {
		t.mapper.pool.release(t.img)
		t.img = nil
	}
	t.size = image.Point{}
}
