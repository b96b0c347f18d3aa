package texmap

import (
	"image"
	"image/color"
	"strconv"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SoftwareMapper is a TextureMapper that keeps tile textures in memory and
// rasterizes them into a gg.Context on the CPU. It needs no window or GPU and
// backs headless replays and tests.
type SoftwareMapper struct {
	dc         *gg.Context
	clip       Rect
	maxTexture image.Point
	pool       texturePool[*image.RGBA]
	label      *image.RGBA
}

// NewSoftwareMapper creates a mapper drawing into dc. The clip starts as the
// full context.
func NewSoftwareMapper(dc *gg.Context) *SoftwareMapper {
	m := &SoftwareMapper{
		dc:         dc,
		clip:       Rect{Width: float64(dc.Width()), Height: float64(dc.Height())},
		maxTexture: image.Pt(DefaultMaxTextureSize, DefaultMaxTextureSize),
	}
	m.pool = texturePool[*image.RGBA]{
		alloc: func(w, h int) *image.RGBA { return image.NewRGBA(image.Rect(0, 0, w, h)) },
		clear: func(img *image.RGBA) { clear(img.Pix) },
		size:  func(img *image.RGBA) image.Point { return img.Rect.Size() },
	}
	return m
}

// Context returns the destination context.
func (m *SoftwareMapper) Context() *gg.Context { return m.dc }

// SetClipBounds overrides the device-space clip.
func (m *SoftwareMapper) SetClipBounds(r Rect) { m.clip = r }

// SetMaxTextureSize overrides the reported texture limit.
func (m *SoftwareMapper) SetMaxTextureSize(size image.Point) { m.maxTexture = size }

// MaxTextureSize implements TextureMapper.
func (m *SoftwareMapper) MaxTextureSize() image.Point { return m.maxTexture }

// ClipBounds implements TextureMapper.
func (m *SoftwareMapper) ClipBounds() Rect { return m.clip }

// CreateTexture implements TextureMapper.
func (m *SoftwareMapper) CreateTexture() BitmapTexture {
	return &softwareTexture{mapper: m}
}

// Clear fills the destination with transparent black.
func (m *SoftwareMapper) Clear() {
	m.dc.ClearWithColor(gg.Transparent)
}

// withClip runs draw with the context transform set to t and clipped to the
// mapper clip in device space.
func (m *SoftwareMapper) withClip(t Transform, draw func()) {
	m.dc.Push()
	defer m.dc.Pop()
	m.dc.Identity()
	m.dc.ClipRect(m.clip.X, m.clip.Y, m.clip.Width, m.clip.Height)
	m.dc.SetTransform(t.matrix())
	draw()
}

// DrawTexture implements TextureMapper.
func (m *SoftwareMapper) DrawTexture(tex BitmapTexture, target Rect, t Transform, opacity float64, _ Edges) {
	st, ok := tex.(*softwareTexture)
	if !ok || st.img == nil || opacity <= 0 || target.IsEmpty() || m.clip.IsEmpty() {
		return
	}
	w := min(int(target.Width+0.5), st.size.X)
	h := min(int(target.Height+0.5), st.size.Y)
	if w <= 0 || h <= 0 {
		return
	}
	buf := st.imageBuf()
	src := image.Rect(0, 0, w, h)
	m.withClip(t, func() {
		m.dc.DrawImageEx(buf, gg.DrawImageOptions{
			X:         target.X,
			Y:         target.Y,
			DstWidth:  target.Width,
			DstHeight: target.Height,
			SrcRect:   &src,
			Opacity:   clamp01(opacity),
		})
	})
}

// DrawBorder implements TextureMapper.
func (m *SoftwareMapper) DrawBorder(c Color, width float64, r Rect, t Transform) {
	if width <= 0 || m.clip.IsEmpty() {
		return
	}
	q := t.MapQuad(r)
	m.withClip(Identity, func() {
		m.dc.SetRGBA(c.R, c.G, c.B, c.A)
		m.dc.SetLineWidth(width)
		m.dc.MoveTo(q[0].X, q[0].Y)
		for _, p := range q[1:] {
			m.dc.LineTo(p.X, p.Y)
		}
		m.dc.ClosePath()
		if err := m.dc.Stroke(); err != nil {
			Logger().Debug("texmap: stroke tile border", "error", err)
		}
	})
}

// DrawNumber implements TextureMapper. Digits are rendered with the basic
// 7x13 bitmap face.
func (m *SoftwareMapper) DrawNumber(n int, c Color, at Vec2, t Transform) {
	if m.clip.IsEmpty() {
		return
	}
	s := strconv.Itoa(n)
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Metrics().Height.Ceil()
	if m.label == nil || m.label.Rect.Dx() < w || m.label.Rect.Dy() < h {
		m.label = image.NewRGBA(image.Rect(0, 0, max(w, 64), max(h, 16)))
	} else {
		clear(m.label.Pix)
	}
	d := font.Drawer{
		Dst:  m.label,
		Src:  image.NewUniform(color.RGBA(c.toRGBA())),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	x, y := t.Apply(at.X, at.Y)
	buf := gg.ImageBufFromImage(m.label)
	src := image.Rect(0, 0, w, h)
	m.withClip(Identity, func() {
		m.dc.DrawImageEx(buf, gg.DrawImageOptions{
			X:       x + 2,
			Y:       y + 2,
			SrcRect: &src,
		})
	})
}

// softwareTexture is a tile texture backed by a pooled RGBA image.
type softwareTexture struct {
	mapper  *SoftwareMapper
	img     *image.RGBA
	size    image.Point
	flags   TextureFlags
	scratch *image.RGBA

	buf *gg.ImageBuf // cached conversion of img, nil when stale
}

func (t *softwareTexture) imageBuf() *gg.ImageBuf {
	if t.buf == nil {
		t.buf = gg.ImageBufFromImage(t.img)
	}
	return t.buf
}

func (t *softwareTexture) Size() image.Point { return t.size }

func (t *softwareTexture) IsValid() bool { return t.img != nil }

func (t *softwareTexture) Reset(size image.Point, flags TextureFlags) {
	t.flags = flags
	t.buf = nil
	if size.X <= 0 || size.Y <= 0 {
		t.Release()
		return
	}
	if t.img != nil && t.size == size {
		clear(t.img.Pix)
		return
	}
	if t.img != nil {
		t.mapper.pool.release(t.img)
	}
	t.img = t.mapper.pool.acquire(size.X, size.Y)
	t.size = size
}

// UpdateContents implements BitmapTexture. With
// UpdateCanModifyOriginalImageData, a same-size RGBA source covering the
// whole texture is adopted instead of copied.
func (t *softwareTexture) UpdateContents(src image.Image, target image.Rectangle, srcOffset image.Point, flag UpdateContentsFlag) {
	if t.img == nil || src == nil {
		return
	}
	clipped := target.Intersect(image.Rectangle{Max: t.size})
	if clipped.Empty() {
		return
	}
	srcOffset = srcOffset.Add(clipped.Min.Sub(target.Min))
	t.buf = nil

	if flag == UpdateCanModifyOriginalImageData && clipped == t.img.Rect {
		if rgba, ok := src.(*image.RGBA); ok && rgba.Rect == clipped && srcOffset == (image.Point{}) {
			t.mapper.pool.release(t.img)
			t.img = rgba
			return
		}
	}

	size := clipped.Size()
	buf := packedRGBA(src, size, srcOffset, &t.scratch)
	for y := 0; y < size.Y; y++ {
		row := buf.Pix[y*buf.Stride : y*buf.Stride+4*size.X]
		off := t.img.PixOffset(clipped.Min.X, clipped.Min.Y+y)
		copy(t.img.Pix[off:off+4*size.X], row)
	}
}

func (t *softwareTexture) Release() {
	if t.img != nil {
		t.mapper.pool.release(t.img)
		t.img = nil
	}
	t.buf = nil
	t.size = image.Point{}
}
