package texmap

import "image"

// TextureMapper is the paint backend a TiledBackingStore draws through.
// Implementations own texture storage and the current draw target.
type TextureMapper interface {
	// MaxTextureSize is the largest texture the backend can allocate.
	MaxTextureSize() image.Point
	// ClipBounds is the current clip in device space.
	ClipBounds() Rect
	// CreateTexture returns an empty texture, or nil when the backend is out
	// of storage.
	CreateTexture() BitmapTexture
	// DrawTexture draws the top-left target.Width x target.Height pixels of
	// tex onto target, mapped through t.
	DrawTexture(tex BitmapTexture, target Rect, t Transform, opacity float64, edges Edges)
	DrawBorder(c Color, width float64, r Rect, t Transform)
	DrawNumber(n int, c Color, at Vec2, t Transform)
}

// BitmapTexture is backend texture storage for one tile.
type BitmapTexture interface {
	Size() image.Point
	// IsValid reports whether the texture holds allocated storage. A failed
	// Reset leaves the texture invalid.
	IsValid() bool
	// Reset resizes the texture and clears its contents.
	Reset(size image.Point, flags TextureFlags)
	// UpdateContents copies the src region starting at srcOffset into the
	// target rectangle (texture coordinates).
	UpdateContents(src image.Image, target image.Rectangle, srcOffset image.Point, flag UpdateContentsFlag)
	// Release returns the storage to the backend. The texture must not be
	// used afterwards.
	Release()
}
