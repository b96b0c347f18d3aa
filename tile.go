package texmap

import "image"

// Tile is one grid cell of a TiledBackingStore.
type Tile struct {
	rect        Rect // exactly one grid cell, tile space
	visibleRect Rect // part of rect requested at the last grid recompute
	texture     BitmapTexture

	// parked tiles were kept only by the erase threshold. They hold on to
	// their texture for recycling but are never uploaded or drawn.
	parked bool
}

// TileInfo is a read-only snapshot of a tile.
type TileInfo struct {
	Rect        Rect
	VisibleRect Rect
	HasTexture  bool
	Parked      bool
}

func (t *Tile) info() TileInfo {
	return TileInfo{
		Rect:        t.rect,
		VisibleRect: t.visibleRect,
		HasTexture:  t.texture != nil && t.texture.IsValid(),
		Parked:      t.parked,
	}
}

func (t *Tile) origin() image.Point {
	return image.Pt(int(t.rect.X), int(t.rect.Y))
}

// ensureTexture returns a valid texture sized for the tile, creating one
// through m if needed. It returns nil when the backend cannot provide one.
func (t *Tile) ensureTexture(m TextureMapper, size image.Point, flags TextureFlags) BitmapTexture {
	if t.texture == nil {
		tex := m.CreateTexture()
		if tex == nil {
			return nil
		}
		t.texture = tex
		tex.Reset(size, flags)
	} else if !t.texture.IsValid() {
		t.texture.Reset(size, flags)
	}
	if !t.texture.IsValid() {
		return nil
	}
	return t.texture
}

// paint draws the part of the tile that overlaps total. Tiles without a
// usable texture draw nothing.
func (t *Tile) paint(m TextureMapper, tr Transform, opacity float64, total Rect) bool {
	if t.texture == nil || !t.texture.IsValid() {
		return false
	}
	target := t.rect.Intersect(total)
	if target.IsEmpty() {
		return false
	}
	m.DrawTexture(t.texture, target, tr, opacity, exposedEdges(total, t.rect))
	return true
}

func (t *Tile) release() {
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

func textureFlags(hasAlpha bool) TextureFlags {
	if hasAlpha {
		return TextureSupportsAlpha
	}
	return 0
}
