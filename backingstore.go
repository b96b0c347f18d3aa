package texmap

import (
	"image"
	"log/slog"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DefaultTileSize is the tile edge used when Config.TileSize is zero. The
// effective size is further capped by the backend's maximum texture size.
const DefaultTileSize = 512

// Config configures a TiledBackingStore. Zero fields take their
// DefaultConfig values.
type Config struct {
	// TileSize is the tile edge in tile-space pixels.
	TileSize int
	// EraseThreshold is the minimum number of tiles kept after eviction.
	// Tiles kept only because of it are parked: never drawn, recycled first.
	EraseThreshold int
	// RasterWorkers rasterizes dirty layer regions on this many goroutines.
	// Values above 1 require Layer.PaintContents to be safe for concurrent
	// use. Uploads always happen on the calling goroutine.
	RasterWorkers int
	// Logger overrides the package logger for this store.
	Logger *slog.Logger
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		TileSize:       DefaultTileSize,
		EraseThreshold: 0,
		RasterWorkers:  1,
	}
}

// TiledBackingStore splits a layer's content into a grid of fixed-size tiles
// and keeps one texture per tile for the part of the content near the
// viewport. Each Paint recomputes which tiles are needed, recycles tiles
// that scrolled out of view, uploads dirty regions and draws the tiles.
//
// A TiledBackingStore is not safe for concurrent use.
type TiledBackingStore struct {
	cfg Config

	tiles         []Tile
	size          Size    // content size in layer space
	contentsScale float64 // layer space to tile space
	dirtyRect     image.Rectangle

	visibleRect Rect        // visible rect used for the current grid
	coverRect   Rect        // grid-aligned cover of visibleRect
	tileSize    image.Point // tile size used for the current grid
	gridScale   float64     // tile-space scale used for the current grid
	sizeDirty   bool
	scaleDirty  bool

	content content
	// space is the kind of the last non-empty content. It decides whether
	// tile space is scaled and survives consumption of an image source.
	space contentKind

	stats Stats
}

// NewTiledBackingStore returns an empty store.
func NewTiledBackingStore(cfg Config) *TiledBackingStore {
	def := DefaultConfig()
	if cfg.TileSize <= 0 {
		cfg.TileSize = def.TileSize
	}
	if cfg.EraseThreshold < 0 {
		cfg.EraseThreshold = 0
	}
	if cfg.RasterWorkers <= 0 {
		cfg.RasterWorkers = def.RasterWorkers
	}
	return &TiledBackingStore{
		cfg:           cfg,
		contentsScale: 1,
		gridScale:     1,
	}
}

func (s *TiledBackingStore) logger() *slog.Logger {
	if s.cfg.Logger != nil {
		return s.cfg.Logger
	}
	return Logger()
}

// tileScale is the factor from layer space to tile space. Image content is
// already rasterized, so its tile space is its pixel space.
func (s *TiledBackingStore) tileScale() float64 {
	if s.space == contentImage {
		return 1
	}
	return s.contentsScale
}

// contentRect is the content bounds in tile space.
func (s *TiledBackingStore) contentRect() Rect {
	return Rect{Width: s.size.Width, Height: s.size.Height}.Scale(s.tileScale())
}

// Paint recomputes the tile grid for the viewport described by target, t
// and m's clip, uploads pending content and draws every tile.
func (s *TiledBackingStore) Paint(m TextureMapper, target Rect, t Transform, opacity float64) {
	total := s.contentRect()
	adjusted := t.Multiply(RectToRect(total, target))

	switch s.content.kind {
	case contentImage:
		s.updateFromImage(m, adjusted)
	case contentLayer:
		s.updateFromLayer(m, adjusted)
	}

	draws := 0
	for i := range s.tiles {
		tl := &s.tiles[i]
		if tl.parked {
			continue
		}
		if tl.paint(m, adjusted, opacity, total) {
			draws++
		}
	}
	s.stats.Draws += draws
}

// DrawBorder outlines every live tile. Used for debugging tile layout.
func (s *TiledBackingStore) DrawBorder(m TextureMapper, c Color, width float64, target Rect, t Transform) {
	adjusted := t.Multiply(RectToRect(s.contentRect(), target))
	for i := range s.tiles {
		if s.tiles[i].parked {
			continue
		}
		m.DrawBorder(c, width, s.tiles[i].rect, adjusted)
	}
}

// DrawRepaintCounter draws count at the top-left corner of every live tile.
func (s *TiledBackingStore) DrawRepaintCounter(m TextureMapper, count int, c Color, target Rect, t Transform) {
	adjusted := t.Multiply(RectToRect(s.contentRect(), target))
	for i := range s.tiles {
		if s.tiles[i].parked {
			continue
		}
		r := s.tiles[i].rect
		m.DrawNumber(count, c, Vec2{r.X, r.Y}, adjusted)
	}
}

// UpdateContentsScale sets the factor from layer space to tile space. A
// change invalidates every tile on the next Paint.
func (s *TiledBackingStore) UpdateContentsScale(scale float64) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		s.logger().Debug("texmap: ignoring contents scale", "scale", scale)
		return
	}
	if scale == s.contentsScale {
		return
	}
	s.contentsScale = scale
	s.scaleDirty = true
}

// UpdateContents selects layer as the content source. totalSize is the
// layer's size and dirty the region that changed, both in layer space. Dirty
// regions accumulate until the next Paint uploads them.
func (s *TiledBackingStore) UpdateContents(layer Layer, totalSize Size, dirty image.Rectangle, flag UpdateContentsFlag) {
	s.setContent(layerContent(layer, flag))
	s.SetContentSize(totalSize)
	if dirty.Empty() {
		return
	}
	d := RectFromImage(dirty).Scale(s.tileScale()).Enclosing()
	s.dirtyRect = s.dirtyRect.Union(d)
}

// SetContentsToImage selects img as the content source. The image is
// uploaded in full by the next Paint and then dropped. A nil image clears
// the content.
func (s *TiledBackingStore) SetContentsToImage(img image.Image) {
	s.setContent(imageContent(img))
	var size Size
	if img != nil {
		b := img.Bounds()
		size = Size{float64(b.Dx()), float64(b.Dy())}
	}
	s.SetContentSize(size)
}

func (s *TiledBackingStore) setContent(c content) {
	s.content = c
	if c.kind != contentNone {
		s.space = c.kind
	}
}

// SetContentSize sets the content size in layer space.
func (s *TiledBackingStore) SetContentSize(size Size) {
	if size == s.size {
		return
	}
	s.size = size
	s.sizeDirty = true
}

// Texture returns the texture of the first live tile, or nil.
func (s *TiledBackingStore) Texture() BitmapTexture {
	for i := range s.tiles {
		tl := &s.tiles[i]
		if !tl.parked && tl.texture != nil {
			return tl.texture
		}
	}
	return nil
}

// Tiles returns a snapshot of the tile list in storage order.
func (s *TiledBackingStore) Tiles() []TileInfo {
	out := make([]TileInfo, len(s.tiles))
	for i := range s.tiles {
		out[i] = s.tiles[i].info()
	}
	return out
}

// CoverRect returns the grid-aligned region covered by live tiles.
func (s *TiledBackingStore) CoverRect() Rect { return s.coverRect }

// VisibleRect returns the tile-space region requested by the last grid
// recompute.
func (s *TiledBackingStore) VisibleRect() Rect { return s.visibleRect }

// ContentsScale returns the current contents scale.
func (s *TiledBackingStore) ContentsScale() float64 { return s.contentsScale }

// Stats returns cumulative tile churn counters.
func (s *TiledBackingStore) Stats() Stats { return s.stats }

// Release frees every tile texture and empties the grid. The store keeps its
// content and can be painted again.
func (s *TiledBackingStore) Release() {
	for i := range s.tiles {
		s.tiles[i].release()
	}
	s.tiles = s.tiles[:0]
	s.visibleRect = Rect{}
	s.coverRect = Rect{}
	s.tileSize = image.Point{}
}

// effectiveTileSize caps the configured tile size by the backend limit.
func (s *TiledBackingStore) effectiveTileSize(m TextureMapper) image.Point {
	ts := image.Pt(s.cfg.TileSize, s.cfg.TileSize)
	max := m.MaxTextureSize()
	if max.X > 0 && max.X < ts.X {
		ts.X = max.X
	}
	if max.Y > 0 && max.Y < ts.Y {
		ts.Y = max.Y
	}
	return ts
}

// recomputeTileGrid brings the tile list in line with the region visible
// through t and m's clip.
func (s *TiledBackingStore) recomputeTileGrid(m TextureMapper, t Transform, hasAlpha bool) {
	ts := s.effectiveTileSize(m)
	tw, th := float64(ts.X), float64(ts.Y)
	total := s.contentRect()

	var visible Rect
	if inv, ok := t.Inverse(); ok {
		clip := m.ClipBounds().Inflate(tw, th)
		dev := t.MapRect(total).Intersect(clip)
		if dev.IsEmpty() {
			return
		}
		visible = inv.MapRect(dev).Intersect(total)
	}

	scale := s.tileScale()
	full := s.scaleDirty || ts != s.tileSize || scale != s.gridScale
	if !s.sizeDirty && !full && visible == s.visibleRect {
		return
	}

	cover := alignOutward(visible, tw, th)
	var rigid Rect
	if !full {
		rigid = alignInward(s.visibleRect.Intersect(visible), tw, th)
	}

	var adds []Rect
	for y := cover.Y; y < cover.MaxY(); y += th {
		for x := cover.X; x < cover.MaxX(); x += tw {
			cell := Rect{X: x, Y: y, Width: tw, Height: th}
			if !rigid.ContainsRect(cell) {
				adds = append(adds, cell)
			}
		}
	}

	// Candidates are collected in descending index order so that eviction
	// by swap-and-pop never moves a pending candidate.
	var candidates []int
	for i := len(s.tiles) - 1; i >= 0; i-- {
		tl := &s.tiles[i]
		if tl.parked || !rigid.ContainsRect(tl.rect) {
			candidates = append(candidates, i)
		}
	}
	numCandidates := len(candidates)

	flags := textureFlags(hasAlpha)
	var created, recycled int
	for _, cell := range adds {
		s.dirtyRect = s.dirtyRect.Union(cell.Enclosing())
		if len(candidates) == 0 {
			s.tiles = append(s.tiles, Tile{rect: cell, visibleRect: cell.Intersect(visible)})
			created++
			continue
		}
		k := s.pickCandidate(candidates, cell)
		idx := candidates[k]
		candidates = slices.Delete(candidates, k, k+1)

		tl := &s.tiles[idx]
		inPlace := tl.rect == cell && !tl.parked && !full
		tl.rect = cell
		tl.visibleRect = cell.Intersect(visible)
		tl.parked = false
		if tl.texture != nil && !inPlace {
			tl.texture.Reset(ts, flags)
		}
		recycled++
	}

	var removed, parked int
	for _, idx := range candidates {
		if len(s.tiles) <= s.cfg.EraseThreshold {
			tl := &s.tiles[idx]
			tl.parked = true
			tl.visibleRect = Rect{}
			parked++
			continue
		}
		s.removeTile(idx)
		removed++
	}

	s.visibleRect = visible
	s.coverRect = cover
	s.tileSize = ts
	s.gridScale = scale
	s.sizeDirty = false
	s.scaleDirty = false

	s.stats.Recomputes++
	s.stats.Created += created
	s.stats.Recycled += recycled
	s.stats.Removed += removed
	s.stats.Last = GridChange{
		Added:      len(adds),
		Candidates: numCandidates,
		Created:    created,
		Recycled:   recycled,
		Removed:    removed,
		Parked:     parked,
	}
	s.stats.log(s.logger(), cover, len(s.tiles))
}

// pickCandidate chooses which removal candidate to recycle for cell: a live
// tile already at cell, else a parked tile, else the lowest-index candidate.
func (s *TiledBackingStore) pickCandidate(candidates []int, cell Rect) int {
	parked := -1
	for k, idx := range candidates {
		tl := &s.tiles[idx]
		if tl.rect == cell && !tl.parked {
			return k
		}
		if parked < 0 && tl.parked {
			parked = k
		}
	}
	if parked >= 0 {
		return parked
	}
	return len(candidates) - 1
}

func (s *TiledBackingStore) removeTile(i int) {
	s.tiles[i].release()
	last := len(s.tiles) - 1
	s.tiles[i] = s.tiles[last]
	s.tiles[last] = Tile{}
	s.tiles = s.tiles[:last]
}

// alignOutward expands r to whole tiles.
func alignOutward(r Rect, tw, th float64) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	x0 := math.Floor(r.X/tw) * tw
	y0 := math.Floor(r.Y/th) * th
	x1 := math.Ceil(r.MaxX()/tw) * tw
	y1 := math.Ceil(r.MaxY()/th) * th
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// alignInward shrinks r to the whole tiles it fully contains.
func alignInward(r Rect, tw, th float64) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	x0 := math.Ceil(r.X/tw) * tw
	y0 := math.Ceil(r.Y/th) * th
	x1 := math.Floor(r.MaxX()/tw) * tw
	y1 := math.Floor(r.MaxY()/th) * th
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// updateFromImage recomputes the grid and uploads the whole image, then
// drops the image source.
func (s *TiledBackingStore) updateFromImage(m TextureMapper, t Transform) {
	img := s.content.image
	hasAlpha := !imageKnownOpaque(img)
	s.recomputeTileGrid(m, t, hasAlpha)

	flags := textureFlags(hasAlpha)
	b := img.Bounds()
	bounds := image.Rect(0, 0, b.Dx(), b.Dy())
	for i := range s.tiles {
		tl := &s.tiles[i]
		if tl.parked {
			continue
		}
		target := tl.rect.Enclosing().Intersect(bounds)
		if target.Empty() {
			continue
		}
		tex := tl.ensureTexture(m, s.tileSize, flags)
		if tex == nil {
			s.logger().Warn("texmap: tile has no texture", "rect", tl.rect)
			continue
		}
		tex.UpdateContents(img, target.Sub(tl.origin()), target.Min.Add(b.Min), s.content.flag)
		s.stats.Uploads++
	}

	if o, ok := img.(DrawObserver); ok {
		o.DidDraw()
	}
	s.content = content{}
	s.dirtyRect = image.Rectangle{}
}

// rasterJob is one tile's share of a dirty layer region.
type rasterJob struct {
	tile   int
	target image.Rectangle // tile space
	buf    *image.RGBA
}

// updateFromLayer recomputes the grid, rasterizes the dirty region of every
// affected tile and uploads it.
func (s *TiledBackingStore) updateFromLayer(m TextureMapper, t Transform) {
	s.recomputeTileGrid(m, t, true)
	if s.dirtyRect.Empty() {
		return
	}

	dirty := s.dirtyRect.Intersect(s.contentRect().Enclosing())
	var jobs []rasterJob
	for i := range s.tiles {
		tl := &s.tiles[i]
		if tl.parked {
			continue
		}
		target := tl.rect.Enclosing().Intersect(dirty)
		if target.Empty() {
			continue
		}
		jobs = append(jobs, rasterJob{tile: i, target: target})
	}

	s.rasterize(s.content.layer, jobs)

	flags := textureFlags(true)
	for _, j := range jobs {
		if j.buf == nil {
			continue
		}
		tl := &s.tiles[j.tile]
		tex := tl.ensureTexture(m, s.tileSize, flags)
		if tex == nil {
			s.logger().Warn("texmap: tile has no texture", "rect", tl.rect)
			continue
		}
		tex.UpdateContents(j.buf, j.target.Sub(tl.origin()), image.Point{}, s.content.flag)
		s.stats.Uploads++
	}
	s.dirtyRect = image.Rectangle{}
}

// rasterize paints layer into one buffer per job, fanning out over
// RasterWorkers goroutines.
func (s *TiledBackingStore) rasterize(layer Layer, jobs []rasterJob) {
	scale := s.tileScale()
	paint := func(j *rasterJob) error {
		gc := NewGraphicsContext(j.target.Dx(), j.target.Dy())
		gc.Translate(-float64(j.target.Min.X), -float64(j.target.Min.Y))
		gc.Scale(scale, scale)
		clip := RectFromImage(j.target).Scale(1 / scale)
		gc.Clip(clip)
		layer.PaintContents(gc, clip)
		if err := gc.Flush(); err != nil {
			gc.Close()
			return err
		}
		j.buf = gc.Image()
		return gc.Close()
	}

	if s.cfg.RasterWorkers <= 1 || len(jobs) < 2 {
		for i := range jobs {
			if err := paint(&jobs[i]); err != nil {
				s.logger().Warn("texmap: rasterize tile", "target", jobs[i].target, "error", err)
			}
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.RasterWorkers)
	for i := range jobs {
		j := &jobs[i]
		g.Go(func() error { return paint(j) })
	}
	if err := g.Wait(); err != nil {
		s.logger().Warn("texmap: rasterize tiles", "jobs", len(jobs), "error", err)
	}
}
