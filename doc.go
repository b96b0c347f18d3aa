// Package texmap is a tiled backing store for compositing large layers
// through a texture-based paint backend such as [Ebitengine].
//
// A [TiledBackingStore] splits a layer's content into a grid of fixed-size
// tiles and keeps a texture only for the tiles near the viewport. Every
// [TiledBackingStore.Paint] recomputes the grid against the current
// transform and clip, recycles the textures of tiles that scrolled away,
// uploads regions that changed and draws the tiles.
//
// # Quick start
//
//	store := texmap.NewTiledBackingStore(texmap.DefaultConfig())
//	mapper := texmap.NewEbitenMapper()
//	vp := texmap.NewViewport(1280, 720)
//
//	// Content changed: mark it dirty (layer coordinates).
//	store.UpdateContents(layer, texmap.Size{Width: 4000, Height: 3000},
//		image.Rect(0, 0, 4000, 3000), texmap.UpdateCannotModifyOriginalImageData)
//
//	// Each frame:
//	mapper.Begin(screen)
//	store.Paint(mapper, texmap.Rect{Width: 4000, Height: 3000}, vp.Transform(), 1)
//
// # Content
//
// Content is either a live [Layer], which paints itself into a
// [GraphicsContext] for each dirty tile region, or a one-shot
// [image.Image] set with [TiledBackingStore.SetContentsToImage] that is
// uploaded in full on the next Paint and then dropped.
//
// # Backends
//
// [EbitenMapper] draws tiles on the GPU through ebiten. [SoftwareMapper]
// rasterizes into a [gg.Context] and needs no window, which makes it the
// backend of choice for headless replays driven by a [ScriptRunner].
//
// # Logging
//
// texmap is silent by default. Call [SetLogger] with a [log/slog] logger
// to see grid recomputes at debug level.
//
// [Ebitengine]: https://ebitengine.org
// [gg.Context]: https://pkg.go.dev/github.com/gogpu/gg#Context
package texmap
