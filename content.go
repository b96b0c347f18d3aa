package texmap

import (
	"image"

	"golang.org/x/image/draw"
)

// Layer is a live content source. PaintContents draws the layer into gc,
// whose CTM already maps layer coordinates to the destination buffer. clip
// is the region being repainted, in layer coordinates.
type Layer interface {
	PaintContents(gc *GraphicsContext, clip Rect)
}

// LayerFunc adapts a function to the Layer interface.
type LayerFunc func(gc *GraphicsContext, clip Rect)

// PaintContents calls f(gc, clip).
func (f LayerFunc) PaintContents(gc *GraphicsContext, clip Rect) { f(gc, clip) }

// DrawObserver is implemented by images that want to know when they have
// been uploaded, e.g. to drive animation or release decoded frames.
type DrawObserver interface {
	DidDraw()
}

type contentKind uint8

const (
	contentNone contentKind = iota
	contentImage
	contentLayer
)

// content is the store's single content source. Exactly one of image and
// layer is set, matching kind.
type content struct {
	kind  contentKind
	image image.Image
	layer Layer
	flag  UpdateContentsFlag
}

func imageContent(img image.Image) content {
	if img == nil {
		return content{}
	}
	return content{kind: contentImage, image: img, flag: UpdateCannotModifyOriginalImageData}
}

func layerContent(l Layer, flag UpdateContentsFlag) content {
	if l == nil {
		return content{}
	}
	return content{kind: contentLayer, layer: l, flag: flag}
}

// imageKnownOpaque reports whether img declares itself fully opaque.
// image.RGBA, image.NRGBA and friends implement Opaque; anything else is
// assumed to carry alpha.
func imageKnownOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// packedRGBA returns the size-sized region of src starting at off as a
// tightly packed RGBA image. Tightly packed RGBA sources are returned as a
// sub-image without copying; anything else is converted into *scratch,
// which is grown as needed.
func packedRGBA(src image.Image, size, off image.Point, scratch **image.RGBA) *image.RGBA {
	r := image.Rectangle{Min: off, Max: off.Add(size)}
	if rgba, ok := src.(*image.RGBA); ok && r.In(rgba.Rect) {
		sub := rgba.SubImage(r).(*image.RGBA)
		if sub.Stride == 4*size.X {
			return sub
		}
	}
	buf := *scratch
	if buf == nil || cap(buf.Pix) < 4*size.X*size.Y {
		buf = image.NewRGBA(image.Rectangle{Max: size})
		*scratch = buf
	} else {
		buf.Pix = buf.Pix[:4*size.X*size.Y]
		buf.Stride = 4 * size.X
		buf.Rect = image.Rectangle{Max: size}
	}
	draw.Draw(buf, buf.Rect, src, off, draw.Src)
	return buf
}
