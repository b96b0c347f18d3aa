package texmap

import (
	"image"
	"image/color"
	"testing"
)

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 3, 4, 5}, Rect{2, 3, 4, 5}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{}},
		{"touching", Rect{0, 0, 10, 10}, Rect{10, 0, 5, 5}, Rect{}},
		{"negative", Rect{-10, -10, 15, 15}, Rect{-5, -20, 30, 10}, Rect{-5, -10, 10, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if tt.want.IsEmpty() {
				if !got.IsEmpty() {
					t.Errorf("Intersect = %+v, want empty", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Intersect = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	r := Rect{1, 2, 3, 4}
	if got := r.Union(Rect{}); got != r {
		t.Errorf("r ∪ empty = %+v", got)
	}
	if got := (Rect{}).Union(r); got != r {
		t.Errorf("empty ∪ r = %+v", got)
	}
	got := r.Union(Rect{10, 10, 2, 2})
	want := Rect{1, 2, 11, 10}
	if got != want {
		t.Errorf("union = %+v, want %+v", got, want)
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := Rect{0, 0, 100, 100}
	if !outer.ContainsRect(Rect{0, 0, 100, 100}) {
		t.Error("rect should contain itself")
	}
	if !outer.ContainsRect(Rect{10, 10, 20, 20}) {
		t.Error("inner rect not contained")
	}
	if outer.ContainsRect(Rect{90, 90, 20, 20}) {
		t.Error("overhanging rect reported contained")
	}
	if (Rect{}).ContainsRect(Rect{}) {
		t.Error("empty rect must contain nothing")
	}
}

func TestRectEnclosing(t *testing.T) {
	got := Rect{X: -0.5, Y: 1.2, Width: 2, Height: 0.6}.Enclosing()
	want := image.Rect(-1, 1, 2, 2)
	if got != want {
		t.Errorf("Enclosing = %v, want %v", got, want)
	}
	if !(Rect{Width: 0, Height: 5}).Enclosing().Empty() {
		t.Error("empty rect should enclose nothing")
	}
}

func TestRectInflateAndScale(t *testing.T) {
	r := Rect{10, 20, 30, 40}
	if got := r.Inflate(5, 1); got != (Rect{5, 19, 40, 42}) {
		t.Errorf("Inflate = %+v", got)
	}
	if got := r.Scale(0.5); got != (Rect{5, 10, 15, 20}) {
		t.Errorf("Scale = %+v", got)
	}
}

func TestExposedEdges(t *testing.T) {
	total := Rect{Width: 1000, Height: 700}
	tests := []struct {
		name string
		tile Rect
		want Edges
	}{
		{"top-left", Rect{0, 0, 512, 512}, EdgeLeft | EdgeTop},
		{"top-right", Rect{512, 0, 512, 512}, EdgeTop | EdgeRight},
		{"bottom-left", Rect{0, 512, 512, 512}, EdgeLeft | EdgeBottom},
		{"bottom-right", Rect{512, 512, 512, 512}, EdgeRight | EdgeBottom},
		{"interior", Rect{256, 256, 256, 256}, EdgesNone},
		{"whole", Rect{0, 0, 1024, 1024}, EdgesAll},
	}
	for _, tt := range tests {
		if got := exposedEdges(total, tt.tile); got != tt.want {
			t.Errorf("%s: edges = %04b, want %04b", tt.name, got, tt.want)
		}
	}
}

func TestColorToRGBAPremultiplies(t *testing.T) {
	got := Color{R: 1, G: 0.5, B: 0, A: 0.5}.toRGBA()
	want := color.RGBA{R: 127, G: 63, B: 0, A: 127}
	if got != want {
		t.Errorf("toRGBA = %v, want %v", got, want)
	}
	if got := (Color{R: 2, G: -1, B: 1, A: 1}).toRGBA(); got != (color.RGBA{255, 0, 255, 255}) {
		t.Errorf("out of range components not clamped: %v", got)
	}
}

func TestImageKnownOpaque(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if imageKnownOpaque(img) {
		t.Error("transparent RGBA reported opaque")
	}
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	if !imageKnownOpaque(img) {
		t.Error("opaque RGBA not detected")
	}
	// Embedding the interface hides RGBA's Opaque method.
	hidden := struct{ image.Image }{img}
	if imageKnownOpaque(hidden) {
		t.Error("image without Opaque method must be assumed to carry alpha")
	}
}

func TestPackedRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}

	var scratch *image.RGBA
	full := packedRGBA(src, image.Pt(4, 2), image.Pt(0, 1), &scratch)
	if scratch != nil {
		t.Error("full-width rows should not need a copy")
	}
	if full.Pix[0] != src.Pix[src.PixOffset(0, 1)] {
		t.Error("full-width sub-image starts at the wrong row")
	}

	part := packedRGBA(src, image.Pt(2, 2), image.Pt(1, 1), &scratch)
	if scratch == nil || part != scratch {
		t.Fatal("partial rows should be copied into scratch")
	}
	if part.Stride != 8 {
		t.Errorf("stride = %d, want 8", part.Stride)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if part.RGBAAt(x, y) != src.RGBAAt(x+1, y+1) {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, part.RGBAAt(x, y), src.RGBAAt(x+1, y+1))
			}
		}
	}
}
