package texmap

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-scroll", "after-scroll"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToNRGBAUnpremultiplies(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 11))
	src.SetRGBA(10, 10, color.RGBA{64, 0, 0, 128})
	src.SetRGBA(11, 10, color.RGBA{0, 255, 0, 255})

	out := toNRGBA(src)
	if out.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v, want origin-based 2x1", out.Rect)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{127, 0, 0, 128}) {
		t.Errorf("half-alpha pixel = %v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("opaque pixel = %v", got)
	}
}

func TestToNRGBAOtherModels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 128})
	if got := toNRGBA(src).NRGBAAt(0, 0); got != src.NRGBAAt(0, 0) {
		t.Errorf("NRGBA pixel = %v, want %v", got, src.NRGBAAt(0, 0))
	}
}

func TestSaveScreenshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 1, color.RGBA{255, 0, 0, 255})

	path, err := SaveScreenshot(dir, "tile grid", img)
	if err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path %q not in %q", path, dir)
	}
	if !strings.HasSuffix(path, "_tile_grid.png") {
		t.Errorf("path %q lacks sanitized label", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
	r, _, _, a := decoded.At(1, 1).RGBA()
	if r>>8 != 255 || a>>8 != 255 {
		t.Errorf("pixel = %v, want opaque red", decoded.At(1, 1))
	}
}

func TestSaveScreenshotBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveScreenshot(filepath.Join(file, "sub"), "x", image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error when dir is under a regular file")
	}
}
