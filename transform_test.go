package texmap

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertTransform(t *testing.T, name string, got, want Transform) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertRect(t *testing.T, name string, got, want Rect) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 ||
		math.Abs(got.Width-want.Width) > 1e-6 || math.Abs(got.Height-want.Height) > 1e-6 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestMultiplyAppliesRightOperandFirst(t *testing.T) {
	m := Translation(10, 0).Multiply(Scaling(2, 2))
	x, y := m.Apply(1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 2)

	m = Scaling(2, 2).Multiply(Translation(10, 0))
	x, y = m.Apply(1, 1)
	assertNear(t, "x", x, 22)
	assertNear(t, "y", y, 2)
}

func TestMultiplyIdentity(t *testing.T) {
	m := Transform{2, 0.5, -0.3, 4, 7, -9}
	assertTransform(t, "left", Identity.Multiply(m), m)
	assertTransform(t, "right", m.Multiply(Identity), m)
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Transform
	}{
		{"identity", Identity},
		{"translate", Translation(30, -12)},
		{"scale", Scaling(2, 0.25)},
		{"rotate", Rotation(0.7)},
		{"combined", Translation(5, 6).Multiply(Rotation(1.1)).Multiply(Scaling(3, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("expected invertible")
			}
			assertTransform(t, "m*inv", tt.m.Multiply(inv), Identity)
			assertTransform(t, "inv*m", inv.Multiply(tt.m), Identity)
		})
	}
}

func TestInverseSingular(t *testing.T) {
	for _, m := range []Transform{
		Scaling(0, 1),
		Scaling(1, 0),
		{1, 2, 2, 4, 0, 0},
		{math.NaN(), 0, 0, 1, 0, 0},
	} {
		if m.IsInvertible() {
			t.Errorf("%v reported invertible", m)
		}
		inv, ok := m.Inverse()
		if ok {
			t.Errorf("%v: Inverse ok = true", m)
		}
		assertTransform(t, "fallback", inv, Identity)
	}
}

func TestRectToRect(t *testing.T) {
	from := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	to := Rect{X: 0, Y: 0, Width: 200, Height: 25}
	m := RectToRect(from, to)

	x, y := m.Apply(10, 20)
	assertNear(t, "origin.x", x, 0)
	assertNear(t, "origin.y", y, 0)
	x, y = m.Apply(110, 70)
	assertNear(t, "corner.x", x, 200)
	assertNear(t, "corner.y", y, 25)
}

func TestRectToRectDegenerate(t *testing.T) {
	m := RectToRect(Rect{}, Rect{X: 5, Y: 6, Width: 10, Height: 10})
	if m.IsInvertible() {
		t.Error("mapping from an empty rect must not be invertible")
	}
	x, y := m.Apply(100, 100)
	assertNear(t, "x", x, 5)
	assertNear(t, "y", y, 6)
}

func TestMapRectRectilinear(t *testing.T) {
	m := Translation(10, 10).Multiply(Scaling(-2, 3))
	got := m.MapRect(Rect{X: 1, Y: 1, Width: 4, Height: 2})
	assertRect(t, "mapped", got, Rect{X: 0, Y: 13, Width: 8, Height: 6})
}

func TestMapRectRotated(t *testing.T) {
	got := Rotation(math.Pi / 4).MapRect(Rect{Width: 10, Height: 10})
	d := 10 * math.Sqrt2
	assertRect(t, "bbox", got, Rect{X: -d / 2, Y: 0, Width: d, Height: d})
}

func TestMapQuadOrder(t *testing.T) {
	q := Translation(1, 2).MapQuad(Rect{Width: 3, Height: 4})
	want := [4]Vec2{{1, 2}, {4, 2}, {4, 6}, {1, 6}}
	if q != want {
		t.Errorf("quad = %v, want %v", q, want)
	}
}

func TestIsRectilinear(t *testing.T) {
	tests := []struct {
		name string
		m    Transform
		want bool
	}{
		{"identity", Identity, true},
		{"scale", Scaling(2, 3), true},
		{"rot90", Transform{0, 1, -1, 0, 0, 0}, true},
		{"rot30", Rotation(math.Pi / 6), false},
		{"skew", Transform{1, 0, 0.5, 1, 0, 0}, false},
	}
	for _, tt := range tests {
		if got := tt.m.IsRectilinear(); got != tt.want {
			t.Errorf("%s: IsRectilinear = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	m := Transform{1.5, 0.2, -0.4, 0.8, 12, -3}
	assertTransform(t, "round trip", transformFromMatrix(m.matrix()), m)

	g := m.matrix()
	x, y := m.Apply(3, 7)
	assertNear(t, "gg.x", g.A*3+g.B*7+g.C, x)
	assertNear(t, "gg.y", g.D*3+g.E*7+g.F, y)
}

func TestGeoMMatchesApply(t *testing.T) {
	m := Translation(4, 5).Multiply(Rotation(0.3)).Multiply(Scaling(2, 1))
	g := m.geoM()
	gx, gy := g.Apply(11, -6)
	x, y := m.Apply(11, -6)
	assertNear(t, "x", gx, x)
	assertNear(t, "y", gy, y)
}
