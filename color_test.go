package plot

import (
	"image/color"
	"testing"
)

func TestRGB(t *testing.T) {
	c := RGB(0.5, 0.25, 1)
	if c.R != 0.5 || c.G != 0.25 || c.B != 1 || c.A != 1 {
		t.Errorf("RGB(0.5, 0.25, 1) = %+v", c)
	}
}

func TestColorRoundTrip(t *testing.T) {
	c := RGBA{R: 0.2, G: 0.4, B: 0.6, A: 1}
	got := FromColor(c.Color())
	const tol = 1.0 / 255
	for name, pair := range map[string][2]float64{
		"R": {got.R, c.R}, "G": {got.G, c.G}, "B": {got.B, c.B}, "A": {got.A, c.A},
	} {
		if d := pair[0] - pair[1]; d > tol || d < -tol {
			t.Errorf("%s = %g, want %g within 1/255", name, pair[0], pair[1])
		}
	}
}

func TestColorClamps(t *testing.T) {
	c := RGBA{R: 2, G: -1, B: 0.5, A: 1}
	nrgba := c.Color().(color.NRGBA)
	if nrgba.R != 255 {
		t.Errorf("R = %d, want 255", nrgba.R)
	}
	if nrgba.G != 0 {
		t.Errorf("G = %d, want 0", nrgba.G)
	}
}

func TestPremultiply(t *testing.T) {
	c := RGBA{R: 1, G: 0.5, B: 0, A: 0.5}
	p := c.Premultiply()
	if p.R != 0.5 || p.G != 0.25 || p.B != 0 || p.A != 0.5 {
		t.Errorf("Premultiply() = %+v", p)
	}
}

func TestLerp(t *testing.T) {
	a := RGB(0, 0, 0)
	b := RGB(1, 1, 1)
	mid := a.Lerp(b, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 {
		t.Errorf("Lerp midpoint = %+v", mid)
	}
}

func TestFloat32s(t *testing.T) {
	got := RGBA{R: 0.25, G: 0.5, B: 0.75, A: 1}.Float32s()
	want := [4]float32{0.25, 0.5, 0.75, 1}
	if got != want {
		t.Errorf("Float32s() = %v, want %v", got, want)
	}
}

func TestClusterColorCycles(t *testing.T) {
	n := PaletteSize()
	if n < 2 {
		t.Fatalf("PaletteSize() = %d, want at least 2", n)
	}
	if ClusterColor(0) == ClusterColor(1) {
		t.Error("adjacent palette entries are identical")
	}
	if ClusterColor(0) != ClusterColor(n) {
		t.Errorf("ClusterColor(%d) should wrap to ClusterColor(0)", n)
	}
	if ClusterColor(-1) != ClusterColor(n-1) {
		t.Error("negative ordinals should wrap from the end")
	}
	for i := 0; i < n; i++ {
		if a := ClusterColor(i).A; a != 1 {
			t.Errorf("palette color %d alpha = %g, want 1", i, a)
		}
	}
}
