package batch

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/plot"
	"github.com/gogpu/plot/layout"
)

const epsilon = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

// identityLayout places every slot over the full device rect, so
// finalized positions equal the pure data-bounds mapping.
type identityLayout struct{}

func (identityLayout) Place(slot, total int) (plot.Transform, error) {
	if slot < 0 || slot >= total {
		return plot.Transform{}, plot.ErrInvalidSlot
	}
	return plot.Identity(), nil
}

func TestFinalizeEmpty(t *testing.T) {
	b := NewBuilder()
	g, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize on empty builder error: %v", err)
	}
	if !g.Empty() {
		t.Errorf("empty finalize produced %d vertices", g.VertexCount())
	}
	if g.VertexCount() != 0 {
		t.Errorf("VertexCount() = %d, want 0", g.VertexCount())
	}
}

func TestFinalizeMapsThroughBounds(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(0, 0, 10, 20)
	if err := b.Add([]float32{0, 0, 10, 20, 5, 10}, plot.RGB(1, 0, 0), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	g, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	want := []float32{-1, -1, 1, 1, 0, 0}
	if len(g.Positions) != len(want) {
		t.Fatalf("got %d position floats, want %d", len(g.Positions), len(want))
	}
	for i := range want {
		if !near(g.Positions[i], want[i]) {
			t.Errorf("Positions[%d] = %g, want %g", i, g.Positions[i], want[i])
		}
	}
	if len(g.Colors) != 3*4 {
		t.Fatalf("got %d color floats, want 12", len(g.Colors))
	}
	for v := 0; v < 3; v++ {
		r, gr, bl, a := g.Colors[v*4], g.Colors[v*4+1], g.Colors[v*4+2], g.Colors[v*4+3]
		if r != 1 || gr != 0 || bl != 0 || a != 1 {
			t.Errorf("vertex %d color = (%g, %g, %g, %g), want (1, 0, 0, 1)", v, r, gr, bl, a)
		}
	}
}

func TestFinalizePreservesInsertionOrder(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(-1, -1, 1, 1) // identity data mapping
	entries := []struct {
		xy    []float32
		color plot.RGBA
	}{
		{[]float32{0.1, 0.1}, plot.RGB(1, 0, 0)},
		{[]float32{0.2, 0.2, 0.3, 0.3}, plot.RGB(0, 1, 0)},
		{[]float32{0.4, 0.4}, plot.RGB(0, 0, 1)},
	}
	for _, e := range entries {
		if err := b.Add(e.xy, e.color, bounds, 0); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	g, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// A's vertices, then B's, then C's.
	wantPos := []float32{0.1, 0.1, 0.2, 0.2, 0.3, 0.3, 0.4, 0.4}
	for i := range wantPos {
		if !near(g.Positions[i], wantPos[i]) {
			t.Errorf("Positions[%d] = %g, want %g", i, g.Positions[i], wantPos[i])
		}
	}
	wantR := []float32{1, 0, 0, 0}
	wantG := []float32{0, 1, 1, 0}
	wantB := []float32{0, 0, 0, 1}
	for v := 0; v < 4; v++ {
		if g.Colors[v*4] != wantR[v] || g.Colors[v*4+1] != wantG[v] || g.Colors[v*4+2] != wantB[v] {
			t.Errorf("vertex %d color = (%g, %g, %g), want (%g, %g, %g)",
				v, g.Colors[v*4], g.Colors[v*4+1], g.Colors[v*4+2], wantR[v], wantG[v], wantB[v])
		}
	}
}

func TestAddDegenerateBoundsKeepsState(t *testing.T) {
	b := NewBuilder()
	good := plot.NewRect(0, 0, 1, 1)
	if err := b.Add([]float32{0.5, 0.5}, plot.RGB(1, 1, 1), good, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	first, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	firstPos := append([]float32(nil), first.Positions...)

	// xMin == xMax: fail fast, accumulator untouched.
	bad := plot.NewRect(3, 0, 3, 1)
	if err := b.Add([]float32{0, 0}, plot.RGB(1, 1, 1), bad, 0); !errors.Is(err, plot.ErrInvalidBounds) {
		t.Fatalf("Add with degenerate bounds error = %v, want ErrInvalidBounds", err)
	}
	if b.Len() != 0 {
		t.Errorf("failed Add appended an entry: Len() = %d", b.Len())
	}
	// The previously finalized output is unaffected.
	for i := range firstPos {
		if first.Positions[i] != firstPos[i] {
			t.Errorf("prior finalized position %d changed after failed Add", i)
		}
	}
}

func TestAddValidation(t *testing.T) {
	b := NewBuilder()
	good := plot.NewRect(0, 0, 1, 1)
	if err := b.Add([]float32{1, 2, 3}, plot.RGB(0, 0, 0), good, 0); !errors.Is(err, plot.ErrInvalidBounds) {
		t.Errorf("odd-length Add error = %v, want ErrInvalidBounds", err)
	}
	if err := b.Add([]float32{1, 2}, plot.RGB(0, 0, 0), good, -1); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Errorf("negative slot Add error = %v, want ErrInvalidSlot", err)
	}
	if b.Len() != 0 {
		t.Errorf("failed adds appended entries: Len() = %d", b.Len())
	}
}

func TestFinalizeLayoutFailureRetainsEntries(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(0, 0, 1, 1)
	if err := b.Add([]float32{0, 0}, plot.RGB(1, 1, 1), bounds, 7); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := b.Finalize(identityLayout{}, 2); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Fatalf("Finalize error = %v, want ErrInvalidSlot", err)
	}
	if b.Len() != 1 {
		t.Errorf("entries dropped on failed finalize: Len() = %d, want 1", b.Len())
	}
}

func TestFinalizeAppliesPlacement(t *testing.T) {
	b := NewBuilder()
	s := layout.NewStacked(2)
	bounds := plot.NewRect(0, 0, 1, 1)

	// Center of each subplot's data window.
	if err := b.Add([]float32{0.5, 0.5}, plot.RGB(1, 1, 1), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add([]float32{0.5, 0.5}, plot.RGB(1, 1, 1), bounds, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	g, err := b.Finalize(s, 2)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	// Slot 0 occupies the top half, slot 1 the bottom half.
	if !near(g.Positions[0], 0) || !near(g.Positions[1], 0.5) {
		t.Errorf("slot 0 center = (%g, %g), want (0, 0.5)", g.Positions[0], g.Positions[1])
	}
	if !near(g.Positions[2], 0) || !near(g.Positions[3], -0.5) {
		t.Errorf("slot 1 center = (%g, %g), want (0, -0.5)", g.Positions[2], g.Positions[3])
	}
}

func TestFinalizeClearsEntries(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(0, 0, 1, 1)
	if err := b.Add([]float32{0, 0}, plot.RGB(1, 1, 1), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := b.Finalize(identityLayout{}, 1); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() after Finalize = %d, want 0", b.Len())
	}
	g, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if !g.Empty() {
		t.Errorf("second Finalize produced %d vertices, want 0", g.VertexCount())
	}
}

func TestCoordinatesReferencedNotCopied(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(-1, -1, 1, 1)
	xy := []float32{0, 0}
	if err := b.Add(xy, plot.RGB(1, 1, 1), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Mutation before Finalize is visible in the output: entries hold
	// references until the concatenation pass.
	xy[0], xy[1] = 0.25, -0.25
	g, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !near(g.Positions[0], 0.25) || !near(g.Positions[1], -0.25) {
		t.Errorf("positions = (%g, %g), want referenced values (0.25, -0.25)",
			g.Positions[0], g.Positions[1])
	}
}

func TestFailedFinalizeKeepsPriorGeometry(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(-1, -1, 1, 1) // identity data mapping

	if err := b.Add([]float32{0.5, 0.5, 0.25, 0.25}, plot.RGB(1, 0, 0), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	first, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	wantPos := append([]float32(nil), first.Positions...)
	wantCol := append([]float32(nil), first.Colors...)

	// A same-size pass that fails on placement must not write into the
	// buffers the prior Geometry still references: the canvas redraws
	// that geometry on resize.
	if err := b.Add([]float32{-0.75, -0.75, 0.25, 0.25}, plot.RGB(0, 1, 0), bounds, 7); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := b.Finalize(identityLayout{}, 2); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Fatalf("Finalize error = %v, want ErrInvalidSlot", err)
	}
	for i := range wantPos {
		if first.Positions[i] != wantPos[i] {
			t.Errorf("Positions[%d] = %g after failed finalize, want %g",
				i, first.Positions[i], wantPos[i])
		}
	}
	for i := range wantCol {
		if first.Colors[i] != wantCol[i] {
			t.Errorf("Colors[%d] = %g after failed finalize, want %g",
				i, first.Colors[i], wantCol[i])
		}
	}
}

func TestRefinalizeKeepsPriorGeometry(t *testing.T) {
	b := NewBuilder()
	bounds := plot.NewRect(-1, -1, 1, 1)

	if err := b.Add([]float32{0.5, 0.5}, plot.RGB(1, 0, 0), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	first, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// The next successful pass writes the other output buffer, so the
	// frame the canvas last presented stays readable.
	if err := b.Add([]float32{-0.25, -0.25}, plot.RGB(0, 1, 0), bounds, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := b.Finalize(identityLayout{}, 1)
	if err != nil {
		t.Fatalf("second Finalize: %v", err)
	}

	if !near(first.Positions[0], 0.5) || !near(first.Positions[1], 0.5) {
		t.Errorf("prior geometry = (%g, %g), want (0.5, 0.5)",
			first.Positions[0], first.Positions[1])
	}
	if !near(second.Positions[0], -0.25) || !near(second.Positions[1], -0.25) {
		t.Errorf("new geometry = (%g, %g), want (-0.25, -0.25)",
			second.Positions[0], second.Positions[1])
	}
}
