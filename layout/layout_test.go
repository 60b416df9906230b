package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/plot"
)

const epsilon = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

// cellOf recovers the device rectangle a placement maps local NDC onto.
func cellOf(t *testing.T, l plot.Layout, slot, total int) plot.Rect {
	t.Helper()
	tr, err := l.Place(slot, total)
	if err != nil {
		t.Fatalf("Place(%d, %d) error: %v", slot, total, err)
	}
	return tr.ApplyRect(plot.NDC())
}

func rectNear(a, b plot.Rect) bool {
	return near(a.XMin, b.XMin) && near(a.YMin, b.YMin) &&
		near(a.XMax, b.XMax) && near(a.YMax, b.YMax)
}

func TestStackedTwoRows(t *testing.T) {
	s := NewStacked(2)
	// The canonical two-entity selection: slot 0 on top, slot 1 below.
	if got, want := cellOf(t, s, 0, 2), plot.NewRect(-1, 0, 1, 1); !rectNear(got, want) {
		t.Errorf("slot 0 cell = %v, want %v", got, want)
	}
	if got, want := cellOf(t, s, 1, 2), plot.NewRect(-1, -1, 1, 0); !rectNear(got, want) {
		t.Errorf("slot 1 cell = %v, want %v", got, want)
	}
}

func TestStackedCoversDeviceHeight(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		s := NewStacked(n)
		var cells []plot.Rect
		for slot := 0; slot < n; slot++ {
			cells = append(cells, cellOf(t, s, slot, n))
		}
		wantH := 2 / float32(n)
		for i, c := range cells {
			if !near(c.Height(), wantH) {
				t.Errorf("n=%d slot %d height = %g, want %g", n, i, c.Height(), wantH)
			}
			if !near(c.XMin, -1) || !near(c.XMax, 1) {
				t.Errorf("n=%d slot %d spans x [%g, %g], want [-1, 1]", n, i, c.XMin, c.XMax)
			}
			// Rows abut without overlap: each row's top edge is the
			// previous row's bottom edge.
			if i > 0 && !near(c.YMax, cells[i-1].YMin) {
				t.Errorf("n=%d slot %d top %g does not meet slot %d bottom %g",
					n, i, c.YMax, i-1, cells[i-1].YMin)
			}
		}
		if !near(cells[0].YMax, 1) {
			t.Errorf("n=%d first row top = %g, want 1", n, cells[0].YMax)
		}
		if !near(cells[n-1].YMin, -1) {
			t.Errorf("n=%d last row bottom = %g, want -1", n, cells[n-1].YMin)
		}
	}
}

func TestStackedSetCount(t *testing.T) {
	s := NewStacked(2)
	s.SetCount(4)
	if s.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", s.Count())
	}
	if got, want := cellOf(t, s, 0, 4), plot.NewRect(-1, 0.5, 1, 1); !rectNear(got, want) {
		t.Errorf("slot 0 of 4 = %v, want %v", got, want)
	}
}

func TestStackedInvalidSlot(t *testing.T) {
	s := NewStacked(3)
	for _, tc := range []struct{ slot, total int }{
		{3, 3}, {-1, 3}, {0, 0}, {5, 3}, {2, 2},
	} {
		if _, err := s.Place(tc.slot, tc.total); !errors.Is(err, plot.ErrInvalidSlot) {
			t.Errorf("Place(%d, %d) error = %v, want ErrInvalidSlot", tc.slot, tc.total, err)
		}
	}
	// Slot beyond the configured count fails even when total allows it.
	if _, err := s.Place(4, 6); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Errorf("Place(4, 6) with count 3 error = %v, want ErrInvalidSlot", err)
	}
}

func TestGridCells(t *testing.T) {
	g := NewGrid(2, 3)
	// Row-major, top-to-bottom: slot 0 top-left, slot 5 bottom-right.
	tests := []struct {
		slot int
		want plot.Rect
	}{
		{0, plot.NewRect(-1, 0, -1.0/3, 1)},
		{2, plot.NewRect(1.0/3, 0, 1, 1)},
		{3, plot.NewRect(-1, -1, -1.0/3, 0)},
		{5, plot.NewRect(1.0/3, -1, 1, 0)},
	}
	for _, tt := range tests {
		if got := cellOf(t, g, tt.slot, 6); !rectNear(got, tt.want) {
			t.Errorf("slot %d cell = %v, want %v", tt.slot, got, tt.want)
		}
	}
}

func TestGridCellSlot(t *testing.T) {
	g := NewGrid(2, 3)
	slot, err := g.CellSlot(1, 2)
	if err != nil {
		t.Fatalf("CellSlot(1, 2) error: %v", err)
	}
	if slot != 5 {
		t.Errorf("CellSlot(1, 2) = %d, want 5", slot)
	}
	if _, err := g.CellSlot(2, 0); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Errorf("CellSlot(2, 0) error = %v, want ErrInvalidSlot", err)
	}
	if _, err := g.CellSlot(0, 3); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Errorf("CellSlot(0, 3) error = %v, want ErrInvalidSlot", err)
	}
}

func TestGridCapacity(t *testing.T) {
	g := NewGrid(2, 2)
	if _, err := g.Place(4, 8); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Errorf("Place(4, 8) on 2x2 grid error = %v, want ErrInvalidSlot", err)
	}
}

func TestBoxedPlacement(t *testing.T) {
	b := NewBoxed()
	boxes := []plot.Rect{
		plot.NewRect(-1, -1, 0, 0),
		plot.NewRect(0, 0, 1, 1),
	}
	b.SetBoxes(boxes)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	for i, want := range boxes {
		if got := cellOf(t, b, i, 2); !rectNear(got, want) {
			t.Errorf("slot %d cell = %v, want %v", i, got, want)
		}
	}
}

func TestBoxedWithoutGeometry(t *testing.T) {
	b := NewBoxed()
	if _, err := b.Place(0, 1); !errors.Is(err, plot.ErrInvalidSlot) {
		t.Errorf("Place on empty Boxed error = %v, want ErrInvalidSlot", err)
	}
}

func TestBoxedCopiesGeometry(t *testing.T) {
	src := []plot.Rect{plot.NewRect(-1, -1, 1, 1)}
	b := NewBoxed()
	b.SetBoxes(src)
	src[0] = plot.NewRect(0, 0, 0.5, 0.5)
	if got := cellOf(t, b, 0, 1); !rectNear(got, plot.NewRect(-1, -1, 1, 1)) {
		t.Errorf("mutating caller geometry changed layout: %v", got)
	}
}

func TestBoxesFromPositions(t *testing.T) {
	// Two sites in a vertical column, as on a linear probe.
	centers := [][2]float32{{0, 0}, {0, 100}}
	boxes := BoxesFromPositions(centers, 10, 20)
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	// Normalized bounding box spans the full device rect.
	if !near(boxes[0].YMin, -1) {
		t.Errorf("bottom box YMin = %g, want -1", boxes[0].YMin)
	}
	if !near(boxes[1].YMax, 1) {
		t.Errorf("top box YMax = %g, want 1", boxes[1].YMax)
	}
	// Boxes keep identical sizes.
	if !near(boxes[0].Width(), boxes[1].Width()) || !near(boxes[0].Height(), boxes[1].Height()) {
		t.Errorf("box sizes differ: %v vs %v", boxes[0], boxes[1])
	}
}
