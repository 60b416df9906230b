package plot

import (
	"errors"
	"math"
	"testing"
)

func TestRectValidate(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name    string
		r       Rect
		wantErr bool
	}{
		{"valid", NewRect(0, 0, 1, 1), false},
		{"valid negative", NewRect(-10, -5, -2, -1), false},
		{"zero width", NewRect(1, 0, 1, 1), true},
		{"zero height", NewRect(0, 1, 1, 1), true},
		{"inverted", NewRect(2, 2, 1, 1), true},
		{"nan", NewRect(nan, 0, 1, 1), true},
		{"zero rect", Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.r, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("Validate(%v) error %v does not wrap ErrInvalidBounds", tt.r, err)
			}
		})
	}
}

func TestRectAccessors(t *testing.T) {
	r := NewRect(-1, 0, 3, 2)
	if got := r.Width(); got != 4 {
		t.Errorf("Width() = %g, want 4", got)
	}
	if got := r.Height(); got != 2 {
		t.Errorf("Height() = %g, want 2", got)
	}
	cx, cy := r.Center()
	if cx != 1 || cy != 1 {
		t.Errorf("Center() = (%g, %g), want (1, 1)", cx, cy)
	}
	if !r.Contains(0, 1) {
		t.Error("Contains(0, 1) = false, want true")
	}
	if r.Contains(4, 1) {
		t.Error("Contains(4, 1) = true, want false")
	}
}

func TestNDC(t *testing.T) {
	n := NDC()
	if n.XMin != -1 || n.YMin != -1 || n.XMax != 1 || n.YMax != 1 {
		t.Errorf("NDC() = %v", n)
	}
}
