package simulation

import (
	"math"
	"testing"

	"chladni/core"
)

func TestRectangularMaskInset(t *testing.T) {
	mask := GenerateMask(core.ShapeRectangular, nil, 32)

	if mask[0][0] || mask[0][31] || mask[31][0] || mask[31][31] {
		t.Error("rectangular mask admits border corners")
	}
	if !mask[16][16] {
		t.Error("rectangular mask rejects the plate center")
	}
	// The inset is a fixed visual-tuning constant, asserted literally.
	if RectInset != 0.05 {
		t.Errorf("rectangular inset = %v, want 0.05", RectInset)
	}
}

func TestCircularMaskRadius(t *testing.T) {
	if CircleRadius != 0.48 {
		t.Errorf("circle radius = %v, want 0.48 (intentionally shy of 0.5)", CircleRadius)
	}

	size := 100
	mask := GenerateMask(core.ShapeCircular, nil, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			x := float64(j)/float64(size-1) - 0.5
			y := float64(i)/float64(size-1) - 0.5
			want := math.Hypot(x, y) <= CircleRadius
			if mask[i][j] != want {
				t.Fatalf("circular mask[%d][%d] = %v, want %v", i, j, mask[i][j], want)
			}
		}
	}
}

func TestRegularPolygonMasks(t *testing.T) {
	if PolygonRadius != 0.90 {
		t.Errorf("polygon radius = %v, want 0.90", PolygonRadius)
	}

	for _, shape := range []core.PlateShape{core.ShapeHexagonal, core.ShapeHeptagonal} {
		mask := GenerateMask(shape, nil, 64)
		if !mask[32][32] {
			t.Errorf("%v mask rejects the center", shape)
		}
		if mask[0][0] || mask[0][63] || mask[63][0] || mask[63][63] {
			t.Errorf("%v mask admits a grid corner", shape)
		}

		inside := 0
		for _, row := range mask {
			for _, v := range row {
				if v {
					inside++
				}
			}
		}
		// A regular polygon of circumradius 0.9 covers a substantial but
		// proper fraction of the [-1,1]² frame.
		frac := float64(inside) / float64(64*64)
		if frac < 0.3 || frac > 0.8 {
			t.Errorf("%v mask interior fraction = %.3f, out of plausible range", shape, frac)
		}
	}
}

// A custom square outline must reproduce a directly computed square
// indicator with no off-by-one inversion.
func TestCustomSquareMatchesIndicator(t *testing.T) {
	square := []core.Vec2{
		{X: 0.25, Y: 0.25},
		{X: 0.75, Y: 0.25},
		{X: 0.75, Y: 0.75},
		{X: 0.25, Y: 0.75},
	}
	size := 32
	mask := GenerateMask(core.ShapeCustomPolygon, square, size)

	for i := 0; i < size; i++ {
		y := float64(i) / float64(size-1)
		for j := 0; j < size; j++ {
			x := float64(j) / float64(size-1)
			// Ray casting counts boundary points on the far edges as
			// outside; stay off the exact boundary for the comparison.
			if math.Abs(x-0.25) < 1e-9 || math.Abs(x-0.75) < 1e-9 ||
				math.Abs(y-0.25) < 1e-9 || math.Abs(y-0.75) < 1e-9 {
				continue
			}
			want := x > 0.25 && x < 0.75 && y > 0.25 && y < 0.75
			if mask[i][j] != want {
				t.Fatalf("square mask[%d][%d] = %v, want %v (x=%.3f y=%.3f)", i, j, mask[i][j], want, x, y)
			}
		}
	}
}

func TestDegeneratePolygonFallsBack(t *testing.T) {
	two := []core.Vec2{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.8}}
	got := GenerateMask(core.ShapeCustomPolygon, two, 32)
	want := GenerateMask(core.ShapeRectangular, nil, 32)
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("degenerate polygon mask differs from rectangular fallback at [%d][%d]", i, j)
			}
		}
	}
}

func TestMaskGridClamp(t *testing.T) {
	mask := GenerateMask(core.ShapeCircular, nil, 3)
	if len(mask) != core.MinGridSize {
		t.Errorf("undersized grid produced %d rows, want clamp to %d", len(mask), core.MinGridSize)
	}
}
