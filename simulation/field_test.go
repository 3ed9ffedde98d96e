package simulation

import (
	"math"
	"testing"

	"chladni/core"
)

func baseParams() core.SimulationParams {
	p := core.DefaultParams()
	p.GridSize = 64
	p.ModeM, p.ModeN = 1, 1
	p.SecondaryM, p.SecondaryN = 2, 2
	p.Mix = 0
	p.Damping = 0
	return p
}

// Fundamental rectangular mode: a single positive lobe peaking at the
// center, vanishing at the corners.
func TestRectangularFundamental(t *testing.T) {
	res := Simulate(baseParams(), 0)

	if len(res.Field) != 64 || len(res.Field[0]) != 64 {
		t.Fatalf("field is %dx%d, want 64x64", len(res.Field), len(res.Field[0]))
	}
	if res.Normalized[32][32] < 0.98 {
		t.Errorf("center of fundamental mode = %f, want near 1", res.Normalized[32][32])
	}
	if res.Normalized[0][0] > 1e-9 || res.Normalized[63][63] > 1e-9 {
		t.Errorf("corners of fundamental mode not near zero: %g, %g",
			res.Normalized[0][0], res.Normalized[63][63])
	}
	for i, row := range res.Field {
		for j, v := range row {
			if v < -1e-12 {
				t.Fatalf("fundamental mode negative at [%d][%d]: %g", i, j, v)
			}
		}
	}
}

func TestSimulateDeterminism(t *testing.T) {
	p := baseParams()
	p.Shape = core.ShapeCircular
	p.ModeM, p.ModeN = 2, 3
	p.Mix = 0.4
	p.Damping = 0.5

	a := Simulate(p, 1.234)
	b := Simulate(p, 1.234)
	for i := range a.Field {
		for j := range a.Field[i] {
			if a.Field[i][j] != b.Field[i][j] {
				t.Fatalf("field differs at [%d][%d]: %v vs %v", i, j, a.Field[i][j], b.Field[i][j])
			}
			if a.Normalized[i][j] != b.Normalized[i][j] {
				t.Fatalf("normalized differs at [%d][%d]", i, j)
			}
		}
	}
}

func TestNormalizationPeak(t *testing.T) {
	for _, shape := range []core.PlateShape{
		core.ShapeRectangular, core.ShapeCircular, core.ShapeHexagonal, core.ShapeHeptagonal,
	} {
		p := baseParams()
		p.Shape = shape
		p.ModeM, p.ModeN = 3, 2
		res := Simulate(p, 0.7)

		peak := 0.0
		for _, row := range res.Normalized {
			for _, v := range row {
				if v < 0 || v > 1 {
					t.Fatalf("%v normalized value %f outside [0,1]", shape, v)
				}
				if v > peak {
					peak = v
				}
			}
		}
		if math.Abs(peak-1.0) > 1e-12 {
			t.Errorf("%v normalized peak = %v, want 1.0", shape, peak)
		}
	}
}

func TestNormalizeZeroField(t *testing.T) {
	zero := core.NewGrid(16)
	norm := Normalize(zero)
	for _, row := range norm {
		for _, v := range row {
			if v != 0 {
				t.Fatalf("zero field normalized to %v, want 0", v)
			}
		}
	}
}

// An angular order of zero makes the circular field purely radial, so it
// must be exactly mirror symmetric on the symmetric grid.
func TestCircularRadialSymmetry(t *testing.T) {
	p := baseParams()
	p.Shape = core.ShapeCircular
	p.ModeM, p.ModeN = 0, 3

	res := Simulate(p, 0)
	size := p.GridSize
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if math.Abs(res.Field[i][j]-res.Field[i][size-1-j]) > 1e-12 {
				t.Fatalf("field not mirror symmetric at [%d][%d]", i, j)
			}
			if math.Abs(res.Field[i][j]-res.Field[size-1-i][j]) > 1e-12 {
				t.Fatalf("field not flip symmetric at [%d][%d]", i, j)
			}
		}
	}
}

// Sanitization must keep the angular order of a circular plate at zero:
// J_0 with cos(0·θ) is the radial pattern, while a bumped-up J_1 with
// cos(θ) flips sign across the plate center.
func TestCircularZeroOrderSurvivesSanitize(t *testing.T) {
	p := baseParams()
	p.Shape = core.ShapeCircular
	p.ModeM, p.ModeN = 0, 3

	res := Simulate(p, 0)
	if res.Params.ModeM != 0 {
		t.Fatalf("angular order 0 sanitized to %d", res.Params.ModeM)
	}
	size := p.GridSize
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			// Diametrically opposite points sit at equal radius, so a
			// radial field matches there; an angular factor would flip
			// the sign instead.
			opposite := res.Field[size-1-i][size-1-j]
			if math.Abs(res.Field[i][j]-opposite) > 1e-12 {
				t.Fatalf("point symmetry broken at [%d][%d]: %g vs %g",
					i, j, res.Field[i][j], opposite)
			}
		}
	}
}

// The separable sine shapes floor order zero to the fundamental instead of
// synthesizing an identically null field.
func TestRectangularZeroOrderFloorsToFundamental(t *testing.T) {
	zero := baseParams()
	zero.ModeM, zero.ModeN = 0, 0
	one := baseParams()
	one.ModeM, one.ModeN = 1, 1

	a := Simulate(zero, 0)
	b := Simulate(one, 0)
	for i := range a.Field {
		for j := range a.Field[i] {
			if a.Field[i][j] != b.Field[i][j] {
				t.Fatalf("order-0 field differs from the fundamental at [%d][%d]", i, j)
			}
		}
	}
}

func TestCircularFieldZeroOutsideDisk(t *testing.T) {
	p := baseParams()
	p.Shape = core.ShapeCircular
	res := Simulate(p, 0.3)

	if res.Field[0][0] != 0 || res.Field[0][63] != 0 {
		t.Error("circular field nonzero outside the unit disk")
	}
}

func TestGridSizeClamped(t *testing.T) {
	p := baseParams()
	p.GridSize = 4
	res := Simulate(p, 0)
	if len(res.Field) != core.MinGridSize {
		t.Errorf("grid size %d, want clamp to %d", len(res.Field), core.MinGridSize)
	}
}

func TestOptionalOutputs(t *testing.T) {
	p := baseParams()
	res := Simulate(p, 0)
	if res.HeightMap != nil || res.BoundaryMask != nil {
		t.Error("optional outputs populated without being requested")
	}

	p.IncludeHeightMap = true
	p.IncludeBoundaryMask = true
	res = Simulate(p, 0)
	if res.HeightMap == nil || res.BoundaryMask == nil {
		t.Fatal("requested optional outputs missing")
	}
	if &res.HeightMap[0][0] != &res.Field[0][0] {
		t.Error("height map should alias the raw field")
	}
}

func TestResolveFrequencyModes(t *testing.T) {
	cases := []struct {
		freq   float64
		factor float64
	}{
		{20, 1.0}, {440, 1.0}, {2000, 1.0},
		{5, 1.0},     // below band, clamps to 20 Hz
		{50000, 1.0}, // above band, clamps to 2000 Hz
		{440, 0.3}, {440, 2.5},
	}
	for _, c := range cases {
		p := baseParams()
		p.UseFrequencyMode = true
		p.FrequencyHz = c.freq
		p.Material.WaveSpeedFactor = c.factor
		ResolveFrequencyModes(&p)

		for _, mode := range []int{p.ModeM, p.ModeN, p.SecondaryM, p.SecondaryN} {
			if mode < 1 || mode > MaxModeNumber {
				t.Errorf("freq %v factor %v: mode %d outside [1,%d]", c.freq, c.factor, mode, MaxModeNumber)
			}
		}
		if p.SecondaryM < p.ModeM {
			t.Errorf("freq %v: secondary mode %d below primary %d", c.freq, p.SecondaryM, p.ModeM)
		}
	}

	// Band edges pin the mapping.
	low := baseParams()
	low.UseFrequencyMode = true
	low.FrequencyHz = 20
	ResolveFrequencyModes(&low)
	if low.ModeM != 1 || low.ModeN != 2 {
		t.Errorf("20 Hz maps to (%d,%d), want (1,2)", low.ModeM, low.ModeN)
	}

	high := baseParams()
	high.UseFrequencyMode = true
	high.FrequencyHz = 2000
	ResolveFrequencyModes(&high)
	if high.ModeM != 12 || high.ModeN != 12 {
		t.Errorf("2000 Hz maps to (%d,%d), want (12,12)", high.ModeM, high.ModeN)
	}
}

// Frequency mode substitution happens before shape dispatch, so two params
// differing only in explicit modes give identical fields under it.
func TestFrequencyModeOverridesExplicitModes(t *testing.T) {
	a := baseParams()
	a.UseFrequencyMode = true
	a.FrequencyHz = 440
	a.ModeM, a.ModeN = 1, 1

	b := a
	b.ModeM, b.ModeN = 7, 9

	ra := Simulate(a, 0.5)
	rb := Simulate(b, 0.5)
	for i := range ra.Field {
		for j := range ra.Field[i] {
			if ra.Field[i][j] != rb.Field[i][j] {
				t.Fatalf("frequency mode did not override explicit modes at [%d][%d]", i, j)
			}
		}
	}
}

func TestCustomPolygonMasksField(t *testing.T) {
	p := baseParams()
	p.Shape = core.ShapeCustomPolygon
	p.PolygonVertices = []core.Vec2{
		{X: 0.3, Y: 0.3}, {X: 0.7, Y: 0.3}, {X: 0.7, Y: 0.7}, {X: 0.3, Y: 0.7},
	}
	res := Simulate(p, 0)

	if res.Field[32][32] == 0 {
		t.Error("custom polygon field zero inside the outline")
	}
	if res.Field[2][2] != 0 {
		t.Error("custom polygon field nonzero outside the outline")
	}
}

func TestDampingAttenuatesRim(t *testing.T) {
	p := baseParams()
	p.ModeM, p.ModeN = 5, 5

	flat := Simulate(p, 0)
	p.Damping = 3.0
	damped := Simulate(p, 0)

	// Compare a point away from the center; damping must strictly shrink it.
	if math.Abs(damped.Field[6][6]) >= math.Abs(flat.Field[6][6]) {
		t.Errorf("damping did not attenuate off-center amplitude: %g vs %g",
			damped.Field[6][6], flat.Field[6][6])
	}
	// And leaves the exact center untouched.
	if math.Abs(math.Abs(damped.Field[32][32])-math.Abs(flat.Field[32][32])) > 1e-2 {
		t.Errorf("damping moved the center amplitude too much")
	}
}
