package simulation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"chladni/core"
)

// Frequency-driven mode selection range. Audible drive frequencies are
// clamped to this band before the logarithmic mode mapping.
const (
	MinFrequencyHz = 20.0
	MaxFrequencyHz = 2000.0
	MaxModeNumber  = 12
)

// HeptagonModeScale converts a mode number into the radial wavenumber of
// the heptagonal plate. The scaling is an empirical calibration, not a
// derived constant.
const HeptagonModeScale = 2.5

// Simulate synthesizes the standing-wave field for one animation phase.
// The result is deterministic in (params, phase); repeated calls with the
// same inputs produce identical matrices.
func Simulate(params core.SimulationParams, phase float64) *core.SimulationResult {
	p := params
	p.Sanitize()
	if p.UseFrequencyMode {
		ResolveFrequencyModes(&p)
	}

	size := p.GridSize
	field := core.NewGrid(size)

	switch p.Shape {
	case core.ShapeCircular:
		circularField(field, p, phase)
	case core.ShapeHexagonal:
		hexagonalField(field, p, phase)
	case core.ShapeHeptagonal:
		heptagonalField(field, p, phase)
	case core.ShapeCustomPolygon:
		rectangularField(field, p, phase)
		applyMaskWeight(field, polygonMask(size, p.PolygonVertices))
	default:
		rectangularField(field, p, phase)
	}

	res := &core.SimulationResult{
		Field:      field,
		Normalized: Normalize(field),
		Params:     p,
		Timestamp:  time.Now(),
	}
	if p.IncludeHeightMap {
		res.HeightMap = field
	}
	if p.IncludeBoundaryMask {
		res.BoundaryMask = GenerateMask(p.Shape, p.PolygonVertices, size)
	}
	return res
}

// ResolveFrequencyModes replaces the explicit mode numbers with a pair
// derived from the drive frequency and the plate material. Higher
// effective frequencies map logarithmically onto higher mode totals.
func ResolveFrequencyModes(p *core.SimulationParams) {
	eff := p.FrequencyHz * p.Material.WaveSpeedFactor
	eff = core.Clamp(eff, MinFrequencyHz, MaxFrequencyHz)

	logRatio := (math.Log(eff) - math.Log(MinFrequencyHz)) /
		(math.Log(MaxFrequencyHz) - math.Log(MinFrequencyHz))
	total := int(logRatio*22.0) + 2

	m := core.ClampInt((total+1)/2, 1, MaxModeNumber)
	n := core.ClampInt(total-m+1, 1, MaxModeNumber)
	p.ModeM, p.ModeN = m, n
	p.SecondaryM = core.ClampInt(m+1, 1, MaxModeNumber)
	p.SecondaryN = core.ClampInt(n+1, 1, MaxModeNumber)
}

// Phase envelopes for the primary and secondary modes. The secondary
// breathes at an incommensurate rate so the mixed pattern pulses slowly
// instead of repeating every cycle.
func primaryEnvelope(phase float64) float64 {
	return 0.6 + 0.4*math.Cos(phase)
}

func secondaryEnvelope(phase float64) float64 {
	return 0.6 + 0.4*math.Cos(1.35*phase+math.Pi/4)
}

// sineOrder floors a mode number for the separable sine shapes, where
// order zero would null the field entirely.
func sineOrder(m int) float64 {
	if m < 1 {
		return 1
	}
	return float64(m)
}

func rectangularField(field [][]float64, p core.SimulationParams, phase float64) {
	size := len(field)
	m1, n1 := sineOrder(p.ModeM), sineOrder(p.ModeN)
	m2, n2 := sineOrder(p.SecondaryM), sineOrder(p.SecondaryN)
	a1 := (1 - p.Mix) * primaryEnvelope(phase)
	a2 := p.Mix * secondaryEnvelope(phase)

	for i := 0; i < size; i++ {
		y := float64(i) / float64(size-1)
		for j := 0; j < size; j++ {
			x := float64(j) / float64(size-1)
			v := a1*math.Sin(m1*math.Pi*x)*math.Sin(n1*math.Pi*y) +
				a2*math.Sin(m2*math.Pi*x)*math.Sin(n2*math.Pi*y)
			if p.Damping > 0 {
				dx, dy := x-0.5, y-0.5
				v *= math.Exp(-p.Damping * (dx*dx + dy*dy))
			}
			field[i][j] = v
		}
	}
}

func circularField(field [][]float64, p core.SimulationParams, phase float64) {
	size := len(field)
	k1 := BesselZero(p.ModeM, p.ModeN)
	k2 := BesselZero(p.SecondaryM, p.SecondaryN)
	a1 := (1 - p.Mix) * primaryEnvelope(phase)
	a2 := p.Mix * secondaryEnvelope(phase)

	for i := 0; i < size; i++ {
		v := 2.0*float64(i)/float64(size-1) - 1.0
		for j := 0; j < size; j++ {
			u := 2.0*float64(j)/float64(size-1) - 1.0
			r := math.Hypot(u, v)
			if r > 1.0 {
				field[i][j] = 0
				continue
			}
			theta := math.Atan2(v, u)
			w := a1*math.Jn(p.ModeM, k1*r)*math.Cos(float64(p.ModeM)*theta) +
				a2*math.Jn(p.SecondaryM, k2*r)*math.Cos(float64(p.SecondaryM)*theta)
			if p.Damping > 0 {
				w *= math.Exp(-p.Damping * r * r)
			}
			field[i][j] = w
		}
	}
}

// hexagonalField superimposes three copies of the separable rectangular
// mode, rotated by 60° steps about the plate center, which gives the
// pattern its 3-fold symmetry.
func hexagonalField(field [][]float64, p core.SimulationParams, phase float64) {
	size := len(field)
	m1, n1 := sineOrder(p.ModeM), sineOrder(p.ModeN)
	m2, n2 := sineOrder(p.SecondaryM), sineOrder(p.SecondaryN)
	a1 := (1 - p.Mix) * primaryEnvelope(phase)
	a2 := p.Mix * secondaryEnvelope(phase)
	mask := regularPolygonMask(size, 6)

	for i := 0; i < size; i++ {
		y := float64(i) / float64(size-1)
		for j := 0; j < size; j++ {
			if !mask[i][j] {
				field[i][j] = 0
				continue
			}
			x := float64(j) / float64(size-1)
			var w1, w2 float64
			for k := 0; k < 3; k++ {
				a := float64(k) * math.Pi / 3.0
				sin, cos := math.Sincos(a)
				xr := 0.5 + (x-0.5)*cos - (y-0.5)*sin
				yr := 0.5 + (x-0.5)*sin + (y-0.5)*cos
				w1 += math.Sin(m1*math.Pi*xr) * math.Sin(n1*math.Pi*yr)
				w2 += math.Sin(m2*math.Pi*xr) * math.Sin(n2*math.Pi*yr)
			}
			w := a1*w1 + a2*w2
			if p.Damping > 0 {
				dx, dy := 2.0*x-1.0, 2.0*y-1.0
				w *= math.Exp(-p.Damping * (dx*dx + dy*dy))
			}
			field[i][j] = w
		}
	}
}

// heptagonalField uses a radial-angular cosine product with the ad hoc
// HeptagonModeScale wavenumber mapping.
func heptagonalField(field [][]float64, p core.SimulationParams, phase float64) {
	const sides = 7.0
	size := len(field)
	k1 := float64(p.ModeM) * HeptagonModeScale
	k2 := float64(p.SecondaryM) * HeptagonModeScale
	a1 := (1 - p.Mix) * primaryEnvelope(phase)
	a2 := p.Mix * secondaryEnvelope(phase)
	mask := regularPolygonMask(size, 7)

	for i := 0; i < size; i++ {
		v := 2.0*float64(i)/float64(size-1) - 1.0
		for j := 0; j < size; j++ {
			if !mask[i][j] {
				field[i][j] = 0
				continue
			}
			u := 2.0*float64(j)/float64(size-1) - 1.0
			r := math.Hypot(u, v)
			theta := math.Atan2(v, u)
			w := a1*math.Cos(k1*r*math.Pi)*math.Cos(float64(p.ModeM)*theta*sides/2.0) +
				a2*math.Cos(k2*r*math.Pi)*math.Cos(float64(p.SecondaryM)*theta*sides/2.0)
			if p.Damping > 0 {
				w *= math.Exp(-p.Damping * r * r)
			}
			field[i][j] = w
		}
	}
}

// applyMaskWeight zeroes field cells outside the mask, using the mask as a
// continuous 0/1 weight on the field itself rather than only as a particle
// collision boundary.
func applyMaskWeight(field [][]float64, mask [][]bool) {
	for i := range field {
		for j := range field[i] {
			if !mask[i][j] {
				field[i][j] = 0
			}
		}
	}
}

// Normalize returns |field| scaled so its peak is 1. A field whose peak
// magnitude is below 1e-12 is returned as its raw magnitude, avoiding a
// divide-by-zero on silent plates.
func Normalize(field [][]float64) [][]float64 {
	size := len(field)
	out := make([][]float64, size)
	peak := 0.0
	for i, row := range field {
		mag := make([]float64, len(row))
		for j, v := range row {
			mag[j] = math.Abs(v)
		}
		if len(mag) > 0 {
			if m := floats.Max(mag); m > peak {
				peak = m
			}
		}
		out[i] = mag
	}
	if peak <= 1e-12 {
		return out
	}
	for _, row := range out {
		floats.Scale(1.0/peak, row)
	}
	return out
}
