// Package physics advances the sand-particle population that settles onto
// the nodal lines of a vibrating plate.
package physics

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"chladni/core"
)

// Tuning holds the dissipation constants of the particle system.
type Tuning struct {
	Friction        float64 // per-step velocity retention
	BounceLoss      float64 // speed retained after a wall reflection
	SettleThreshold float64 // speed below which a particle counts as resting
}

// DefaultTuning returns the standard sand behavior.
func DefaultTuning() Tuning {
	return Tuning{
		Friction:        0.95,
		BounceLoss:      0.8,
		SettleThreshold: 0.1,
	}
}

// maxPlacementRounds bounds rejection sampling during initialization; any
// shortfall after this many full rounds is filled at the plate center.
const maxPlacementRounds = 50

// Initialize scatters count particles uniformly over the admissible region
// of the boundary mask. Velocities start at zero and nothing is settled.
func Initialize(count, gridSize int, mask [][]bool, rng *rand.Rand) *core.ParticleState {
	if gridSize < core.MinGridSize {
		gridSize = core.MinGridSize
	}
	if count < 0 {
		count = 0
	}

	state := &core.ParticleState{
		Positions:  make([]core.Vec2, 0, count),
		Velocities: make([]core.Vec2, count),
		Settled:    make([]bool, count),
	}

	for round := 0; round < maxPlacementRounds && len(state.Positions) < count; round++ {
		for attempt := 0; attempt < count && len(state.Positions) < count; attempt++ {
			x, y := rng.Float64(), rng.Float64()
			if maskAt(mask, x, y) {
				state.Positions = append(state.Positions, core.Vec2{X: x, Y: y})
			}
		}
	}
	// Safe default for pathological masks: pile the remainder at the center.
	for len(state.Positions) < count {
		state.Positions = append(state.Positions, core.Vec2{X: 0.5, Y: 0.5})
	}
	return state
}

// Update advances the particles one step against a field using the default
// tuning. See UpdateTuned.
func Update(state *core.ParticleState, field [][]float64, dt, speed float64, mask [][]bool) (*core.ParticleState, error) {
	return UpdateTuned(state, field, dt, speed, mask, DefaultTuning())
}

// UpdateTuned runs one damped gradient-descent step: particles feel a force
// down the gradient of |field|, lose energy to friction, and reflect
// inelastically off the boundary mask. It returns a new state rather than
// mutating the input, so callers can hold states from different ticks.
func UpdateTuned(state *core.ParticleState, field [][]float64, dt, speed float64, mask [][]bool, tuning Tuning) (*core.ParticleState, error) {
	if state == nil {
		return nil, fmt.Errorf("physics: nil particle state")
	}
	if len(field) == 0 {
		return nil, fmt.Errorf("physics: empty field")
	}
	if len(mask) != len(field) {
		return nil, fmt.Errorf("physics: boundary mask %dx%d does not match field %dx%d",
			len(mask), len(mask), len(field), len(field))
	}

	potential := absField(field)
	gradX, gradY := gradient(potential)

	next := state.Clone()
	for i := range next.Positions {
		pos := next.Positions[i]
		vel := next.Velocities[i]

		gx := bilinear(gradX, pos.X, pos.Y)
		gy := bilinear(gradY, pos.X, pos.Y)

		// Force points toward amplitude minima; negligible gradients give
		// no push at all instead of a normalized random direction.
		var fx, fy float64
		if mag := math.Hypot(gx, gy); mag > 1e-9 {
			fx = -gx / mag * speed
			fy = -gy / mag * speed
		}

		vel.X = (vel.X + fx*dt) * tuning.Friction
		vel.Y = (vel.Y + fy*dt) * tuning.Friction

		trial := core.Vec2{
			X: core.Clamp(pos.X+vel.X*dt, 0, 1),
			Y: core.Clamp(pos.Y+vel.Y*dt, 0, 1),
		}
		if maskAt(mask, trial.X, trial.Y) {
			pos = trial
		} else {
			// Revert the step and reflect with energy loss.
			vel.X = -vel.X * tuning.BounceLoss
			vel.Y = -vel.Y * tuning.BounceLoss
		}

		next.Positions[i] = pos
		next.Velocities[i] = vel
		next.Settled[i] = math.Hypot(vel.X, vel.Y) < tuning.SettleThreshold
	}
	return next, nil
}

// Statistics is a pure aggregate over one particle state.
type Statistics struct {
	Total          int     `json:"total"`
	Settled        int     `json:"settled"`
	Moving         int     `json:"moving"`
	SettledPercent float64 `json:"settledPercent"`
	AvgVelocity    float64 `json:"avgVelocity"`
}

// GetStatistics summarizes how much of the population has come to rest.
func GetStatistics(state *core.ParticleState) Statistics {
	s := Statistics{Total: state.Count()}
	if s.Total == 0 {
		return s
	}
	speeds := make([]float64, s.Total)
	for i, v := range state.Velocities {
		speeds[i] = math.Hypot(v.X, v.Y)
		if state.Settled[i] {
			s.Settled++
		}
	}
	s.Moving = s.Total - s.Settled
	s.SettledPercent = 100.0 * float64(s.Settled) / float64(s.Total)
	s.AvgVelocity = stat.Mean(speeds, nil)
	return s
}

func absField(field [][]float64) [][]float64 {
	out := make([][]float64, len(field))
	for i, row := range field {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = math.Abs(v)
		}
	}
	return out
}

// gradient computes central differences over the grid, one-sided at the
// edges.
func gradient(f [][]float64) (gx, gy [][]float64) {
	size := len(f)
	gx = core.NewGrid(size)
	gy = core.NewGrid(size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			switch {
			case j == 0:
				gx[i][j] = f[i][1] - f[i][0]
			case j == size-1:
				gx[i][j] = f[i][size-1] - f[i][size-2]
			default:
				gx[i][j] = 0.5 * (f[i][j+1] - f[i][j-1])
			}
			switch {
			case i == 0:
				gy[i][j] = f[1][j] - f[0][j]
			case i == size-1:
				gy[i][j] = f[size-1][j] - f[size-2][j]
			default:
				gy[i][j] = 0.5 * (f[i+1][j] - f[i-1][j])
			}
		}
	}
	return gx, gy
}

// bilinear samples a grid at a continuous unit-square position.
func bilinear(f [][]float64, x, y float64) float64 {
	size := len(f)
	fx := core.Clamp(x, 0, 1) * float64(size-1)
	fy := core.Clamp(y, 0, 1) * float64(size-1)

	j0 := int(fx)
	i0 := int(fy)
	j1 := core.ClampInt(j0+1, 0, size-1)
	i1 := core.ClampInt(i0+1, 0, size-1)
	tx := fx - float64(j0)
	ty := fy - float64(i0)

	top := f[i0][j0]*(1-tx) + f[i0][j1]*tx
	bottom := f[i1][j0]*(1-tx) + f[i1][j1]*tx
	return top*(1-ty) + bottom*ty
}

// maskAt maps a unit-square position to its nearest mask cell.
func maskAt(mask [][]bool, x, y float64) bool {
	size := len(mask)
	if size == 0 {
		return true
	}
	j := core.ClampInt(int(core.Clamp(x, 0, 1)*float64(size-1)+0.5), 0, size-1)
	i := core.ClampInt(int(core.Clamp(y, 0, 1)*float64(size-1)+0.5), 0, size-1)
	return mask[i][j]
}
