package core

import (
	"strings"
	"time"
)

// PlateShape selects the plate geometry used for field synthesis and
// boundary masking.
type PlateShape int

const (
	ShapeRectangular PlateShape = iota
	ShapeCircular
	ShapeHexagonal
	ShapeHeptagonal
	ShapeCustomPolygon
)

func (s PlateShape) String() string {
	switch s {
	case ShapeRectangular:
		return "rectangular"
	case ShapeCircular:
		return "circular"
	case ShapeHexagonal:
		return "hexagonal"
	case ShapeHeptagonal:
		return "heptagonal"
	case ShapeCustomPolygon:
		return "custom"
	}
	return "rectangular"
}

// ParseShape maps a shape name to its PlateShape. Unknown names fall back
// to the rectangular plate so a running animation never stalls on bad input.
func ParseShape(name string) PlateShape {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "circular", "circle":
		return ShapeCircular
	case "hexagonal", "hexagon":
		return ShapeHexagonal
	case "heptagonal", "heptagon":
		return ShapeHeptagonal
	case "custom", "polygon":
		return ShapeCustomPolygon
	}
	return ShapeRectangular
}

// Vec2 is a point or velocity in the unit-square plate frame.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SimulationParams describes one field synthesis call. A fresh value is
// built per call and treated as immutable for its duration.
type SimulationParams struct {
	GridSize   int
	ModeM      int
	ModeN      int
	SecondaryM int
	SecondaryN int
	Mix        float64
	Damping    float64

	FrequencyHz      float64
	UseFrequencyMode bool

	Shape           PlateShape
	PolygonVertices []Vec2 // only read when Shape is ShapeCustomPolygon

	Material Material

	ParticleCount int
	ParticleSpeed float64

	// Output selection. The raw field and its normalized form are always
	// produced; these toggle the optional extras on SimulationResult.
	IncludeHeightMap    bool
	IncludeBoundaryMask bool
}

// MinGridSize is the smallest grid the simulator will run on; smaller
// requests are clamped up rather than rejected.
const MinGridSize = 16

// DefaultParams returns the parameter set the host starts from.
func DefaultParams() SimulationParams {
	return SimulationParams{
		GridSize:      128,
		ModeM:         3,
		ModeN:         2,
		SecondaryM:    4,
		SecondaryN:    3,
		Mix:           0.0,
		Damping:       0.0,
		FrequencyHz:   440.0,
		Shape:         ShapeRectangular,
		Material:      MustMaterial("Steel"),
		ParticleCount: 800,
		ParticleSpeed: 2.0,
	}
}

// Sanitize clamps out-of-range values in place. It never reports an error:
// the simulator must always produce some valid field.
func (p *SimulationParams) Sanitize() {
	if p.GridSize < MinGridSize {
		p.GridSize = MinGridSize
	}
	// Angular order zero is meaningful on the circular plate (the pure
	// radial J_0 patterns), so modes clamp at zero; the sine-product
	// shapes floor a zero order themselves.
	if p.ModeM < 0 {
		p.ModeM = 0
	}
	if p.ModeN < 0 {
		p.ModeN = 0
	}
	if p.SecondaryM < 0 {
		p.SecondaryM = 0
	}
	if p.SecondaryN < 0 {
		p.SecondaryN = 0
	}
	p.Mix = Clamp(p.Mix, 0, 1)
	if p.Damping < 0 {
		p.Damping = 0
	}
	if p.Shape < ShapeRectangular || p.Shape > ShapeCustomPolygon {
		p.Shape = ShapeRectangular
	}
	if p.Material.Name == "" {
		p.Material = MustMaterial("Steel")
	}
	if p.ParticleCount < 0 {
		p.ParticleCount = 0
	}
	if p.ParticleSpeed < 0 {
		p.ParticleSpeed = 0
	}
}

// SimulationResult is the output of one field synthesis call. It is
// read-only after creation; ownership passes to the caller.
type SimulationResult struct {
	Field      [][]float64
	Normalized [][]float64
	Params     SimulationParams
	Timestamp  time.Time

	// Optional extras, nil unless requested via the params.
	HeightMap    [][]float64
	BoundaryMask [][]bool
	Particles    *ParticleState
}

// ParticleState holds the sand-particle population between ticks. Updates
// construct and return a new state; the caller owns each instance.
type ParticleState struct {
	Positions  []Vec2
	Velocities []Vec2
	Settled    []bool
}

// Count returns the particle population size.
func (s *ParticleState) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Positions)
}

// Clone produces an independent copy of the state.
func (s *ParticleState) Clone() *ParticleState {
	if s == nil {
		return nil
	}
	out := &ParticleState{
		Positions:  make([]Vec2, len(s.Positions)),
		Velocities: make([]Vec2, len(s.Velocities)),
		Settled:    make([]bool, len(s.Settled)),
	}
	copy(out.Positions, s.Positions)
	copy(out.Velocities, s.Velocities)
	copy(out.Settled, s.Settled)
	return out
}

// NewGrid allocates a size x size zero field.
func NewGrid(size int) [][]float64 {
	g := make([][]float64, size)
	for i := range g {
		g[i] = make([]float64, size)
	}
	return g
}

// NewBoolGrid allocates a size x size mask, all false.
func NewBoolGrid(size int) [][]bool {
	g := make([][]bool, size)
	for i := range g {
		g[i] = make([]bool, size)
	}
	return g
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
