package simulation

import (
	"math"

	"chladni/core"
)

// Mask tuning constants. These are visual calibration values, not
// physically derived quantities; the tests assert them literally.
const (
	// RectInset keeps particles off the outermost cells of a rectangular
	// plate (fraction of the plate width trimmed from each side).
	RectInset = 0.05
	// CircleRadius is deliberately shy of 0.5 to avoid edge artifacts.
	CircleRadius = 0.48
	// PolygonRadius is the circumradius of the regular polygon plates in
	// the [-1,1]² centered frame.
	PolygonRadius = 0.90
)

// GenerateMask produces the admissibility mask for a plate shape at the
// given resolution. True marks interior points. Degenerate input never
// raises an error; the worst case is a full-plate fallback.
func GenerateMask(shape core.PlateShape, vertices []core.Vec2, gridSize int) [][]bool {
	if gridSize < core.MinGridSize {
		gridSize = core.MinGridSize
	}
	switch shape {
	case core.ShapeCircular:
		return circularMask(gridSize)
	case core.ShapeHexagonal:
		return regularPolygonMask(gridSize, 6)
	case core.ShapeHeptagonal:
		return regularPolygonMask(gridSize, 7)
	case core.ShapeCustomPolygon:
		return polygonMask(gridSize, vertices)
	}
	return rectangularMask(gridSize)
}

func rectangularMask(size int) [][]bool {
	mask := core.NewBoolGrid(size)
	for i := 0; i < size; i++ {
		y := float64(i) / float64(size-1)
		for j := 0; j < size; j++ {
			x := float64(j) / float64(size-1)
			mask[i][j] = x >= RectInset && x <= 1-RectInset && y >= RectInset && y <= 1-RectInset
		}
	}
	return mask
}

func circularMask(size int) [][]bool {
	mask := core.NewBoolGrid(size)
	for i := 0; i < size; i++ {
		y := float64(i)/float64(size-1) - 0.5
		for j := 0; j < size; j++ {
			x := float64(j)/float64(size-1) - 0.5
			mask[i][j] = math.Hypot(x, y) <= CircleRadius
		}
	}
	return mask
}

// regularPolygonMask intersects one half-plane per edge. A point is inside
// when its projection onto every edge-midpoint direction stays below the
// apothem R·cos(π/N).
func regularPolygonMask(size, sides int) [][]bool {
	apothem := PolygonRadius * math.Cos(math.Pi/float64(sides))
	normals := make([]core.Vec2, sides)
	for k := 0; k < sides; k++ {
		// Edge midpoints sit between adjacent vertices at 2πk/N.
		a := math.Pi/float64(sides) + 2.0*math.Pi*float64(k)/float64(sides)
		normals[k] = core.Vec2{X: math.Cos(a), Y: math.Sin(a)}
	}

	mask := core.NewBoolGrid(size)
	for i := 0; i < size; i++ {
		v := 2.0*float64(i)/float64(size-1) - 1.0
		for j := 0; j < size; j++ {
			u := 2.0*float64(j)/float64(size-1) - 1.0
			inside := true
			for _, n := range normals {
				if u*n.X+v*n.Y >= apothem {
					inside = false
					break
				}
			}
			mask[i][j] = inside
		}
	}
	return mask
}

// polygonMask tests each grid point against a user-supplied outline with
// ray casting. Fewer than three vertices silently falls back to the
// rectangular mask.
func polygonMask(size int, vertices []core.Vec2) [][]bool {
	if len(vertices) < 3 {
		return rectangularMask(size)
	}
	mask := core.NewBoolGrid(size)
	for i := 0; i < size; i++ {
		y := float64(i) / float64(size-1)
		for j := 0; j < size; j++ {
			x := float64(j) / float64(size-1)
			mask[i][j] = pointInPolygon(x, y, vertices)
		}
	}
	return mask
}

func pointInPolygon(x, y float64, vertices []core.Vec2) bool {
	inside := false
	n := len(vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > y) != (vj.Y > y) {
			xCross := (vj.X-vi.X)*(y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}
