// Package detection extracts quantitative features from a generated plate
// field: mirror symmetry, edge structure, radial intensity peaks, and the
// dominant 2D spatial frequencies.
package detection

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"

	"chladni/core"
)

// DefaultNodalThreshold marks normalized amplitudes below this value as
// nodal (where sand accumulates).
const DefaultNodalThreshold = 0.08

// Sobel double-threshold bounds for the edge map.
const (
	weakEdgeThreshold   = 60.0
	strongEdgeThreshold = 140.0
)

const (
	maxRadialPeaks         = 6
	maxDominantFrequencies = 5
)

// Frequency is one dominant spectral component in normalized frequency
// coordinates, fx and fy in [-0.5, 0.5].
type Frequency struct {
	FX        float64 `json:"fx"`
	FY        float64 `json:"fy"`
	Magnitude float64 `json:"magnitude"`
}

// Result holds the metrics extracted from one simulation result.
type Result struct {
	SymmetryHorizontal  float64     `json:"symmetryHorizontal"`
	SymmetryVertical    float64     `json:"symmetryVertical"`
	EdgeDensity         float64     `json:"edgeDensity"`
	RadialPeaks         []float64   `json:"radialPeaks"`
	DominantFrequencies []Frequency `json:"dominantFrequencies"`

	Edges     [][]uint8 `json:"-"`
	NodalMask [][]bool  `json:"-"`
}

// Detect runs the full pipeline with the default nodal threshold.
func Detect(res *core.SimulationResult) (*Result, error) {
	return DetectWithThreshold(res, DefaultNodalThreshold)
}

// DetectWithThreshold extracts pattern features from the normalized field.
// A malformed (empty or ragged) field is a caller contract violation and
// fails fast; numeric edge cases inside a well-formed field degrade to
// empty metrics instead.
func DetectWithThreshold(res *core.SimulationResult, nodalThreshold float64) (*Result, error) {
	norm := res.Normalized
	height := len(norm)
	if height == 0 {
		return nil, fmt.Errorf("detection: empty normalized field")
	}
	width := len(norm[0])
	if width == 0 {
		return nil, fmt.Errorf("detection: zero-width field")
	}
	for i, row := range norm {
		if len(row) != width {
			return nil, fmt.Errorf("detection: ragged field, row %d has %d columns, want %d", i, len(row), width)
		}
	}

	gray := quantize(norm)

	out := &Result{
		NodalMask: nodalMask(norm, nodalThreshold),
	}
	out.Edges = edgeMap(gray)
	out.EdgeDensity = edgeDensity(out.Edges)
	out.SymmetryHorizontal, out.SymmetryVertical = mirrorSymmetry(gray)
	out.RadialPeaks = radialPeaks(gray)
	out.DominantFrequencies = dominantFrequencies(gray)
	return out, nil
}

// quantize converts the normalized field to a 0..255 grayscale matrix,
// kept as float64 for the downstream arithmetic.
func quantize(norm [][]float64) [][]float64 {
	out := make([][]float64, len(norm))
	for i, row := range norm {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = math.Round(core.Clamp(v, 0, 1) * 255.0)
		}
	}
	return out
}

func nodalMask(norm [][]float64, threshold float64) [][]bool {
	mask := make([][]bool, len(norm))
	for i, row := range norm {
		mask[i] = make([]bool, len(row))
		for j, v := range row {
			mask[i][j] = v < threshold
		}
	}
	return mask
}

// mirrorSymmetry scores how closely the image matches its own vertical and
// horizontal flips; 1.0 is a perfect mirror.
func mirrorSymmetry(gray [][]float64) (horizontal, vertical float64) {
	height := len(gray)
	width := len(gray[0])
	var sumH, sumV float64
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			sumH += math.Abs(gray[i][j] - gray[height-1-i][j])
			sumV += math.Abs(gray[i][j] - gray[i][width-1-j])
		}
	}
	n := float64(height * width)
	horizontal = 1.0 - sumH/n/255.0
	vertical = 1.0 - sumV/n/255.0
	return horizontal, vertical
}

// edgeMap computes a Sobel gradient-magnitude map with 60/140 double
// thresholding: strong pixels are edges outright, weak pixels only when an
// 8-neighbor is strong.
func edgeMap(gray [][]float64) [][]uint8 {
	height := len(gray)
	width := len(gray[0])

	mag := make([][]float64, height)
	for i := range mag {
		mag[i] = make([]float64, width)
	}
	for i := 1; i < height-1; i++ {
		for j := 1; j < width-1; j++ {
			gx := -gray[i-1][j-1] + gray[i-1][j+1] +
				-2.0*gray[i][j-1] + 2.0*gray[i][j+1] +
				-gray[i+1][j-1] + gray[i+1][j+1]
			gy := -gray[i-1][j-1] - 2.0*gray[i-1][j] - gray[i-1][j+1] +
				gray[i+1][j-1] + 2.0*gray[i+1][j] + gray[i+1][j+1]
			mag[i][j] = math.Hypot(gx, gy)
		}
	}

	edges := make([][]uint8, height)
	for i := range edges {
		edges[i] = make([]uint8, width)
	}
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			if mag[i][j] >= strongEdgeThreshold {
				edges[i][j] = 255
			}
		}
	}
	// Promote weak pixels adjacent to a strong edge.
	for i := 1; i < height-1; i++ {
		for j := 1; j < width-1; j++ {
			if mag[i][j] < weakEdgeThreshold || edges[i][j] == 255 {
				continue
			}
			for di := -1; di <= 1 && edges[i][j] == 0; di++ {
				for dj := -1; dj <= 1; dj++ {
					if mag[i+di][j+dj] >= strongEdgeThreshold {
						edges[i][j] = 255
						break
					}
				}
			}
		}
	}
	return edges
}

func edgeDensity(edges [][]uint8) float64 {
	total, marked := 0, 0
	for _, row := range edges {
		for _, v := range row {
			total++
			if v != 0 {
				marked++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(marked) / float64(total)
}

// radialPeaks bins pixel intensity by integer distance from the image
// center and reports up to six peak radii, normalized by the maximum
// observed radius. Profiles too short or too flat yield no peaks.
func radialPeaks(gray [][]float64) []float64 {
	height := len(gray)
	width := len(gray[0])
	cy, cx := height/2, width/2

	maxR := int(math.Hypot(float64(cy), float64(cx))) + 1
	sums := make([]float64, maxR)
	counts := make([]int, maxR)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			r := int(math.Round(math.Hypot(float64(i-cy), float64(j-cx))))
			if r < maxR {
				sums[r] += gray[i][j]
				counts[r]++
			}
		}
	}

	profile := make([]float64, 0, maxR)
	for r := 0; r < maxR; r++ {
		if counts[r] > 0 {
			profile = append(profile, sums[r]/float64(counts[r]))
		}
	}

	if len(profile) < 4 {
		return nil
	}
	peakValue := 0.0
	for _, v := range profile {
		if v > peakValue {
			peakValue = v
		}
	}
	if peakValue <= 1e-6 {
		return nil
	}

	minProminence := 0.1 * peakValue
	maxRadius := float64(len(profile) - 1)
	peaks := make([]float64, 0, maxRadialPeaks)
	for i := 1; i < len(profile)-1 && len(peaks) < maxRadialPeaks; i++ {
		if profile[i] <= profile[i-1] || profile[i] < profile[i+1] {
			continue
		}
		if prominence(profile, i) >= minProminence {
			peaks = append(peaks, float64(i)/maxRadius)
		}
	}
	return peaks
}

// prominence measures how far a local maximum rises above the higher of
// the valleys separating it from taller terrain on each side.
func prominence(profile []float64, peak int) float64 {
	leftMin := profile[peak]
	for i := peak - 1; i >= 0; i-- {
		if profile[i] > profile[peak] {
			break
		}
		if profile[i] < leftMin {
			leftMin = profile[i]
		}
	}
	rightMin := profile[peak]
	for i := peak + 1; i < len(profile); i++ {
		if profile[i] > profile[peak] {
			break
		}
		if profile[i] < rightMin {
			rightMin = profile[i]
		}
	}
	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return profile[peak] - base
}

// dominantFrequencies takes the 2D DFT of the grayscale field, suppresses
// the DC bin, and returns the five strongest bins as normalized frequency
// pairs sorted by magnitude.
func dominantFrequencies(gray [][]float64) []Frequency {
	height := len(gray)
	width := len(gray[0])
	if height*width <= maxDominantFrequencies {
		return nil
	}

	spectrum := fft.FFT2Real(gray)

	bins := make([]Frequency, 0, height*width-1)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			if i == 0 && j == 0 {
				continue // DC
			}
			fy := float64(i) / float64(height)
			if i > height/2 {
				fy -= 1.0
			}
			fx := float64(j) / float64(width)
			if j > width/2 {
				fx -= 1.0
			}
			bins = append(bins, Frequency{FX: fx, FY: fy, Magnitude: cmplx.Abs(spectrum[i][j])})
		}
	}
	if len(bins) < maxDominantFrequencies {
		return nil
	}
	sort.Slice(bins, func(a, b int) bool { return bins[a].Magnitude > bins[b].Magnitude })
	return bins[:maxDominantFrequencies]
}
