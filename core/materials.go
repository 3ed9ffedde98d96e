package core

import "math"

// Material is an immutable record of a plate material. The wave constants
// are derived once at catalog definition time and never mutate.
type Material struct {
	Name string

	YoungsModulusGPa float64 // Young's modulus in GPa
	DensityKgM3      float64 // density in kg/m³
	PoissonRatio     float64
	ThicknessMm      float64 // plate thickness in mm
	ResonanceQuality float64 // in [0,1], how cleanly the plate rings
	Uniformity       float64 // in [0,1], grain/defect homogeneity

	// Derived.
	WaveSpeed        float64 // sqrt(E/rho), m/s
	FlexuralRigidity float64 // E h³ / (12 (1-nu²)), N·m
	WaveSpeedFactor  float64 // wave speed relative to steel
	DampingFactor    float64 // 1 - resonance quality
}

// steelWaveSpeed anchors WaveSpeedFactor; steel is the reference plate.
var steelWaveSpeed = math.Sqrt(200.0e9 / 7850.0)

func newMaterial(name string, youngGPa, density, poisson, thicknessMm, resonance, uniformity float64) Material {
	youngPa := youngGPa * 1e9
	thicknessM := thicknessMm / 1000.0
	waveSpeed := math.Sqrt(youngPa / density)
	return Material{
		Name:             name,
		YoungsModulusGPa: youngGPa,
		DensityKgM3:      density,
		PoissonRatio:     poisson,
		ThicknessMm:      thicknessMm,
		ResonanceQuality: resonance,
		Uniformity:       uniformity,
		WaveSpeed:        waveSpeed,
		FlexuralRigidity: youngPa * thicknessM * thicknessM * thicknessM / (12.0 * (1.0 - poisson*poisson)),
		WaveSpeedFactor:  waveSpeed / steelWaveSpeed,
		DampingFactor:    1.0 - resonance,
	}
}

// Materials is the fixed plate catalog, in display order. Values are
// representative handbook constants for thin resonant plates.
var Materials = []Material{
	newMaterial("Steel", 200.0, 7850.0, 0.30, 1.0, 0.90, 0.95),
	newMaterial("Brass", 100.0, 8500.0, 0.34, 1.0, 0.85, 0.90),
	newMaterial("Aluminum", 69.0, 2700.0, 0.33, 1.0, 0.80, 0.92),
	newMaterial("Copper", 117.0, 8960.0, 0.34, 1.0, 0.82, 0.90),
	newMaterial("Glass", 70.0, 2500.0, 0.22, 2.0, 0.95, 0.98),
	newMaterial("Oak", 11.0, 750.0, 0.35, 3.0, 0.60, 0.70),
	newMaterial("Maple", 10.0, 705.0, 0.35, 3.0, 0.65, 0.75),
	newMaterial("Acrylic", 3.2, 1180.0, 0.37, 2.0, 0.50, 0.95),
	newMaterial("Marble", 55.0, 2700.0, 0.25, 5.0, 0.70, 0.80),
	newMaterial("Gold", 79.0, 19300.0, 0.42, 0.5, 0.88, 0.97),
	newMaterial("Silver", 83.0, 10490.0, 0.37, 0.5, 0.90, 0.96),
	newMaterial("Electrum", 81.0, 14000.0, 0.40, 0.5, 0.89, 0.93),
	newMaterial("Quartz Crystal", 76.5, 2650.0, 0.17, 1.5, 0.98, 0.99),
	newMaterial("Sapphire", 345.0, 3980.0, 0.29, 1.0, 0.97, 0.99),
	newMaterial("Diamond", 1050.0, 3520.0, 0.20, 0.5, 0.99, 1.00),
}

var materialIndex = func() map[string]int {
	idx := make(map[string]int, len(Materials))
	for i, m := range Materials {
		idx[m.Name] = i
	}
	return idx
}()

// MaterialByName looks up a catalog entry.
func MaterialByName(name string) (Material, bool) {
	i, ok := materialIndex[name]
	if !ok {
		return Material{}, false
	}
	return Materials[i], true
}

// MustMaterial returns a catalog entry, falling back to steel for unknown
// names so callers always get a usable plate.
func MustMaterial(name string) Material {
	if m, ok := MaterialByName(name); ok {
		return m
	}
	return Materials[0]
}
