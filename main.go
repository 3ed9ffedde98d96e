package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"chladni/config"
	"chladni/detection"
	"chladni/physics"
	"chladni/simulation"
)

func main() {
	var (
		settingsPath = flag.String("settings", "settings.json", "Path to settings file")
		port         = flag.Int("port", 0, "Override server port")
		gridSize     = flag.Int("grid", 0, "Override grid resolution")
		shape        = flag.String("shape", "", "Override plate shape (rectangular, circular, hexagonal, heptagonal)")
		material     = flag.String("material", "", "Override plate material")
		particles    = flag.Int("particles", -1, "Override particle count")
		frames       = flag.Int("frames", 0, "Run N frames headless and exit instead of serving")
	)
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if *port > 0 {
		settings.Server.Port = *port
	}
	if *gridSize > 0 {
		settings.Simulation.GridSize = *gridSize
	}
	if *shape != "" {
		settings.Simulation.Shape = *shape
	}
	if *material != "" {
		settings.Simulation.Material = *material
	}
	if *particles >= 0 {
		settings.Simulation.ParticleCount = *particles
	}

	fmt.Println("=== Chladni Plate Simulator ===")
	fmt.Printf("Grid: %dx%d\n", settings.Simulation.GridSize, settings.Simulation.GridSize)
	fmt.Printf("Shape: %s\n", settings.Simulation.Shape)
	fmt.Printf("Material: %s\n", settings.Simulation.Material)
	fmt.Printf("Particles: %d\n", settings.Simulation.ParticleCount)

	if *frames > 0 {
		runHeadless(settings, *frames)
		return
	}
	startServer(settings)
}

// runHeadless drives the same tick sequence as the server without the
// network layer, then prints the final particle and detection summary.
func runHeadless(settings config.Settings, frames int) {
	params := paramsFromSettings(settings.Simulation)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	mask := simulation.GenerateMask(params.Shape, params.PolygonVertices, params.GridSize)
	state := physics.Initialize(params.ParticleCount, params.GridSize, mask, rng)

	start := time.Now()
	var phase float64
	var result = simulation.Simulate(params, phase)
	for frame := 0; frame < frames; frame++ {
		phase += phaseStep
		result = simulation.Simulate(params, phase)
		next, err := physics.Update(state, result.Field, 1.0, params.ParticleSpeed, mask)
		if err != nil {
			log.Fatalf("Particle update failed: %v", err)
		}
		state = next
	}
	elapsed := time.Since(start)

	stats := physics.GetStatistics(state)
	fmt.Printf("Ran %d frames in %v (%.1f fps)\n",
		frames, elapsed, float64(frames)/elapsed.Seconds())
	fmt.Printf("Particles: %d settled, %d moving (%.1f%%), avg speed %.4f\n",
		stats.Settled, stats.Moving, stats.SettledPercent, stats.AvgVelocity)

	metrics, err := detection.Detect(result)
	if err != nil {
		log.Fatalf("Detection failed: %v", err)
	}
	fmt.Printf("Symmetry: horizontal %.3f, vertical %.3f\n",
		metrics.SymmetryHorizontal, metrics.SymmetryVertical)
	fmt.Printf("Edge density: %.4f\n", metrics.EdgeDensity)
	fmt.Printf("Radial peaks: %v\n", metrics.RadialPeaks)
	for i, f := range metrics.DominantFrequencies {
		fmt.Printf("Frequency %d: (%.3f, %.3f) magnitude %.1f\n", i+1, f.FX, f.FY, f.Magnitude)
	}
}
