package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Settings struct {
	Simulation SimulationSettings `json:"simulation"`
	Server     ServerSettings     `json:"server"`
}

type SimulationSettings struct {
	GridSize         int     `json:"gridSize"`
	Shape            string  `json:"shape"`
	Material         string  `json:"material"`
	ModeM            int     `json:"modeM"`
	ModeN            int     `json:"modeN"`
	SecondaryM       int     `json:"secondaryM"`
	SecondaryN       int     `json:"secondaryN"`
	Mix              float64 `json:"mix"`
	Damping          float64 `json:"damping"`
	FrequencyHz      float64 `json:"frequencyHz"`
	UseFrequencyMode bool    `json:"useFrequencyMode"`
	ParticleCount    int     `json:"particleCount"`
	ParticleSpeed    float64 `json:"particleSpeed"`
	Comment          string  `json:"comment"`
}

type ServerSettings struct {
	Port             int `json:"port"`
	UpdateIntervalMs int `json:"updateIntervalMs"`
	DetectEveryN     int `json:"detectEveryN"`
}

// Load reads settings from path, starting from defaults so a partial or
// missing file still yields a runnable configuration.
func Load(path string) (Settings, error) {
	settings := Settings{
		Simulation: SimulationSettings{
			GridSize:      128,
			Shape:         "rectangular",
			Material:      "Steel",
			ModeM:         3,
			ModeN:         2,
			SecondaryM:    4,
			SecondaryN:    3,
			FrequencyHz:   440.0,
			ParticleCount: 800,
			ParticleSpeed: 2.0,
		},
		Server: ServerSettings{
			Port:             8080,
			UpdateIntervalMs: 45,
			DetectEveryN:     22, // roughly one detection per second at 45 ms ticks
		},
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No %s found, using defaults\n", path)
			return settings, nil
		}
		return settings, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&settings); err != nil {
		return settings, fmt.Errorf("error parsing %s: %v", path, err)
	}

	fmt.Printf("Loaded settings: %dx%d grid, %s plate, %s\n",
		settings.Simulation.GridSize, settings.Simulation.GridSize,
		settings.Simulation.Shape, settings.Simulation.Material)

	return settings, nil
}
