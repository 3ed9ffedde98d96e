package main

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chladni/config"
	"chladni/core"
	"chladni/detection"
	"chladni/physics"
	"chladni/simulation"
)

// phaseStep is how far the animation phase advances per tick.
const phaseStep = 0.12

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type client struct {
	id uuid.UUID
	mu sync.Mutex
}

var clients = make(map[*websocket.Conn]*client)
var clientsMutex sync.RWMutex

// hostState is the simulation state driven by the animation loop and
// adjusted by client messages.
type hostState struct {
	mu         sync.Mutex
	params     core.SimulationParams
	phase      float64
	mask       [][]bool
	particles  *core.ParticleState
	frameCount int
	detection  *detection.Result
	rng        *rand.Rand
}

var host hostState

// frameMessage is one websocket frame: the normalized field plus particle
// and detection state derived from it.
type frameMessage struct {
	Type       string             `json:"type"`
	Phase      float64            `json:"phase"`
	GridSize   int                `json:"gridSize"`
	Shape      string             `json:"shape"`
	Material   string             `json:"material"`
	Normalized [][]float64        `json:"normalized"`
	Particles  [][2]float64       `json:"particles,omitempty"`
	Stats      physics.Statistics `json:"stats"`
	Detection  *detection.Result  `json:"detection,omitempty"`
}

type helloMessage struct {
	Type      string   `json:"type"`
	SessionID string   `json:"sessionId"`
	Materials []string `json:"materials"`
}

// paramUpdate is what clients may send to steer the running simulation.
// Absent fields leave the current value alone.
type paramUpdate struct {
	ModeM            *int     `json:"modeM"`
	ModeN            *int     `json:"modeN"`
	SecondaryM       *int     `json:"secondaryM"`
	SecondaryN       *int     `json:"secondaryN"`
	Mix              *float64 `json:"mix"`
	Damping          *float64 `json:"damping"`
	FrequencyHz      *float64 `json:"frequencyHz"`
	UseFrequencyMode *bool    `json:"useFrequencyMode"`
	Shape            *string  `json:"shape"`
	Material         *string  `json:"material"`
	ParticleCount    *int     `json:"particleCount"`
	ParticleSpeed    *float64 `json:"particleSpeed"`
}

func startServer(settings config.Settings) {
	host.params = paramsFromSettings(settings.Simulation)
	host.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	resetPlate()

	fmt.Printf("Plate initialized: %s %dx%d, material %s\n",
		host.params.Shape, host.params.GridSize, host.params.GridSize,
		host.params.Material.Name)

	go animationLoop(settings.Server)

	http.HandleFunc("/ws", handleWebSocket)

	addr := fmt.Sprintf(":%d", settings.Server.Port)
	fmt.Printf("Server starting on http://localhost%s\n", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func paramsFromSettings(s config.SimulationSettings) core.SimulationParams {
	p := core.DefaultParams()
	p.GridSize = s.GridSize
	p.Shape = core.ParseShape(s.Shape)
	p.Material = core.MustMaterial(s.Material)
	p.ModeM, p.ModeN = s.ModeM, s.ModeN
	p.SecondaryM, p.SecondaryN = s.SecondaryM, s.SecondaryN
	p.Mix = s.Mix
	p.Damping = s.Damping
	p.FrequencyHz = s.FrequencyHz
	p.UseFrequencyMode = s.UseFrequencyMode
	p.ParticleCount = s.ParticleCount
	p.ParticleSpeed = s.ParticleSpeed
	p.Sanitize()
	return p
}

// resetPlate rebuilds the boundary mask and particle population after a
// geometry or population change. Callers hold host.mu except during
// single-threaded startup.
func resetPlate() {
	host.mask = simulation.GenerateMask(host.params.Shape, host.params.PolygonVertices, host.params.GridSize)
	host.particles = physics.Initialize(host.params.ParticleCount, host.params.GridSize, host.mask, host.rng)
}

func animationLoop(server config.ServerSettings) {
	interval := time.Duration(server.UpdateIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 45 * time.Millisecond
	}
	detectEvery := server.DetectEveryN
	if detectEvery <= 0 {
		detectEvery = 22
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastPrintTime := time.Now()

	for range ticker.C {
		frameStart := time.Now()
		frame := stepOnce(detectEvery)
		broadcastFrame(frame)

		if total := time.Since(frameStart); total > interval*2 {
			fmt.Printf("SLOW FRAME: %v (grid %d, %d particles)\n",
				total, frame.GridSize, len(frame.Particles))
		}
		if time.Since(lastPrintTime) > 10*time.Second {
			lastPrintTime = time.Now()
			fmt.Printf("TICK: phase=%.2f settled=%d/%d edgeDensity=%.3f\n",
				frame.Phase, frame.Stats.Settled, frame.Stats.Total, edgeDensityOf(frame.Detection))
		}
	}
}

func edgeDensityOf(d *detection.Result) float64 {
	if d == nil {
		return 0
	}
	return d.EdgeDensity
}

// stepOnce advances the phase, regenerates the field, moves the particles
// against it, and periodically re-runs detection.
func stepOnce(detectEvery int) frameMessage {
	host.mu.Lock()
	defer host.mu.Unlock()

	host.phase += phaseStep
	host.frameCount++

	result := simulation.Simulate(host.params, host.phase)

	next, err := physics.Update(host.particles, result.Field, 1.0, host.params.ParticleSpeed, host.mask)
	if err != nil {
		// Mask and field drifted apart after a geometry change; rebuild.
		log.Println("particle update:", err)
		resetPlate()
	} else {
		host.particles = next
	}

	if host.frameCount%detectEvery == 0 {
		if d, err := detection.Detect(result); err == nil {
			host.detection = d
		}
	}

	frame := frameMessage{
		Type:       "frame",
		Phase:      host.phase,
		GridSize:   host.params.GridSize,
		Shape:      host.params.Shape.String(),
		Material:   host.params.Material.Name,
		Normalized: result.Normalized,
		Stats:      physics.GetStatistics(host.particles),
		Detection:  host.detection,
	}
	frame.Particles = make([][2]float64, host.particles.Count())
	for i, pos := range host.particles.Positions {
		frame.Particles[i] = [2]float64{pos.X, pos.Y}
	}
	return frame
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	session := &client{id: uuid.New()}
	clientsMutex.Lock()
	clients[conn] = session
	clientsMutex.Unlock()
	defer func() {
		clientsMutex.Lock()
		delete(clients, conn)
		clientsMutex.Unlock()
	}()

	names := make([]string, len(core.Materials))
	for i, m := range core.Materials {
		names[i] = m.Name
	}
	session.mu.Lock()
	err = conn.WriteJSON(helloMessage{Type: "hello", SessionID: session.id.String(), Materials: names})
	session.mu.Unlock()
	if err != nil {
		return
	}
	fmt.Printf("Client connected: %s\n", session.id)

	for {
		var update paramUpdate
		if err := conn.ReadJSON(&update); err != nil {
			log.Println("WebSocket read error:", err)
			break
		}
		applyUpdate(update)
	}
}

// applyUpdate folds a client message into the running parameters,
// re-deriving the mask and particles when geometry or population changed.
func applyUpdate(u paramUpdate) {
	host.mu.Lock()
	defer host.mu.Unlock()

	geometryChanged := false
	if u.Shape != nil {
		shape := core.ParseShape(*u.Shape)
		if shape != host.params.Shape {
			host.params.Shape = shape
			geometryChanged = true
		}
	}
	if u.Material != nil {
		host.params.Material = core.MustMaterial(*u.Material)
	}
	if u.ModeM != nil {
		host.params.ModeM = *u.ModeM
	}
	if u.ModeN != nil {
		host.params.ModeN = *u.ModeN
	}
	if u.SecondaryM != nil {
		host.params.SecondaryM = *u.SecondaryM
	}
	if u.SecondaryN != nil {
		host.params.SecondaryN = *u.SecondaryN
	}
	if u.Mix != nil {
		host.params.Mix = *u.Mix
	}
	if u.Damping != nil {
		host.params.Damping = *u.Damping
	}
	if u.FrequencyHz != nil {
		host.params.FrequencyHz = *u.FrequencyHz
	}
	if u.UseFrequencyMode != nil {
		host.params.UseFrequencyMode = *u.UseFrequencyMode
	}
	if u.ParticleSpeed != nil {
		host.params.ParticleSpeed = *u.ParticleSpeed
	}
	if u.ParticleCount != nil && *u.ParticleCount != host.params.ParticleCount {
		host.params.ParticleCount = *u.ParticleCount
		geometryChanged = true
	}
	host.params.Sanitize()
	if geometryChanged {
		resetPlate()
	}
}

func broadcastFrame(frame frameMessage) {
	clientsMutex.RLock()
	clientsToRemove := []*websocket.Conn{}
	for conn, session := range clients {
		session.mu.Lock()
		err := conn.WriteJSON(frame)
		session.mu.Unlock()
		if err != nil {
			log.Println("WebSocket write error:", err)
			conn.Close()
			clientsToRemove = append(clientsToRemove, conn)
		}
	}
	clientsMutex.RUnlock()

	if len(clientsToRemove) > 0 {
		clientsMutex.Lock()
		for _, conn := range clientsToRemove {
			delete(clients, conn)
		}
		clientsMutex.Unlock()
	}
}
