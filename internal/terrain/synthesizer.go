package terrain

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/go-gl/mathgl/mgl64"
)

// OffsetRange bounds RandomizeOffsets.
const OffsetRange = 1_000_000

// ErrNotCreated is returned when building before Create or after Destroy.
var ErrNotCreated = errors.New("terrain not created")

// State is the synthesizer lifecycle state.
type State int

const (
	Idle State = iota
	Building
	Ready
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Synthesizer owns a mesh buffer and rebuilds it from noise. It is not safe
// for concurrent use; drive it from a single goroutine.
type Synthesizer struct {
	cfg     Config
	table   *noise.Table
	method  noise.Method
	surface Surface
	logger  *slog.Logger

	mesh       *Mesh
	state      State
	generation uint64

	scrolling   bool
	sinceScroll time.Duration
}

// New validates cfg and resolves its noise method from table.
func New(cfg Config, table *noise.Table, surface Surface, logger *slog.Logger) (*Synthesizer, error) {
	if table == nil {
		return nil, errors.New("noise table is required")
	}
	s := &Synthesizer{
		table:   table,
		surface: surface,
		logger:  logger,
	}
	if err := s.apply(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Synthesizer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Synthesizer) apply(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid terrain config: %w", err)
	}
	method, err := s.table.Lookup(cfg.Family, cfg.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to resolve noise method: %w", err)
	}
	s.cfg = cfg
	s.method = method
	return nil
}

// Config returns the current configuration.
func (s *Synthesizer) Config() Config { return s.cfg }

// State returns the lifecycle state.
func (s *Synthesizer) State() State { return s.state }

// Generation counts completed builds since construction.
func (s *Synthesizer) Generation() uint64 { return s.generation }

// Mesh returns the last published mesh, or nil before the first build.
// The mesh is overwritten by the next build.
func (s *Synthesizer) Mesh() *Mesh { return s.mesh }

// Size returns the mesh extent along X and Z.
func (s *Synthesizer) Size() (float64, float64) { return s.cfg.Size() }

// Scrolling reports whether the scroll loop is active.
func (s *Synthesizer) Scrolling() bool { return s.scrolling }

// Create builds the first mesh. When the config enables scrolling the loop
// starts as well.
func (s *Synthesizer) Create() error {
	if s.state != Idle {
		return nil
	}
	s.state = Ready
	if err := s.Rebuild(); err != nil {
		s.state = Idle
		return err
	}
	if s.cfg.Scroll.Enabled {
		s.StartScroll()
	}
	return nil
}

// Destroy stops scrolling and releases the mesh buffer.
func (s *Synthesizer) Destroy() {
	s.StopScroll()
	s.mesh = nil
	s.state = Idle
}

// SetConfig replaces the configuration and rebuilds when created. On error
// the previous configuration stays in effect.
func (s *Synthesizer) SetConfig(cfg Config) error {
	prev := s.cfg.Scroll.Enabled
	if err := s.apply(cfg); err != nil {
		return err
	}
	if s.state == Idle {
		return nil
	}
	switch {
	case cfg.Scroll.Enabled && !prev:
		s.StartScroll()
	case !cfg.Scroll.Enabled && prev:
		s.StopScroll()
	}
	return s.Rebuild()
}

// RandomizeOffsets moves the grid to a random spot in the noise plane.
func (s *Synthesizer) RandomizeOffsets(rng *rand.Rand) {
	s.cfg.Offset[0] = (rng.Float64()*2 - 1) * OffsetRange
	s.cfg.Offset[1] = (rng.Float64()*2 - 1) * OffsetRange
}

// Rebuild resamples every vertex and publishes the mesh to the surface.
func (s *Synthesizer) Rebuild() error {
	if s.state == Idle {
		return ErrNotCreated
	}
	start := time.Now()
	s.state = Building

	resized := s.allocate()
	s.sample()
	s.mesh.recalculateNormals()
	s.mesh.recalculateBounds()

	s.state = Ready
	s.generation++

	s.log().Debug("Terrain rebuilt",
		"generation", s.generation,
		"vertices", s.mesh.VertexCount(),
		"reallocated", resized,
		"duration", time.Since(start))

	if s.surface == nil {
		return nil
	}
	if err := s.surface.ReceiveMesh(s.mesh); err != nil {
		return fmt.Errorf("failed to publish mesh: %w", err)
	}
	return nil
}

// allocate sizes the buffers for the current grid and reports whether new
// arrays were needed.
func (s *Synthesizer) allocate() bool {
	vertices := (s.cfg.XCount + 1) * (s.cfg.ZCount + 1)
	wantColors := s.cfg.Gradient != nil
	if s.mesh != nil && len(s.mesh.Positions) == vertices &&
		len(s.mesh.Triangles) == s.cfg.XCount*s.cfg.ZCount*6 {
		switch {
		case wantColors && s.mesh.Colors == nil:
			s.mesh.Colors = make([]gradient.Color, vertices)
		case !wantColors:
			s.mesh.Colors = nil
		}
		return false
	}

	m := &Mesh{
		Positions: make([]mgl64.Vec3, vertices),
		Normals:   make([]mgl64.Vec3, vertices),
		Triangles: Triangulate(s.cfg.XCount, s.cfg.ZCount),
	}
	if wantColors {
		m.Colors = make([]gradient.Color, vertices)
	}
	s.mesh = m
	return true
}

func (s *Synthesizer) sample() {
	cfg := s.cfg
	transform := noise.NewTransform(cfg.Rotation, cfg.Offset)
	span := cfg.Family.Range()
	amplitude := cfg.amplitude()

	i := 0
	for z := 0; z <= cfg.ZCount; z++ {
		for x := 0; x <= cfg.XCount; x++ {
			gx, gz := float64(x)*cfg.Spacing, float64(z)*cfg.Spacing
			point := transform.Apply(mgl64.Vec3{gx, gz, 0})
			centered := span.Center(cfg.Fractal.Sum(s.method, point))
			height := centered * amplitude
			s.mesh.Positions[i] = mgl64.Vec3{gx, height, gz}

			if cfg.Gradient != nil {
				t := height + 0.5
				if cfg.ColorOrder == ColorBeforeAmplitude {
					t = centered + 0.5
				}
				s.mesh.Colors[i] = cfg.Gradient.Evaluate(t)
			}
			i++
		}
	}
}

// StartScroll (re)starts the scroll loop. Any pending interval is discarded
// and the first step runs on the next Tick.
func (s *Synthesizer) StartScroll() {
	s.StopScroll()
	s.scrolling = true
	s.sinceScroll = s.cfg.Scroll.Interval
}

// StopScroll cancels the scroll loop.
func (s *Synthesizer) StopScroll() {
	s.scrolling = false
	s.sinceScroll = 0
}

// Tick advances the scroll timer by elapsed. When at least one interval has
// passed the offset moves by Delta per interval and the mesh is rebuilt once.
func (s *Synthesizer) Tick(elapsed time.Duration) error {
	if !s.scrolling || s.state == Idle {
		return nil
	}
	interval := s.cfg.Scroll.Interval
	if interval <= 0 {
		return nil
	}
	s.sinceScroll += elapsed
	steps := s.sinceScroll / interval
	if steps == 0 {
		return nil
	}
	s.sinceScroll -= steps * interval
	s.cfg.Offset = s.cfg.Offset.Add(s.cfg.Scroll.Delta.Mul(float64(steps)))
	return s.Rebuild()
}
