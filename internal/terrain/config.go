// Package terrain builds height-displaced grid meshes from fractal noise.
package terrain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxVertices bounds the vertex count of a single mesh.
const MaxVertices = 1 << 22

// ColorOrder selects which sample feeds the vertex color gradient.
type ColorOrder int

const (
	// ColorAfterAmplitude colors by the final vertex height.
	ColorAfterAmplitude ColorOrder = iota
	// ColorBeforeAmplitude colors by the normalized noise sample.
	ColorBeforeAmplitude
)

func (o ColorOrder) String() string {
	if o == ColorBeforeAmplitude {
		return "before"
	}
	return "after"
}

// ParseColorOrder parses "before" or "after" (empty means after).
func ParseColorOrder(s string) (ColorOrder, error) {
	switch s {
	case "", "after":
		return ColorAfterAmplitude, nil
	case "before":
		return ColorBeforeAmplitude, nil
	}
	return 0, fmt.Errorf("unknown color order %q", s)
}

// ScrollConfig moves the noise offset by Delta every Interval.
type ScrollConfig struct {
	Enabled  bool
	Interval time.Duration
	Delta    mgl64.Vec3
}

// Config holds all terrain parameters.
type Config struct {
	XCount  int
	ZCount  int
	Spacing float64

	// Offset and Rotation (degrees) place the grid in noise space.
	Offset   mgl64.Vec3
	Rotation mgl64.Vec3

	Fractal    noise.FractalParams
	Dimensions int
	Family     noise.Family

	Amplitude float64
	// Damping divides Amplitude by the base frequency.
	Damping bool

	Gradient   *gradient.Gradient
	ColorOrder ColorOrder

	Scroll ScrollConfig
}

// DefaultConfig returns a 20x20 perlin grid scrolling slowly along X.
func DefaultConfig() Config {
	fractal := noise.DefaultFractalParams()
	fractal.Frequency = 0.3
	return Config{
		XCount:     20,
		ZCount:     20,
		Spacing:    1,
		Fractal:    fractal,
		Dimensions: 2,
		Family:     noise.Perlin,
		Amplitude:  1,
		Scroll: ScrollConfig{
			Interval: 250 * time.Millisecond,
			Delta:    mgl64.Vec3{0.1, 0, 0},
		},
	}
}

// Validate checks the configuration before any sampling happens.
func (c Config) Validate() error {
	if c.XCount < 1 || c.ZCount < 1 {
		return fmt.Errorf("grid must have at least one cell per axis, got %dx%d", c.XCount, c.ZCount)
	}
	if (c.XCount+1)*(c.ZCount+1) > MaxVertices {
		return fmt.Errorf("grid %dx%d exceeds %d vertices", c.XCount, c.ZCount, MaxVertices)
	}
	if !finite(c.Spacing) || c.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %v", c.Spacing)
	}
	if !finite(c.Amplitude) {
		return errors.New("amplitude must be finite")
	}
	for i := 0; i < 3; i++ {
		if !finite(c.Offset[i]) || !finite(c.Rotation[i]) {
			return errors.New("offset and rotation must be finite")
		}
	}
	if err := c.Fractal.Validate(); err != nil {
		return fmt.Errorf("invalid fractal params: %w", err)
	}
	if c.Scroll.Enabled && c.Scroll.Interval <= 0 {
		return fmt.Errorf("scroll interval must be positive, got %s", c.Scroll.Interval)
	}
	return nil
}

// Size returns the mesh extent along X and Z.
func (c Config) Size() (float64, float64) {
	return float64(c.XCount) * c.Spacing, float64(c.ZCount) * c.Spacing
}

func (c Config) amplitude() float64 {
	if c.Damping {
		return c.Amplitude / c.Fractal.Frequency
	}
	return c.Amplitude
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
