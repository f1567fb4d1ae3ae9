// Package texture fills square pixel buffers from fractal noise and a color
// gradient, optionally animated by scrolling and gradient drift.
package texture

import (
	"errors"
	"fmt"
	"math"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/go-gl/mathgl/mgl64"
)

// Resolution limits.
const (
	MinResolution = 2
	MaxResolution = 4096
)

// Default wrap bounds. Offsets beyond DefaultOffsetRange lose float precision
// in the noise lattice.
const (
	DefaultOffsetRange   = 25000
	DefaultRotationRange = 360
)

// ScrollConfig moves offset and rotation continuously, in units per second.
type ScrollConfig struct {
	Enabled          bool
	OffsetVelocity   mgl64.Vec3
	RotationVelocity mgl64.Vec3
}

// DriftConfig blends towards freshly generated gradients. StepSize is the
// lerp time advanced per second.
type DriftConfig struct {
	Enabled  bool
	StepSize float64
}

// Config holds all texture parameters.
type Config struct {
	Resolution int

	Offset   mgl64.Vec3
	Rotation mgl64.Vec3

	Fractal    noise.FractalParams
	Dimensions int
	Family     noise.Family

	// Gradient colors the texture. When nil a random gradient is drawn from
	// the generator, unless a random one is already in use.
	Gradient  *gradient.Gradient
	Generator gradient.GeneratorConfig
	Seed      int64

	Scroll ScrollConfig
	Drift  DriftConfig

	OffsetRange   float64
	RotationRange float64
}

// DefaultConfig returns a 256px, single octave, 3D perlin texture.
func DefaultConfig() Config {
	return Config{
		Resolution:    256,
		Fractal:       noise.DefaultFractalParams(),
		Dimensions:    3,
		Family:        noise.Perlin,
		Generator:     gradient.DefaultGeneratorConfig(),
		Drift:         DriftConfig{StepSize: 0.01},
		OffsetRange:   DefaultOffsetRange,
		RotationRange: DefaultRotationRange,
	}
}

// Validate checks the configuration before any sampling happens.
func (c Config) Validate() error {
	if c.Resolution < MinResolution || c.Resolution > MaxResolution {
		return fmt.Errorf("resolution must be within [%d,%d], got %d", MinResolution, MaxResolution, c.Resolution)
	}
	if err := c.Fractal.Validate(); err != nil {
		return fmt.Errorf("invalid fractal params: %w", err)
	}
	if c.Gradient == nil || c.Drift.Enabled {
		if err := c.Generator.Validate(); err != nil {
			return fmt.Errorf("invalid gradient generator: %w", err)
		}
	}
	if c.Drift.Enabled && (!finite(c.Drift.StepSize) || c.Drift.StepSize < 0) {
		return fmt.Errorf("drift step size must be non-negative, got %v", c.Drift.StepSize)
	}
	if !finite(c.OffsetRange) || c.OffsetRange <= 0 {
		return fmt.Errorf("offset range must be positive, got %v", c.OffsetRange)
	}
	if !finite(c.RotationRange) || c.RotationRange <= 0 {
		return fmt.Errorf("rotation range must be positive, got %v", c.RotationRange)
	}
	for i := 0; i < 3; i++ {
		if !finite(c.Offset[i]) || !finite(c.Rotation[i]) ||
			!finite(c.Scroll.OffsetVelocity[i]) || !finite(c.Scroll.RotationVelocity[i]) {
			return errors.New("offset, rotation and scroll velocities must be finite")
		}
	}
	return nil
}

// Animated reports whether Tick changes the texture.
func (c Config) Animated() bool {
	return c.Scroll.Enabled || c.Drift.Enabled
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
