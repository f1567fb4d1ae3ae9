package noise

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Octave and lacunarity limits accepted by FractalParams.
const (
	MinOctaves    = 1
	MaxOctaves    = 8
	MinLacunarity = 1.0
	MaxLacunarity = 4.0
)

// FractalParams controls how octaves of a method are layered.
type FractalParams struct {
	Frequency   float64
	Octaves     int
	Lacunarity  float64
	Persistence float64
}

// DefaultFractalParams returns a single-octave setup at frequency 1.
func DefaultFractalParams() FractalParams {
	return FractalParams{
		Frequency:   1,
		Octaves:     1,
		Lacunarity:  2,
		Persistence: 0.5,
	}
}

// Validate rejects parameters that cannot produce a meaningful sum.
func (p FractalParams) Validate() error {
	if math.IsNaN(p.Frequency) || math.IsInf(p.Frequency, 0) || p.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive and finite, got %v", p.Frequency)
	}
	if p.Octaves < MinOctaves || p.Octaves > MaxOctaves {
		return fmt.Errorf("octaves must be within [%d,%d], got %d", MinOctaves, MaxOctaves, p.Octaves)
	}
	if p.Lacunarity < MinLacunarity || p.Lacunarity > MaxLacunarity {
		return fmt.Errorf("lacunarity must be within [%v,%v], got %v", MinLacunarity, MaxLacunarity, p.Lacunarity)
	}
	if p.Persistence < 0 || p.Persistence > 1 {
		return fmt.Errorf("persistence must be within [0,1], got %v", p.Persistence)
	}
	return nil
}

// Sum evaluates method with p's settings.
func (p FractalParams) Sum(method Method, point mgl64.Vec3) float64 {
	return Sum(method, point, p.Frequency, p.Octaves, p.Lacunarity, p.Persistence)
}

// Sum layers octaves of method at point. Each octave multiplies frequency by
// lacunarity and amplitude by persistence; the total is divided by the summed
// amplitudes so the result stays within the method's range.
func Sum(method Method, point mgl64.Vec3, frequency float64, octaves int, lacunarity, persistence float64) float64 {
	amplitude := 1.0
	total := 0.0
	norm := 0.0
	for o := 0; o < octaves; o++ {
		total += amplitude * method(point, frequency)
		norm += amplitude
		frequency *= lacunarity
		amplitude *= persistence
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}
