package gradient

import (
	"fmt"
	"math"
	"math/rand"
)

// GeneratorConfig constrains randomly generated gradients.
type GeneratorConfig struct {
	// Grayscale forces a black to white color ramp.
	Grayscale          bool
	MinColorKeys       int
	MaxColorKeys       int
	ColorTimeDeviation float64

	// NoTransparency forces two fully opaque alpha keys.
	NoTransparency     bool
	MinAlphaKeys       int
	MaxAlphaKeys       int
	AlphaTimeDeviation float64

	Mode Mode
}

// DefaultGeneratorConfig returns colorful, fully opaque gradients with two to
// five color keys.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MinColorKeys:       2,
		MaxColorKeys:       5,
		ColorTimeDeviation: 0.05,
		NoTransparency:     true,
		MinAlphaKeys:       2,
		MaxAlphaKeys:       2,
		AlphaTimeDeviation: 0,
		Mode:               Blend,
	}
}

// Validate rejects key counts below two and deviations that would let
// middle keys collide or swap order.
func (c GeneratorConfig) Validate() error {
	if !c.Grayscale {
		if err := checkKeyRange("color", c.MinColorKeys, c.MaxColorKeys, c.ColorTimeDeviation); err != nil {
			return err
		}
	}
	if !c.NoTransparency {
		if err := checkKeyRange("alpha", c.MinAlphaKeys, c.MaxAlphaKeys, c.AlphaTimeDeviation); err != nil {
			return err
		}
	}
	if c.Mode != Blend && c.Mode != Fixed {
		return fmt.Errorf("unknown gradient mode %d", int(c.Mode))
	}
	return nil
}

func checkKeyRange(channel string, minKeys, maxKeys int, deviation float64) error {
	if minKeys < 2 {
		return fmt.Errorf("%w: min %s keys must be at least 2, got %d", ErrInvalidKeys, channel, minKeys)
	}
	if maxKeys < minKeys {
		return fmt.Errorf("%w: max %s keys (%d) must be >= min (%d)", ErrInvalidKeys, channel, maxKeys, minKeys)
	}
	if maxKeys > MaxKeys {
		return fmt.Errorf("%w: max %s keys must be at most %d, got %d", ErrInvalidKeys, channel, MaxKeys, maxKeys)
	}
	if deviation < 0 || deviation > 1 {
		return fmt.Errorf("%s time deviation must be within [0,1], got %v", channel, deviation)
	}
	// Middle keys only exist with three or more keys. A single middle key only
	// has to stay off the endpoints; neighbouring middle keys must not meet.
	limit := math.Inf(1)
	switch {
	case maxKeys == 3:
		limit = 0.5
	case maxKeys > 3:
		limit = 1 / float64(maxKeys-1) / 2
	}
	if deviation >= limit {
		return fmt.Errorf("%s time deviation %v must be below %v for %d keys", channel, deviation, limit, maxKeys)
	}
	return nil
}

// Generator produces random gradients. It is not safe for concurrent use.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator validates cfg and seeds a generator.
func NewGenerator(cfg GeneratorConfig, seed int64) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gradient generator config: %w", err)
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}, nil
}

// Config returns the generator's constraints.
func (g *Generator) Config() GeneratorConfig { return g.cfg }

// Random returns a new gradient within the configured constraints.
func (g *Generator) Random() *Gradient {
	return &Gradient{
		colors: g.colorKeys(),
		alphas: g.alphaKeys(),
		mode:   g.cfg.Mode,
	}
}

func (g *Generator) colorKeys() []ColorKey {
	if g.cfg.Grayscale {
		return []ColorKey{{Time: 0, Color: Black}, {Time: 1, Color: White}}
	}
	n := g.count(g.cfg.MinColorKeys, g.cfg.MaxColorKeys)
	keys := make([]ColorKey, n)
	for i := range keys {
		keys[i] = ColorKey{
			Time:  g.keyTime(i, n, g.cfg.ColorTimeDeviation),
			Color: RGB{R: g.rng.Float64(), G: g.rng.Float64(), B: g.rng.Float64()},
		}
	}
	return keys
}

func (g *Generator) alphaKeys() []AlphaKey {
	if g.cfg.NoTransparency {
		return []AlphaKey{{Time: 0, Alpha: 1}, {Time: 1, Alpha: 1}}
	}
	n := g.count(g.cfg.MinAlphaKeys, g.cfg.MaxAlphaKeys)
	keys := make([]AlphaKey, n)
	for i := range keys {
		keys[i] = AlphaKey{
			Time:  g.keyTime(i, n, g.cfg.AlphaTimeDeviation),
			Alpha: g.rng.Float64(),
		}
	}
	return keys
}

func (g *Generator) count(minKeys, maxKeys int) int {
	return minKeys + g.rng.Intn(maxKeys-minKeys+1)
}

// keyTime pins the first and last keys to 0 and 1 and jitters the rest
// around even spacing.
func (g *Generator) keyTime(i, n int, deviation float64) float64 {
	switch i {
	case 0:
		return 0
	case n - 1:
		return 1
	}
	spacing := 1 / float64(n-1)
	jitter := (g.rng.Float64()*2 - 1) * deviation
	return clamp01(float64(i)*spacing + jitter)
}
