package gradient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorGrayscaleOpaque(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Grayscale = true
	cfg.NoTransparency = true

	gen, err := NewGenerator(cfg, 1)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		g := gen.Random()
		assert.Equal(t, []ColorKey{{Time: 0, Color: Black}, {Time: 1, Color: White}}, g.ColorKeys())
		assert.Equal(t, []AlphaKey{{Time: 0, Alpha: 1}, {Time: 1, Alpha: 1}}, g.AlphaKeys())
	}
}

func TestGeneratorRespectsConstraints(t *testing.T) {
	cfg := GeneratorConfig{
		MinColorKeys:       3,
		MaxColorKeys:       6,
		ColorTimeDeviation: 0.09,
		MinAlphaKeys:       2,
		MaxAlphaKeys:       4,
		AlphaTimeDeviation: 0.1,
	}
	gen, err := NewGenerator(cfg, 42)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		g := gen.Random()
		colors := g.ColorKeys()
		alphas := g.AlphaKeys()
		require.GreaterOrEqual(t, len(colors), 3)
		require.LessOrEqual(t, len(colors), 6)
		require.GreaterOrEqual(t, len(alphas), 2)
		require.LessOrEqual(t, len(alphas), 4)

		// Every generated gradient satisfies New's invariants.
		_, err := New(colors, alphas, g.Mode())
		require.NoError(t, err)

		for _, k := range alphas {
			require.GreaterOrEqual(t, k.Alpha, 0.0)
			require.LessOrEqual(t, k.Alpha, 1.0)
		}
	}
}

func TestGeneratorIsSeeded(t *testing.T) {
	a, err := NewGenerator(DefaultGeneratorConfig(), 9)
	require.NoError(t, err)
	b, err := NewGenerator(DefaultGeneratorConfig(), 9)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Random().String(), b.Random().String())
	}
}

func TestGeneratorConfigValidate(t *testing.T) {
	require.NoError(t, DefaultGeneratorConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*GeneratorConfig)
	}{
		{"single color key", func(c *GeneratorConfig) { c.MinColorKeys = 1 }},
		{"max below min", func(c *GeneratorConfig) { c.MinColorKeys = 4; c.MaxColorKeys = 3 }},
		{"too many keys", func(c *GeneratorConfig) { c.MaxColorKeys = MaxKeys + 1 }},
		{"negative deviation", func(c *GeneratorConfig) { c.ColorTimeDeviation = -0.1 }},
		{"overlapping deviation", func(c *GeneratorConfig) { c.ColorTimeDeviation = 0.2 }},
		{"single middle key reaching an endpoint", func(c *GeneratorConfig) {
			c.MaxColorKeys = 3
			c.ColorTimeDeviation = 0.5
		}},
		{"single alpha key", func(c *GeneratorConfig) { c.NoTransparency = false; c.MinAlphaKeys = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGeneratorConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
			_, err := NewGenerator(cfg, 1)
			assert.Error(t, err)
		})
	}

	// Forced channels skip their key-count checks.
	cfg := DefaultGeneratorConfig()
	cfg.Grayscale = true
	cfg.MinColorKeys = 0
	assert.NoError(t, cfg.Validate())
}

func TestGeneratorSingleMiddleKeyDeviation(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.MinColorKeys = 3
	cfg.MaxColorKeys = 3
	cfg.ColorTimeDeviation = 0.3
	require.NoError(t, cfg.Validate())

	gen, err := NewGenerator(cfg, 5)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		g := gen.Random()
		_, err := New(g.ColorKeys(), g.AlphaKeys(), g.Mode())
		require.NoError(t, err, "generated keys must form a valid gradient")

		keys := g.ColorKeys()
		require.Len(t, keys, 3)
		assert.Greater(t, keys[1].Time, 0.0)
		assert.Less(t, keys[1].Time, 1.0)
	}

	// two middle keys still use the half spacing rule
	cfg.MaxColorKeys = 4
	assert.Error(t, cfg.Validate())
}
