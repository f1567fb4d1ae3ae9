package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/terrain"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type flagBinding struct {
	key  string
	flag string
}

func bindFlags(flags *pflag.FlagSet, bindings []flagBinding) {
	for _, bf := range bindings {
		if err := viper.BindPFlag(bf.key, flags.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func formatVec3(v mgl64.Vec3) string {
	return fmt.Sprintf("%g,%g,%g", v[0], v[1], v[2])
}

// parseVec3 parses "x,y,z". Missing trailing components are zero.
func parseVec3(s string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	s = strings.TrimSpace(s)
	if s == "" {
		return v, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return v, fmt.Errorf("vector must have at most 3 components: %q", s)
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return v, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		v[i] = f
	}
	return v, nil
}

// addNoiseFlags registers the sampling flags under section.
func addNoiseFlags(flags *pflag.FlagSet, section string, family noise.Family, dims int, fractal noise.FractalParams) {
	flags.String("family", family.String(), "Noise family (value, perlin, simplex)")
	flags.Int("dimensions", dims, "Noise dimensions (1-3)")
	flags.Float64("frequency", fractal.Frequency, "Base frequency")
	flags.Int("octaves", fractal.Octaves, "Number of octaves (1-8)")
	flags.Float64("lacunarity", fractal.Lacunarity, "Frequency multiplier per octave (1-4)")
	flags.Float64("persistence", fractal.Persistence, "Amplitude multiplier per octave (0-1)")
	flags.String("offset", "0,0,0", "Noise space offset x,y,z")
	flags.String("rotation", "0,0,0", "Noise space rotation x,y,z in degrees")
	flags.Int64("seed", 1337, "Deterministic seed for noise tables and random gradients")

	bindFlags(flags, []flagBinding{
		{section + ".family", "family"},
		{section + ".dimensions", "dimensions"},
		{section + ".frequency", "frequency"},
		{section + ".octaves", "octaves"},
		{section + ".lacunarity", "lacunarity"},
		{section + ".persistence", "persistence"},
		{section + ".offset", "offset"},
		{section + ".rotation", "rotation"},
		{section + ".seed", "seed"},
	})
}

type noiseSettings struct {
	Family     noise.Family
	Dimensions int
	Fractal    noise.FractalParams
	Offset     mgl64.Vec3
	Rotation   mgl64.Vec3
	Seed       int64
}

func readNoise(section string) (noiseSettings, error) {
	family, err := noise.ParseFamily(viper.GetString(section + ".family"))
	if err != nil {
		return noiseSettings{}, err
	}
	offset, err := parseVec3(viper.GetString(section + ".offset"))
	if err != nil {
		return noiseSettings{}, fmt.Errorf("invalid offset: %w", err)
	}
	rotation, err := parseVec3(viper.GetString(section + ".rotation"))
	if err != nil {
		return noiseSettings{}, fmt.Errorf("invalid rotation: %w", err)
	}
	return noiseSettings{
		Family:     family,
		Dimensions: viper.GetInt(section + ".dimensions"),
		Fractal: noise.FractalParams{
			Frequency:   viper.GetFloat64(section + ".frequency"),
			Octaves:     viper.GetInt(section + ".octaves"),
			Lacunarity:  viper.GetFloat64(section + ".lacunarity"),
			Persistence: viper.GetFloat64(section + ".persistence"),
		},
		Offset:   offset,
		Rotation: rotation,
		Seed:     viper.GetInt64(section + ".seed"),
	}, nil
}

// addGradientFlags registers gradient and generator flags under section.
// An empty colors default means "no gradient" unless --random-gradient.
func addGradientFlags(flags *pflag.FlagSet, section, colors string) {
	def := gradient.DefaultGeneratorConfig()
	flags.String("colors", colors, "Gradient color keys t:#rrggbb,... (must include t=0 and t=1)")
	flags.String("alphas", "", "Gradient alpha keys t:a,... (default opaque)")
	flags.String("gradient-mode", gradient.Blend.String(), "Gradient mode (blend, fixed)")
	flags.Bool("random-gradient", false, "Generate a random gradient instead of --colors")
	flags.Bool("grayscale", def.Grayscale, "Random gradients run from black to white")
	flags.Int("min-color-keys", def.MinColorKeys, "Minimum color keys of random gradients")
	flags.Int("max-color-keys", def.MaxColorKeys, "Maximum color keys of random gradients")
	flags.Float64("color-deviation", def.ColorTimeDeviation, "Random jitter of color key times")
	flags.Bool("transparency", !def.NoTransparency, "Random gradients get random alpha keys")
	flags.Int("min-alpha-keys", def.MinAlphaKeys, "Minimum alpha keys of random gradients")
	flags.Int("max-alpha-keys", def.MaxAlphaKeys, "Maximum alpha keys of random gradients")
	flags.Float64("alpha-deviation", def.AlphaTimeDeviation, "Random jitter of alpha key times")

	bindFlags(flags, []flagBinding{
		{section + ".colors", "colors"},
		{section + ".alphas", "alphas"},
		{section + ".gradient_mode", "gradient-mode"},
		{section + ".random_gradient", "random-gradient"},
		{section + ".grayscale", "grayscale"},
		{section + ".min_color_keys", "min-color-keys"},
		{section + ".max_color_keys", "max-color-keys"},
		{section + ".color_deviation", "color-deviation"},
		{section + ".transparency", "transparency"},
		{section + ".min_alpha_keys", "min-alpha-keys"},
		{section + ".max_alpha_keys", "max-alpha-keys"},
		{section + ".alpha_deviation", "alpha-deviation"},
	})
}

// readGradient returns the configured gradient (nil when random or unset)
// and the generator constraints.
func readGradient(section string) (*gradient.Gradient, gradient.GeneratorConfig, error) {
	mode, err := gradient.ParseMode(viper.GetString(section + ".gradient_mode"))
	if err != nil {
		return nil, gradient.GeneratorConfig{}, err
	}
	gen := gradient.GeneratorConfig{
		Grayscale:          viper.GetBool(section + ".grayscale"),
		MinColorKeys:       viper.GetInt(section + ".min_color_keys"),
		MaxColorKeys:       viper.GetInt(section + ".max_color_keys"),
		ColorTimeDeviation: viper.GetFloat64(section + ".color_deviation"),
		NoTransparency:     !viper.GetBool(section + ".transparency"),
		MinAlphaKeys:       viper.GetInt(section + ".min_alpha_keys"),
		MaxAlphaKeys:       viper.GetInt(section + ".max_alpha_keys"),
		AlphaTimeDeviation: viper.GetFloat64(section + ".alpha_deviation"),
		Mode:               mode,
	}
	if err := gen.Validate(); err != nil {
		return nil, gen, err
	}

	colors := viper.GetString(section + ".colors")
	if viper.GetBool(section+".random_gradient") || colors == "" {
		return nil, gen, nil
	}
	g, err := gradient.Parse(colors, viper.GetString(section+".alphas"), mode)
	if err != nil {
		return nil, gen, fmt.Errorf("invalid gradient: %w", err)
	}
	return g, gen, nil
}

// addTextureFlags registers texture specific flags under section.
func addTextureFlags(flags *pflag.FlagSet, section string) {
	def := texture.DefaultConfig()
	flags.Int("resolution", def.Resolution, "Texture edge length in pixels")
	flags.String("scroll-offset", "0,0,0", "Offset velocity x,y,z per second")
	flags.String("scroll-rotation", "0,0,0", "Rotation velocity x,y,z in degrees per second")
	flags.Bool("drift", false, "Drift between random gradients over time")
	flags.Float64("drift-step", def.Drift.StepSize, "Gradient lerp time advanced per second")
	flags.Float64("offset-range", def.OffsetRange, "Offsets beyond ±range wrap to the opposite bound")

	bindFlags(flags, []flagBinding{
		{section + ".resolution", "resolution"},
		{section + ".scroll_offset", "scroll-offset"},
		{section + ".scroll_rotation", "scroll-rotation"},
		{section + ".drift", "drift"},
		{section + ".drift_step", "drift-step"},
		{section + ".offset_range", "offset-range"},
	})
}

func readTextureConfig(section string) (texture.Config, error) {
	cfg := texture.DefaultConfig()
	n, err := readNoise(section)
	if err != nil {
		return cfg, err
	}
	g, gen, err := readGradient(section)
	if err != nil {
		return cfg, err
	}
	scrollOffset, err := parseVec3(viper.GetString(section + ".scroll_offset"))
	if err != nil {
		return cfg, fmt.Errorf("invalid scroll offset: %w", err)
	}
	scrollRotation, err := parseVec3(viper.GetString(section + ".scroll_rotation"))
	if err != nil {
		return cfg, fmt.Errorf("invalid scroll rotation: %w", err)
	}

	cfg.Resolution = viper.GetInt(section + ".resolution")
	cfg.Family = n.Family
	cfg.Dimensions = n.Dimensions
	cfg.Fractal = n.Fractal
	cfg.Offset = n.Offset
	cfg.Rotation = n.Rotation
	cfg.Seed = n.Seed
	cfg.Gradient = g
	cfg.Generator = gen
	cfg.Scroll = texture.ScrollConfig{
		Enabled:          scrollOffset != (mgl64.Vec3{}) || scrollRotation != (mgl64.Vec3{}),
		OffsetVelocity:   scrollOffset,
		RotationVelocity: scrollRotation,
	}
	cfg.Drift = texture.DriftConfig{
		Enabled:  viper.GetBool(section + ".drift"),
		StepSize: viper.GetFloat64(section + ".drift_step"),
	}
	cfg.OffsetRange = viper.GetFloat64(section + ".offset_range")
	return cfg, cfg.Validate()
}

// addTerrainFlags registers grid flags under section.
func addTerrainFlags(flags *pflag.FlagSet, section string) {
	def := terrain.DefaultConfig()
	flags.Int("x-count", def.XCount, "Grid cells along X")
	flags.Int("z-count", def.ZCount, "Grid cells along Z")
	flags.Float64("spacing", def.Spacing, "Distance between vertices")
	flags.Float64("amplitude", def.Amplitude, "Height multiplier")
	flags.Bool("damping", def.Damping, "Divide amplitude by frequency")
	flags.String("color-order", def.ColorOrder.String(), "Color vertices by height (after) or raw noise (before)")
	flags.Bool("scroll", def.Scroll.Enabled, "Scroll the terrain through noise space")
	flags.Duration("scroll-interval", def.Scroll.Interval, "Time between scroll steps")
	flags.String("scroll-delta", formatVec3(def.Scroll.Delta), "Offset change x,y,z per scroll step")

	bindFlags(flags, []flagBinding{
		{section + ".x_count", "x-count"},
		{section + ".z_count", "z-count"},
		{section + ".spacing", "spacing"},
		{section + ".amplitude", "amplitude"},
		{section + ".damping", "damping"},
		{section + ".color_order", "color-order"},
		{section + ".scroll", "scroll"},
		{section + ".scroll_interval", "scroll-interval"},
		{section + ".scroll_delta", "scroll-delta"},
	})
}

func readTerrainConfig(section string) (terrain.Config, error) {
	cfg := terrain.DefaultConfig()
	n, err := readNoise(section)
	if err != nil {
		return cfg, err
	}
	g, gen, err := readGradient(section)
	if err != nil {
		return cfg, err
	}
	if g == nil && viper.GetBool(section+".random_gradient") {
		rg, err := gradient.NewGenerator(gen, n.Seed)
		if err != nil {
			return cfg, err
		}
		g = rg.Random()
	}
	order, err := terrain.ParseColorOrder(viper.GetString(section + ".color_order"))
	if err != nil {
		return cfg, err
	}
	delta, err := parseVec3(viper.GetString(section + ".scroll_delta"))
	if err != nil {
		return cfg, fmt.Errorf("invalid scroll delta: %w", err)
	}

	cfg.XCount = viper.GetInt(section + ".x_count")
	cfg.ZCount = viper.GetInt(section + ".z_count")
	cfg.Spacing = viper.GetFloat64(section + ".spacing")
	cfg.Offset = n.Offset
	cfg.Rotation = n.Rotation
	cfg.Fractal = n.Fractal
	cfg.Dimensions = n.Dimensions
	cfg.Family = n.Family
	cfg.Amplitude = viper.GetFloat64(section + ".amplitude")
	cfg.Damping = viper.GetBool(section + ".damping")
	cfg.Gradient = g
	cfg.ColorOrder = order
	cfg.Scroll = terrain.ScrollConfig{
		Enabled:  viper.GetBool(section + ".scroll"),
		Interval: viper.GetDuration(section + ".scroll_interval"),
		Delta:    delta,
	}
	return cfg, cfg.Validate()
}

func durationOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
