package texture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrNotCreated is returned when refreshing before Create or after Destroy.
var ErrNotCreated = errors.New("texture not created")

// Creator owns a texture and refreshes it from noise. It is not safe for
// concurrent use; drive it from a single goroutine.
type Creator struct {
	cfg      Config
	table    *noise.Table
	method   noise.Method
	receiver Receiver
	logger   *slog.Logger

	generator *gradient.Generator
	gradient  *gradient.Gradient
	// configured is set while gradient comes from Config.Gradient.
	configured bool

	// drift state
	from, to *gradient.Gradient
	lerpTime float64

	texture    *image.NRGBA
	created    bool
	generation uint64
}

// New validates cfg and resolves its noise method from table.
func New(cfg Config, table *noise.Table, receiver Receiver, logger *slog.Logger) (*Creator, error) {
	if table == nil {
		return nil, errors.New("noise table is required")
	}
	c := &Creator{
		table:    table,
		receiver: receiver,
		logger:   logger,
	}
	if err := c.apply(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Creator) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func (c *Creator) apply(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid texture config: %w", err)
	}
	method, err := c.table.Lookup(cfg.Family, cfg.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to resolve noise method: %w", err)
	}

	var gen *gradient.Generator
	if cfg.Gradient == nil || cfg.Drift.Enabled {
		gen, err = gradient.NewGenerator(cfg.Generator, cfg.Seed)
		if err != nil {
			return fmt.Errorf("failed to create gradient generator: %w", err)
		}
	}

	c.cfg = cfg
	c.method = method
	c.generator = gen
	c.from, c.to, c.lerpTime = nil, nil, 0
	switch {
	case cfg.Gradient != nil:
		c.gradient = cfg.Gradient
		c.configured = true
	case c.gradient == nil || c.configured:
		c.gradient = gen.Random()
		c.configured = false
	}
	return nil
}

// Config returns the current configuration, including scrolled offsets.
func (c *Creator) Config() Config { return c.cfg }

// Gradient returns the gradient used by the last refresh.
func (c *Creator) Gradient() *gradient.Gradient { return c.gradient }

// LerpTime returns the drift progress towards the next gradient.
func (c *Creator) LerpTime() float64 { return c.lerpTime }

// Texture returns the last committed texture, or nil before Create.
func (c *Creator) Texture() *image.NRGBA { return c.texture }

// Generation counts completed refreshes.
func (c *Creator) Generation() uint64 { return c.generation }

// Created reports whether the texture is live.
func (c *Creator) Created() bool { return c.created }

// Create fills the texture for the first time.
func (c *Creator) Create() error {
	if c.created {
		return nil
	}
	c.created = true
	if err := c.Refresh(); err != nil {
		c.created = false
		return err
	}
	return nil
}

// Destroy releases the texture.
func (c *Creator) Destroy() {
	c.created = false
	c.texture = nil
}

// SetConfig replaces the configuration and refreshes when created. Drift
// restarts from the current gradient. Clearing Config.Gradient draws a random
// gradient; a random gradient already in use is kept. On error the previous configuration
// stays in effect.
func (c *Creator) SetConfig(cfg Config) error {
	if err := c.apply(cfg); err != nil {
		return err
	}
	if !c.created {
		return nil
	}
	return c.Refresh()
}

// RandomizeOffsets picks each offset axis uniformly within the offset range.
func (c *Creator) RandomizeOffsets(rng *rand.Rand) {
	r := c.cfg.OffsetRange
	for i := 0; i < 3; i++ {
		c.cfg.Offset[i] = (rng.Float64()*2 - 1) * r
	}
}

// RandomizeRotation picks each rotation axis uniformly in [0, range).
func (c *Creator) RandomizeRotation(rng *rand.Rand) {
	for i := 0; i < 3; i++ {
		c.cfg.Rotation[i] = rng.Float64() * c.cfg.RotationRange
	}
}

// Refresh fills a new buffer and hands it to the receiver once complete.
func (c *Creator) Refresh() error {
	if !c.created {
		return ErrNotCreated
	}
	start := time.Now()
	img := Fill(c.cfg, c.method, c.gradient)
	c.texture = img
	c.generation++

	c.log().Debug("Texture refreshed",
		"generation", c.generation,
		"resolution", c.cfg.Resolution,
		"duration", time.Since(start))

	if c.receiver == nil {
		return nil
	}
	if err := c.receiver.ReceiveTexture(img); err != nil {
		return fmt.Errorf("failed to commit texture: %w", err)
	}
	return nil
}

// Tick advances drift and scroll by elapsed and refreshes when either is
// enabled.
func (c *Creator) Tick(elapsed time.Duration) error {
	if !c.created || !c.cfg.Animated() {
		return nil
	}
	dt := elapsed.Seconds()
	if c.cfg.Drift.Enabled {
		if err := c.drift(dt); err != nil {
			return err
		}
	}
	if c.cfg.Scroll.Enabled {
		c.scroll(dt)
	}
	return c.Refresh()
}

func (c *Creator) drift(dt float64) error {
	if c.from == nil {
		c.from = c.gradient
	}
	if c.to == nil {
		c.to = c.generator.Random()
	}
	g, err := gradient.Lerp(c.from, c.to, c.lerpTime, gradient.AllChannels)
	if err != nil {
		return fmt.Errorf("failed to lerp gradient: %w", err)
	}
	c.gradient = g

	c.lerpTime += c.cfg.Drift.StepSize * dt
	if c.lerpTime >= 1 {
		c.lerpTime = 0
		c.from = c.to
		c.to = c.generator.Random()
	}
	return nil
}

func (c *Creator) scroll(dt float64) {
	c.cfg.Offset = wrapOffset(c.cfg.Offset.Add(c.cfg.Scroll.OffsetVelocity.Mul(dt)), c.cfg.OffsetRange)
	c.cfg.Rotation = wrapRotation(c.cfg.Rotation.Add(c.cfg.Scroll.RotationVelocity.Mul(dt)), c.cfg.RotationRange)
}

// wrapOffset snaps an axis that left [-bound, bound] to the opposite bound.
func wrapOffset(v mgl64.Vec3, bound float64) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		switch {
		case v[i] > bound:
			v[i] = -bound
		case v[i] < -bound:
			v[i] = bound
		}
	}
	return v
}

// wrapRotation resets an axis whose magnitude exceeds bound to zero.
func wrapRotation(v mgl64.Vec3, bound float64) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if v[i] > bound || v[i] < -bound {
			v[i] = 0
		}
	}
	return v
}
