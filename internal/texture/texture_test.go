package texture

import (
	"bytes"
	"errors"
	"image"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sunset() *gradient.Gradient {
	return gradient.MustNew(
		[]gradient.ColorKey{
			{Time: 0, Color: gradient.RGB{B: 0.5}},
			{Time: 0.4, Color: gradient.RGB{R: 1}},
			{Time: 1, Color: gradient.RGB{R: 1, G: 1}},
		},
		[]gradient.AlphaKey{{Time: 0, Alpha: 1}, {Time: 1, Alpha: 1}},
		gradient.Blend,
	)
}

func constantTable(t *testing.T, f noise.Family, dims int, v float64) *noise.Table {
	t.Helper()
	table := noise.EmptyTable()
	require.NoError(t, table.Set(f, dims, func(mgl64.Vec3, float64) float64 { return v }))
	return table
}

func smallConfig(f noise.Family) Config {
	cfg := DefaultConfig()
	cfg.Resolution = 4
	cfg.Family = f
	cfg.Gradient = sunset()
	return cfg
}

func TestFill_ConstantMethod(t *testing.T) {
	tests := []struct {
		family noise.Family
		sample float64
		want   float64
	}{
		{noise.Value, 0.5, 0.5},
		{noise.Perlin, 0.5, 0.75},
		{noise.Simplex, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			cfg := smallConfig(tt.family)
			table := constantTable(t, tt.family, cfg.Dimensions, tt.sample)
			c, err := New(cfg, table, nil, nil)
			require.NoError(t, err)
			require.NoError(t, c.Create())

			img := c.Texture()
			require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
			want := cfg.Gradient.Evaluate(tt.want).NRGBA()
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					assert.Equal(t, want, img.NRGBAAt(x, y), "texel %d,%d", x, y)
				}
			}
		})
	}
}

func TestFill_TexelCenters(t *testing.T) {
	var points []mgl64.Vec3
	method := func(p mgl64.Vec3, _ float64) float64 {
		points = append(points, p)
		return 0.5
	}
	cfg := smallConfig(noise.Value)
	cfg.Resolution = 2
	cfg.Offset = mgl64.Vec3{10, 20, 30}
	Fill(cfg, method, cfg.Gradient)

	require.Len(t, points, 4)
	want := []mgl64.Vec3{
		{9.75, 19.75, 30},
		{10.25, 19.75, 30},
		{9.75, 20.25, 30},
		{10.25, 20.25, 30},
	}
	for i := range want {
		assert.InDelta(t, 0, points[i].Sub(want[i]).Len(), 1e-12, "point %d", i)
	}
}

func TestFill_RowsGrowUpward(t *testing.T) {
	// sample rises with noise-space y
	method := func(p mgl64.Vec3, _ float64) float64 { return p[1] + 0.5 }
	cfg := smallConfig(noise.Value)
	cfg.Gradient = gradient.Grayscale()
	img := Fill(cfg, method, cfg.Gradient)

	top := img.NRGBAAt(0, 0).R
	bottom := img.NRGBAAt(0, 3).R
	assert.Greater(t, top, bottom)
}

func TestCorners_Rotation(t *testing.T) {
	c := Corners(mgl64.Vec3{0, 0, 90}, mgl64.Vec3{})
	assert.InDelta(t, 0, c[0].Sub(mgl64.Vec3{0.5, -0.5, 0}).Len(), 1e-12)
	assert.InDelta(t, 0, c[3].Sub(mgl64.Vec3{-0.5, 0.5, 0}).Len(), 1e-12)
}

func TestNew_Errors(t *testing.T) {
	table := noise.NewTable(1)
	tests := []struct {
		name   string
		modify func(*Config)
		is     error
	}{
		{"resolution too small", func(c *Config) { c.Resolution = 1 }, nil},
		{"resolution too large", func(c *Config) { c.Resolution = MaxResolution + 1 }, nil},
		{"negative octaves", func(c *Config) { c.Fractal.Octaves = -1 }, nil},
		{"bad generator", func(c *Config) {
			c.Gradient = nil
			c.Generator.MinColorKeys = 1
		}, gradient.ErrInvalidKeys},
		{"zero offset range", func(c *Config) { c.OffsetRange = 0 }, nil},
		{"nan velocity", func(c *Config) { c.Scroll.OffsetVelocity[1] = math.NaN() }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(noise.Perlin)
			tt.modify(&cfg)
			_, err := New(cfg, table, nil, nil)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}

	_, err := New(smallConfig(noise.Simplex), noise.EmptyTable(), nil, nil)
	assert.ErrorIs(t, err, noise.ErrMethodNotFound)
}

func TestLifecycle(t *testing.T) {
	c, err := New(smallConfig(noise.Perlin), noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Refresh(), ErrNotCreated)

	require.NoError(t, c.Create())
	assert.True(t, c.Created())
	assert.Equal(t, uint64(1), c.Generation())

	c.Destroy()
	assert.Nil(t, c.Texture())
	assert.ErrorIs(t, c.Refresh(), ErrNotCreated)
}

func TestRefresh_CommitsNewBuffer(t *testing.T) {
	var got []*image.NRGBA
	recv := ReceiverFunc(func(img *image.NRGBA) error {
		got = append(got, img)
		return nil
	})
	c, err := New(smallConfig(noise.Perlin), noise.NewTable(1), recv, nil)
	require.NoError(t, err)
	require.NoError(t, c.Create())
	require.NoError(t, c.Refresh())

	require.Len(t, got, 2)
	assert.NotSame(t, got[0], got[1])
	assert.Equal(t, got[0].Pix, got[1].Pix)
}

func TestRefresh_ReceiverError(t *testing.T) {
	boom := errors.New("boom")
	c, err := New(smallConfig(noise.Perlin), noise.NewTable(1),
		ReceiverFunc(func(*image.NRGBA) error { return boom }), nil)
	require.NoError(t, err)
	require.ErrorIs(t, c.Create(), boom)
	assert.False(t, c.Created())
}

func TestRandomGradientWhenUnset(t *testing.T) {
	cfg := smallConfig(noise.Perlin)
	cfg.Gradient = nil
	cfg.Generator.Grayscale = true
	c, err := New(cfg, noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, c.Gradient())
	assert.Equal(t, gradient.Black, c.Gradient().Evaluate(0).RGB())
}

func TestSetConfig_ClearingGradientDrawsRandom(t *testing.T) {
	cfg := smallConfig(noise.Perlin)
	c, err := New(cfg, noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	require.Same(t, cfg.Gradient, c.Gradient())

	cfg.Gradient = nil
	cfg.Generator.Grayscale = true
	require.NoError(t, c.SetConfig(cfg))
	random := c.Gradient()
	assert.Equal(t, gradient.Black, random.Evaluate(0).RGB())
	assert.Equal(t, gradient.White, random.Evaluate(1).RGB())

	// a random gradient survives later config changes
	cfg.Resolution = 8
	require.NoError(t, c.SetConfig(cfg))
	assert.Same(t, random, c.Gradient())
}

func TestRandomize(t *testing.T) {
	c, err := New(smallConfig(noise.Perlin), noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 50; i++ {
		c.RandomizeOffsets(rng)
		c.RandomizeRotation(rng)
		cfg := c.Config()
		for a := 0; a < 3; a++ {
			assert.LessOrEqual(t, math.Abs(cfg.Offset[a]), float64(DefaultOffsetRange))
			assert.GreaterOrEqual(t, cfg.Rotation[a], 0.0)
			assert.Less(t, cfg.Rotation[a], float64(DefaultRotationRange))
		}
	}
}

func TestWrapOffset(t *testing.T) {
	const bound = 25000.0
	v := wrapOffset(mgl64.Vec3{bound + 1e-6, -bound - 1e-6, bound}, bound)
	assert.Equal(t, -bound, v[0], "past the upper bound snaps to the lower")
	assert.Equal(t, bound, v[1], "past the lower bound snaps to the upper")
	assert.Equal(t, bound, v[2], "the bound itself is kept")
}

func TestWrapRotation(t *testing.T) {
	v := wrapRotation(mgl64.Vec3{361, -360.5, 359}, 360)
	assert.Equal(t, mgl64.Vec3{0, 0, 359}, v)
}

func TestTick_Scroll(t *testing.T) {
	cfg := smallConfig(noise.Perlin)
	cfg.Offset = mgl64.Vec3{DefaultOffsetRange - 1, 0, 0}
	cfg.Scroll = ScrollConfig{
		Enabled:          true,
		OffsetVelocity:   mgl64.Vec3{2, 0.5, 0},
		RotationVelocity: mgl64.Vec3{0, 0, 10},
	}
	c, err := New(cfg, noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	require.NoError(t, c.Create())

	require.NoError(t, c.Tick(time.Second))
	got := c.Config()
	assert.Equal(t, -float64(DefaultOffsetRange), got.Offset[0])
	assert.InDelta(t, 0.5, got.Offset[1], 1e-12)
	assert.InDelta(t, 10, got.Rotation[2], 1e-12)
	assert.Equal(t, uint64(2), c.Generation())
}

func TestTick_StaticTextureDoesNotRefresh(t *testing.T) {
	c, err := New(smallConfig(noise.Perlin), noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	require.NoError(t, c.Create())
	require.NoError(t, c.Tick(time.Second))
	assert.Equal(t, uint64(1), c.Generation())
}

func TestTick_Drift(t *testing.T) {
	cfg := smallConfig(noise.Perlin)
	cfg.Drift = DriftConfig{Enabled: true, StepSize: 0.5}
	start := cfg.Gradient
	c, err := New(cfg, noise.NewTable(1), nil, nil)
	require.NoError(t, err)
	require.NoError(t, c.Create())

	// the first tick samples the start gradient at lerp time 0
	require.NoError(t, c.Tick(time.Second))
	assert.InDelta(t, 0.5, c.LerpTime(), 1e-12)
	for _, tm := range []float64{0, 0.2, 0.4, 0.7, 1} {
		want, got := start.Evaluate(tm), c.Gradient().Evaluate(tm)
		assert.InDelta(t, want.R, got.R, 1e-9)
		assert.InDelta(t, want.G, got.G, 1e-9)
		assert.InDelta(t, want.B, got.B, 1e-9)
		assert.InDelta(t, want.A, got.A, 1e-9)
	}

	require.NoError(t, c.Tick(time.Second))
	// reaching 1 resets the lerp time
	assert.Zero(t, c.LerpTime())

	require.NoError(t, c.Tick(time.Second))
	assert.InDelta(t, 0.5, c.LerpTime(), 1e-12)
	assert.Equal(t, uint64(4), c.Generation())
}

func TestMaterial_MipChain(t *testing.T) {
	cfg := smallConfig(noise.Perlin)
	cfg.Resolution = 8
	m := &Material{}
	c, err := New(cfg, noise.NewTable(1), m, nil)
	require.NoError(t, err)
	require.NoError(t, c.Create())

	require.Same(t, c.Texture(), m.MainTexture)
	require.Len(t, m.Mips, 4)
	for i, size := range []int{8, 4, 2, 1} {
		assert.Equal(t, image.Rect(0, 0, size, size), m.Mips[i].Bounds())
	}
}

func TestRawImage_Scales(t *testing.T) {
	r := &RawImage{Width: 16, Height: 8}
	c, err := New(smallConfig(noise.Perlin), noise.NewTable(1), r, nil)
	require.NoError(t, err)
	require.NoError(t, c.Create())
	assert.Equal(t, image.Rect(0, 0, 16, 8), r.Image.Bounds())

	same := &RawImage{}
	require.NoError(t, same.ReceiveTexture(c.Texture()))
	assert.Equal(t, c.Texture().Bounds(), same.Image.Bounds())
}

func TestFileReceiver(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []Format{PNG, BMP, TIFF} {
		t.Run(format.String(), func(t *testing.T) {
			recv := &FileReceiver{Path: filepath.Join(dir, format.String(), "frame_%d"+format.Extension()), Format: format}
			cfg := smallConfig(noise.Perlin)
			cfg.Scroll.Enabled = true
			cfg.Scroll.OffsetVelocity = mgl64.Vec3{1, 0, 0}
			c, err := New(cfg, noise.NewTable(1), recv, nil)
			require.NoError(t, err)
			require.NoError(t, c.Create())
			require.NoError(t, c.Tick(100*time.Millisecond))
			assert.Equal(t, 2, recv.Frames())

			f, err := os.Open(filepath.Join(dir, format.String(), "frame_1"+format.Extension()))
			require.NoError(t, err)
			defer f.Close()
			img, name, err := image.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, format.String(), name)
			assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{"", PNG, false},
		{".BMP", BMP, false},
		{"tif", TIFF, false},
		{"tiff", TIFF, false},
		{"jpg", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	f, err := FormatFromPath("out/noise.tiff")
	require.NoError(t, err)
	assert.Equal(t, TIFF, f)
}

func TestEncode_PNG(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, Encode(&buf, img, PNG))
	assert.Equal(t, "\x89PNG", buf.String()[:4])
	assert.Error(t, Encode(&buf, img, Format(9)))
}
