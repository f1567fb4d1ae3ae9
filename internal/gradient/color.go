package gradient

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB is an opaque color with channels in [0,1].
type RGB struct {
	R float64
	G float64
	B float64
}

// Color is an RGBA color with channels in [0,1].
type Color struct {
	R float64
	G float64
	B float64
	A float64
}

var (
	Black = RGB{R: 0, G: 0, B: 0}
	White = RGB{R: 1, G: 1, B: 1}
)

// RGB drops the alpha channel.
func (c Color) RGB() RGB { return RGB{R: c.R, G: c.G, B: c.B} }

// Lerp blends c towards d by t, with t clamped to [0,1].
func (c Color) Lerp(d Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: lerp(c.R, d.R, t),
		G: lerp(c.G, d.G, t),
		B: lerp(c.B, d.B, t),
		A: lerp(c.A, d.A, t),
	}
}

// NRGBA converts to an 8-bit non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

// ParseHex reads #rrggbb or rrggbb.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

func to8(x float64) uint8 {
	return uint8(math.Round(clamp01(x) * 255))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
