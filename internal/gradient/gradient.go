// Package gradient maps scalars in [0,1] to colors through keyframed color
// and alpha ramps, and generates and blends such ramps.
package gradient

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// MaxKeys is the largest number of keys a channel may hold.
const MaxKeys = 10

// ErrInvalidKeys reports a key set that violates the gradient invariants.
var ErrInvalidKeys = errors.New("invalid gradient keys")

// Mode selects how values between keys are produced.
type Mode int

const (
	// Blend interpolates linearly between the bracketing keys.
	Blend Mode = iota
	// Fixed holds the value of the next key until it is reached.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case Blend:
		return "blend"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "blend" or "fixed".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blend":
		return Blend, nil
	case "fixed":
		return Fixed, nil
	default:
		return 0, fmt.Errorf("unknown gradient mode %q", s)
	}
}

// ColorKey places an opaque color at a time in [0,1].
type ColorKey struct {
	Time  float64
	Color RGB
}

// AlphaKey places an alpha value at a time in [0,1].
type AlphaKey struct {
	Time  float64
	Alpha float64
}

// Gradient is an immutable pair of time-sorted color and alpha key sets.
// Both sets hold at least two keys, start at time 0 and end at time 1.
type Gradient struct {
	colors []ColorKey
	alphas []AlphaKey
	mode   Mode
}

// New validates the keys and returns a gradient. Keys may be given in any
// order; they are stored sorted by time.
func New(colors []ColorKey, alphas []AlphaKey, mode Mode) (*Gradient, error) {
	c := append([]ColorKey(nil), colors...)
	a := append([]AlphaKey(nil), alphas...)
	sort.SliceStable(c, func(i, j int) bool { return c[i].Time < c[j].Time })
	sort.SliceStable(a, func(i, j int) bool { return a[i].Time < a[j].Time })

	ct := make([]float64, len(c))
	for i, k := range c {
		ct[i] = k.Time
	}
	if err := checkTimes("color", ct); err != nil {
		return nil, err
	}
	at := make([]float64, len(a))
	for i, k := range a {
		at[i] = k.Time
		if math.IsNaN(k.Alpha) || k.Alpha < 0 || k.Alpha > 1 {
			return nil, fmt.Errorf("%w: alpha key %d value %v outside [0,1]", ErrInvalidKeys, i, k.Alpha)
		}
	}
	if err := checkTimes("alpha", at); err != nil {
		return nil, err
	}
	if mode != Blend && mode != Fixed {
		return nil, fmt.Errorf("unknown gradient mode %d", int(mode))
	}

	return &Gradient{colors: c, alphas: a, mode: mode}, nil
}

// MustNew is New for static key sets; it panics on invalid input.
func MustNew(colors []ColorKey, alphas []AlphaKey, mode Mode) *Gradient {
	g, err := New(colors, alphas, mode)
	if err != nil {
		panic(err)
	}
	return g
}

// Grayscale is the opaque black to white ramp.
func Grayscale() *Gradient {
	return MustNew(
		[]ColorKey{{Time: 0, Color: Black}, {Time: 1, Color: White}},
		[]AlphaKey{{Time: 0, Alpha: 1}, {Time: 1, Alpha: 1}},
		Blend,
	)
}

func checkTimes(channel string, times []float64) error {
	if len(times) < 2 {
		return fmt.Errorf("%w: %s channel needs at least 2 keys, got %d", ErrInvalidKeys, channel, len(times))
	}
	for i, t := range times {
		if math.IsNaN(t) || t < 0 || t > 1 {
			return fmt.Errorf("%w: %s key %d time %v outside [0,1]", ErrInvalidKeys, channel, i, t)
		}
		if i > 0 && t == times[i-1] {
			return fmt.Errorf("%w: %s keys share time %v", ErrInvalidKeys, channel, t)
		}
	}
	if times[0] != 0 {
		return fmt.Errorf("%w: %s channel has no key at time 0", ErrInvalidKeys, channel)
	}
	if times[len(times)-1] != 1 {
		return fmt.Errorf("%w: %s channel has no key at time 1", ErrInvalidKeys, channel)
	}
	return nil
}

// ColorKeys returns a copy of the color keys in time order.
func (g *Gradient) ColorKeys() []ColorKey { return append([]ColorKey(nil), g.colors...) }

// AlphaKeys returns a copy of the alpha keys in time order.
func (g *Gradient) AlphaKeys() []AlphaKey { return append([]AlphaKey(nil), g.alphas...) }

// Mode returns the interpolation mode.
func (g *Gradient) Mode() Mode { return g.mode }

// Evaluate returns the color at t. t is clamped to [0,1]; color and alpha are
// interpolated independently between their own bracketing keys.
func (g *Gradient) Evaluate(t float64) Color {
	t = clamp01(t)

	i, f := bracket(len(g.colors), func(i int) float64 { return g.colors[i].Time }, t, g.mode)
	var rgb RGB
	if f == 0 {
		rgb = g.colors[i].Color
	} else {
		lo, hi := g.colors[i].Color, g.colors[i+1].Color
		rgb = RGB{R: lerp(lo.R, hi.R, f), G: lerp(lo.G, hi.G, f), B: lerp(lo.B, hi.B, f)}
	}

	j, fa := bracket(len(g.alphas), func(i int) float64 { return g.alphas[i].Time }, t, g.mode)
	alpha := g.alphas[j].Alpha
	if fa != 0 {
		alpha = lerp(alpha, g.alphas[j+1].Alpha, fa)
	}

	return Color{R: rgb.R, G: rgb.G, B: rgb.B, A: alpha}
}

// bracket finds the key index at or below t and the fractional position
// towards the next key. A zero fraction means the key at the index applies
// as is.
func bracket(n int, time func(int) float64, t float64, mode Mode) (int, float64) {
	if t <= time(0) {
		return 0, 0
	}
	if t >= time(n-1) {
		return n - 1, 0
	}
	hi := sort.Search(n, func(i int) bool { return time(i) >= t })
	if time(hi) == t || mode == Fixed {
		return hi, 0
	}
	lo := hi - 1
	return lo, (t - time(lo)) / (time(hi) - time(lo))
}
