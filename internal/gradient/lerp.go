package gradient

import "fmt"

// Channels selects which key sets Lerp blends.
type Channels struct {
	Color bool
	Alpha bool
}

// AllChannels blends both color and alpha keys.
var AllChannels = Channels{Color: true, Alpha: true}

// Lerp blends a towards b by t.
//
// For each blended channel the result carries one key per distinct key time
// found in either input; each key holds the blend of a and b evaluated at that
// time. A channel left out of ch keeps a's keys unchanged. The result uses a's
// mode.
func Lerp(a, b *Gradient, t float64, ch Channels) (*Gradient, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("lerp needs two gradients")
	}
	t = clamp01(t)

	colors := a.ColorKeys()
	if ch.Color {
		times := unionTimes(
			len(a.colors), func(i int) float64 { return a.colors[i].Time },
			len(b.colors), func(i int) float64 { return b.colors[i].Time },
		)
		colors = make([]ColorKey, len(times))
		for i, k := range times {
			c := a.Evaluate(k).Lerp(b.Evaluate(k), t)
			colors[i] = ColorKey{Time: k, Color: c.RGB()}
		}
	}

	alphas := a.AlphaKeys()
	if ch.Alpha {
		times := unionTimes(
			len(a.alphas), func(i int) float64 { return a.alphas[i].Time },
			len(b.alphas), func(i int) float64 { return b.alphas[i].Time },
		)
		alphas = make([]AlphaKey, len(times))
		for i, k := range times {
			c := a.Evaluate(k).Lerp(b.Evaluate(k), t)
			alphas[i] = AlphaKey{Time: k, Alpha: c.A}
		}
	}

	g, err := New(colors, alphas, a.mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build blended gradient: %w", err)
	}
	return g, nil
}

// LerpNoAlpha blends only the color keys.
func LerpNoAlpha(a, b *Gradient, t float64) (*Gradient, error) {
	return Lerp(a, b, t, Channels{Color: true})
}

// LerpNoColor blends only the alpha keys.
func LerpNoColor(a, b *Gradient, t float64) (*Gradient, error) {
	return Lerp(a, b, t, Channels{Alpha: true})
}

func unionTimes(na int, ta func(int) float64, nb int, tb func(int) float64) []float64 {
	seen := make(map[float64]struct{}, na+nb)
	out := make([]float64, 0, na+nb)
	add := func(k float64) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for i := 0; i < na; i++ {
		add(ta(i))
	}
	for i := 0; i < nb; i++ {
		add(tb(i))
	}
	return out
}
