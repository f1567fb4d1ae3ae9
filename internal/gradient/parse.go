package gradient

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a gradient from compact key lists such as
// "0:#000000,0.5:#ff8800,1:#ffffff" and "0:1,1:1". An empty alpha list
// means fully opaque.
func Parse(colorSpec, alphaSpec string, mode Mode) (*Gradient, error) {
	colors, err := parseColorKeys(colorSpec)
	if err != nil {
		return nil, err
	}
	alphas := []AlphaKey{{Time: 0, Alpha: 1}, {Time: 1, Alpha: 1}}
	if strings.TrimSpace(alphaSpec) != "" {
		alphas, err = parseAlphaKeys(alphaSpec)
		if err != nil {
			return nil, err
		}
	}
	return New(colors, alphas, mode)
}

func parseColorKeys(spec string) ([]ColorKey, error) {
	var keys []ColorKey
	for i, part := range splitKeys(spec) {
		t, v, err := splitKey(part)
		if err != nil {
			return nil, fmt.Errorf("color key %d: %w", i, err)
		}
		c, err := ParseHex(v)
		if err != nil {
			return nil, fmt.Errorf("color key %d: %w", i, err)
		}
		keys = append(keys, ColorKey{Time: t, Color: c})
	}
	return keys, nil
}

func parseAlphaKeys(spec string) ([]AlphaKey, error) {
	var keys []AlphaKey
	for i, part := range splitKeys(spec) {
		t, v, err := splitKey(part)
		if err != nil {
			return nil, fmt.Errorf("alpha key %d: %w", i, err)
		}
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("alpha key %d: invalid alpha %q: %w", i, v, err)
		}
		keys = append(keys, AlphaKey{Time: t, Alpha: a})
	}
	return keys, nil
}

func splitKeys(spec string) []string {
	var out []string
	for _, p := range strings.Split(spec, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitKey(part string) (float64, string, error) {
	ts, v, ok := strings.Cut(part, ":")
	if !ok {
		return 0, "", fmt.Errorf("expected time:value, got %q", part)
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(ts), 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid time %q: %w", ts, err)
	}
	return t, strings.TrimSpace(v), nil
}

// ColorSpec formats the color keys in the form Parse accepts.
func (g *Gradient) ColorSpec() string {
	parts := make([]string, len(g.colors))
	for i, k := range g.colors {
		parts[i] = formatTime(k.Time) + ":" + k.Color.Hex()
	}
	return strings.Join(parts, ",")
}

// AlphaSpec formats the alpha keys in the form Parse accepts.
func (g *Gradient) AlphaSpec() string {
	parts := make([]string, len(g.alphas))
	for i, k := range g.alphas {
		parts[i] = formatTime(k.Time) + ":" + strconv.FormatFloat(k.Alpha, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (g *Gradient) String() string {
	return fmt.Sprintf("colors=%s alphas=%s mode=%s", g.ColorSpec(), g.AlphaSpec(), g.mode)
}

func formatTime(t float64) string { return strconv.FormatFloat(t, 'f', -1, 64) }

type jsonColorKey struct {
	Time  float64 `json:"time"`
	Color string  `json:"color"`
}

type jsonAlphaKey struct {
	Time  float64 `json:"time"`
	Alpha float64 `json:"alpha"`
}

type jsonGradient struct {
	Mode   string         `json:"mode"`
	Colors []jsonColorKey `json:"colors"`
	Alphas []jsonAlphaKey `json:"alphas"`
}

// MarshalJSON encodes colors as hex strings; channel precision is 8 bits.
func (g *Gradient) MarshalJSON() ([]byte, error) {
	out := jsonGradient{Mode: g.mode.String()}
	for _, k := range g.colors {
		out.Colors = append(out.Colors, jsonColorKey{Time: k.Time, Color: k.Color.Hex()})
	}
	for _, k := range g.alphas {
		out.Alphas = append(out.Alphas, jsonAlphaKey{Time: k.Time, Alpha: k.Alpha})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes and validates a gradient.
func (g *Gradient) UnmarshalJSON(data []byte) error {
	var in jsonGradient
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	mode, err := ParseMode(in.Mode)
	if err != nil {
		return err
	}
	colors := make([]ColorKey, len(in.Colors))
	for i, k := range in.Colors {
		c, err := ParseHex(k.Color)
		if err != nil {
			return fmt.Errorf("color key %d: %w", i, err)
		}
		colors[i] = ColorKey{Time: k.Time, Color: c}
	}
	alphas := make([]AlphaKey, len(in.Alphas))
	for i, k := range in.Alphas {
		alphas[i] = AlphaKey(k)
	}
	parsed, err := New(colors, alphas, mode)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}
