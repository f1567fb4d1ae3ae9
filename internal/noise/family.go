// Package noise provides coherent noise methods and fractal summation.
package noise

import (
	"fmt"
	"strings"
)

// Family selects a noise method family.
type Family int

const (
	Value Family = iota
	Perlin
	Simplex
)

var familyNames = map[Family]string{
	Value:   "value",
	Perlin:  "perlin",
	Simplex: "simplex",
}

// Families lists every supported family in table order.
var Families = []Family{Value, Perlin, Simplex}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// ParseFamily parses a family name such as "perlin".
func ParseFamily(s string) (Family, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range familyNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown noise family %q", s)
}

// Range is the closed output interval a family's methods produce.
type Range struct {
	Min float64
	Max float64
}

// Range returns the declared output range of the family.
// Value noise lies in [0,1]; gradient noises lie in [-1,1].
func (f Family) Range() Range {
	if f == Value {
		return Range{Min: 0, Max: 1}
	}
	return Range{Min: -1, Max: 1}
}

// Normalize maps a sample from r into [0,1].
func (r Range) Normalize(s float64) float64 {
	return (s - r.Min) / (r.Max - r.Min)
}

// Center maps a sample from r into [-0.5,0.5].
func (r Range) Center(s float64) float64 {
	return r.Normalize(s) - 0.5
}

// Contains reports whether s lies in r, with a small tolerance for rounding.
func (r Range) Contains(s float64) bool {
	const eps = 1e-9
	return s >= r.Min-eps && s <= r.Max+eps
}

func (r Range) clamp(s float64) float64 {
	if s < r.Min {
		return r.Min
	}
	if s > r.Max {
		return r.Max
	}
	return s
}
