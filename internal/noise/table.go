package noise

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"
)

// MaxDimensions is the highest dimensionality a Table holds.
const MaxDimensions = 3

// ErrMethodNotFound is returned when a (family, dimensions) pair has no method.
var ErrMethodNotFound = errors.New("noise method not found")

// Method samples noise at point scaled by frequency.
// Methods are pure; the output lies within the owning family's Range.
type Method func(point mgl64.Vec3, frequency float64) float64

// Table maps (family, dimensions) to a noise method.
// A Table is read-only once handed to a synthesizer.
type Table struct {
	methods map[Family]*[MaxDimensions]Method
}

// EmptyTable returns a table without any methods registered.
func EmptyTable() *Table {
	return &Table{methods: make(map[Family]*[MaxDimensions]Method)}
}

// NewTable returns a table with 1D, 2D and 3D methods for every family,
// all derived from seed.
func NewTable(seed int64) *Table {
	t := EmptyTable()

	v := newValueNoise(seed)
	t.mustSet(Value, 1, v.sample1D)
	t.mustSet(Value, 2, v.sample2D)
	t.mustSet(Value, 3, v.sample3D)

	// A single octave per call; fractal layering happens in Sum.
	p := perlin.NewPerlin(2, 2, 1, seed)
	pr := Perlin.Range()
	t.mustSet(Perlin, 1, func(point mgl64.Vec3, frequency float64) float64 {
		return pr.clamp(p.Noise1D(point.X() * frequency))
	})
	t.mustSet(Perlin, 2, func(point mgl64.Vec3, frequency float64) float64 {
		return pr.clamp(p.Noise2D(point.X()*frequency, point.Y()*frequency))
	})
	t.mustSet(Perlin, 3, func(point mgl64.Vec3, frequency float64) float64 {
		return pr.clamp(p.Noise3D(point.X()*frequency, point.Y()*frequency, point.Z()*frequency))
	})

	s := opensimplex.New(seed)
	sr := Simplex.Range()
	t.mustSet(Simplex, 1, func(point mgl64.Vec3, frequency float64) float64 {
		return sr.clamp(s.Eval2(point.X()*frequency, 0))
	})
	t.mustSet(Simplex, 2, func(point mgl64.Vec3, frequency float64) float64 {
		return sr.clamp(s.Eval2(point.X()*frequency, point.Y()*frequency))
	})
	t.mustSet(Simplex, 3, func(point mgl64.Vec3, frequency float64) float64 {
		return sr.clamp(s.Eval3(point.X()*frequency, point.Y()*frequency, point.Z()*frequency))
	})

	return t
}

// Set registers m for the given family and dimensionality, replacing any
// existing entry.
func (t *Table) Set(f Family, dimensions int, m Method) error {
	if err := checkDimensions(dimensions); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("nil method for %s/%dD", f, dimensions)
	}
	row, ok := t.methods[f]
	if !ok {
		row = &[MaxDimensions]Method{}
		t.methods[f] = row
	}
	row[dimensions-1] = m
	return nil
}

func (t *Table) mustSet(f Family, dimensions int, m Method) {
	if err := t.Set(f, dimensions, m); err != nil {
		panic(err)
	}
}

// Lookup returns the method registered for the family and dimensionality.
func (t *Table) Lookup(f Family, dimensions int) (Method, error) {
	if err := checkDimensions(dimensions); err != nil {
		return nil, err
	}
	row, ok := t.methods[f]
	if !ok || row[dimensions-1] == nil {
		return nil, fmt.Errorf("%w: %s/%dD", ErrMethodNotFound, f, dimensions)
	}
	return row[dimensions-1], nil
}

func checkDimensions(dimensions int) error {
	if dimensions < 1 || dimensions > MaxDimensions {
		return fmt.Errorf("dimensions must be within [1,%d], got %d", MaxDimensions, dimensions)
	}
	return nil
}
