package noise

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumSingleOctaveIsPlainSample(t *testing.T) {
	table := NewTable(5)
	m, err := table.Lookup(Perlin, 3)
	require.NoError(t, err)

	point := mgl64.Vec3{0.3, 0.7, 1.1}
	assert.InDelta(t, m(point, 4), Sum(m, point, 4, 1, 2, 0.5), 1e-12)
}

func TestSumNormalizesByAmplitude(t *testing.T) {
	calls := []float64{}
	constant := func(_ mgl64.Vec3, frequency float64) float64 {
		calls = append(calls, frequency)
		return 0.8
	}

	got := Sum(constant, mgl64.Vec3{}, 1, 4, 2, 0.5)
	assert.InDelta(t, 0.8, got, 1e-12)
	assert.Equal(t, []float64{1, 2, 4, 8}, calls)
}

func TestSumStaysInRangeForAllOctaves(t *testing.T) {
	table := NewTable(11)
	rng := rand.New(rand.NewSource(2))

	for _, f := range Families {
		m, err := table.Lookup(f, 3)
		require.NoError(t, err)
		r := f.Range()
		for octaves := MinOctaves; octaves <= MaxOctaves; octaves++ {
			p := FractalParams{
				Frequency:   0.5 + rng.Float64()*4,
				Octaves:     octaves,
				Lacunarity:  MinLacunarity + rng.Float64()*(MaxLacunarity-MinLacunarity),
				Persistence: rng.Float64(),
			}
			require.NoError(t, p.Validate())
			for i := 0; i < 50; i++ {
				point := mgl64.Vec3{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
				s := p.Sum(m, point)
				require.True(t, r.Contains(s), "%s octaves=%d sample %v outside %v", f, octaves, s, r)
			}
		}
	}
}

func TestFractalParamsValidate(t *testing.T) {
	valid := DefaultFractalParams()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*FractalParams)
	}{
		{"zero octaves", func(p *FractalParams) { p.Octaves = 0 }},
		{"negative octaves", func(p *FractalParams) { p.Octaves = -2 }},
		{"too many octaves", func(p *FractalParams) { p.Octaves = 9 }},
		{"zero frequency", func(p *FractalParams) { p.Frequency = 0 }},
		{"lacunarity below one", func(p *FractalParams) { p.Lacunarity = 0.5 }},
		{"lacunarity above four", func(p *FractalParams) { p.Lacunarity = 4.5 }},
		{"negative persistence", func(p *FractalParams) { p.Persistence = -0.1 }},
		{"persistence above one", func(p *FractalParams) { p.Persistence = 1.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultFractalParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
