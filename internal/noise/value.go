package noise

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const hashMask = 255

// valueNoise interpolates pseudo-random lattice values taken from a seeded
// permutation table.
type valueNoise struct {
	perm [512]int
}

func newValueNoise(seed int64) *valueNoise {
	v := &valueNoise{}
	r := rand.New(rand.NewSource(seed))
	p := make([]int, 256)
	for i := range p {
		p[i] = i
	}
	for i := 255; i > 0; i-- {
		j := r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := range v.perm {
		v.perm[i] = p[i&hashMask]
	}
	return v
}

func fastFloor(x float64) int {
	if x >= 0 {
		return int(x)
	}
	i := int(x)
	if float64(i) == x {
		return i
	}
	return i - 1
}

// smooth is the quintic fade 6t^5 - 15t^4 + 10t^3.
func smooth(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func (v *valueNoise) sample1D(point mgl64.Vec3, frequency float64) float64 {
	x := point.X() * frequency
	i0 := fastFloor(x)
	tx := smooth(x - float64(i0))
	i0 &= hashMask

	h0 := float64(v.perm[i0])
	h1 := float64(v.perm[i0+1])
	return lerp(h0, h1, tx) / hashMask
}

func (v *valueNoise) sample2D(point mgl64.Vec3, frequency float64) float64 {
	x := point.X() * frequency
	y := point.Y() * frequency
	ix := fastFloor(x)
	iy := fastFloor(y)
	tx := smooth(x - float64(ix))
	ty := smooth(y - float64(iy))
	ix &= hashMask
	iy &= hashMask

	h0 := v.perm[ix]
	h1 := v.perm[ix+1]
	h00 := float64(v.perm[h0+iy])
	h10 := float64(v.perm[h1+iy])
	h01 := float64(v.perm[h0+iy+1])
	h11 := float64(v.perm[h1+iy+1])

	return lerp(lerp(h00, h10, tx), lerp(h01, h11, tx), ty) / hashMask
}

func (v *valueNoise) sample3D(point mgl64.Vec3, frequency float64) float64 {
	x := point.X() * frequency
	y := point.Y() * frequency
	z := point.Z() * frequency
	ix := fastFloor(x)
	iy := fastFloor(y)
	iz := fastFloor(z)
	tx := smooth(x - float64(ix))
	ty := smooth(y - float64(iy))
	tz := smooth(z - float64(iz))
	ix &= hashMask
	iy &= hashMask
	iz &= hashMask

	h0 := v.perm[ix]
	h1 := v.perm[ix+1]
	h00 := v.perm[h0+iy]
	h10 := v.perm[h1+iy]
	h01 := v.perm[h0+iy+1]
	h11 := v.perm[h1+iy+1]

	h000 := float64(v.perm[h00+iz])
	h100 := float64(v.perm[h10+iz])
	h010 := float64(v.perm[h01+iz])
	h110 := float64(v.perm[h11+iz])
	h001 := float64(v.perm[h00+iz+1])
	h101 := float64(v.perm[h10+iz+1])
	h011 := float64(v.perm[h01+iz+1])
	h111 := float64(v.perm[h11+iz+1])

	return lerp(
		lerp(lerp(h000, h100, tx), lerp(h010, h110, tx), ty),
		lerp(lerp(h001, h101, tx), lerp(h011, h111, tx), ty),
		tz,
	) / hashMask
}
