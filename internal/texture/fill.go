package texture

import (
	"image"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/go-gl/mathgl/mgl64"
)

// Corners returns the noise-space positions of the unit square's corners in
// the order bottom-left, bottom-right, top-left, top-right.
func Corners(rotation, offset mgl64.Vec3) [4]mgl64.Vec3 {
	tr := noise.NewTransform(rotation, offset)
	return [4]mgl64.Vec3{
		tr.Apply(mgl64.Vec3{-0.5, -0.5, 0}),
		tr.Apply(mgl64.Vec3{0.5, -0.5, 0}),
		tr.Apply(mgl64.Vec3{-0.5, 0.5, 0}),
		tr.Apply(mgl64.Vec3{0.5, 0.5, 0}),
	}
}

// Fill samples method over the unit square described by cfg and colors each
// texel through g. Texel (x, y) is taken at ((x+0.5)/res, (y+0.5)/res) with
// y growing upwards; image rows are stored top-down, so y = 0 lands on the
// last row.
func Fill(cfg Config, method noise.Method, g *gradient.Gradient) *image.NRGBA {
	res := cfg.Resolution
	img := image.NewNRGBA(image.Rect(0, 0, res, res))
	c := Corners(cfg.Rotation, cfg.Offset)
	span := cfg.Family.Range()
	step := 1 / float64(res)

	for y := 0; y < res; y++ {
		ty := (float64(y) + 0.5) * step
		left := lerpVec(c[0], c[2], ty)
		right := lerpVec(c[1], c[3], ty)
		row := (res - 1 - y) * img.Stride
		for x := 0; x < res; x++ {
			point := lerpVec(left, right, (float64(x)+0.5)*step)
			sample := span.Normalize(cfg.Fractal.Sum(method, point))
			px := g.Evaluate(sample).NRGBA()
			i := row + x*4
			img.Pix[i] = px.R
			img.Pix[i+1] = px.G
			img.Pix[i+2] = px.B
			img.Pix[i+3] = px.A
		}
	}
	return img
}

func lerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
