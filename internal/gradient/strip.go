package gradient

import "image"

// Strip renders g left to right into a width x height preview image.
func Strip(g *Gradient, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return img
	}
	den := float64(width - 1)
	if den == 0 {
		den = 1
	}
	for x := 0; x < width; x++ {
		c := g.Evaluate(float64(x) / den).NRGBA()
		for y := 0; y < height; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
