package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"
)

// Receiver accepts a finished texture. The image is never modified after the
// call, so receivers may keep it.
type Receiver interface {
	ReceiveTexture(img *image.NRGBA) error
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(img *image.NRGBA) error

// ReceiveTexture calls f(img).
func (f ReceiverFunc) ReceiveTexture(img *image.NRGBA) error { return f(img) }

// Material holds a main texture and its mip chain, halving each level down
// to 1x1.
type Material struct {
	MainTexture *image.NRGBA
	Mips        []*image.NRGBA
	// Resampling defaults to a box filter.
	Resampling gift.Resampling
}

// ReceiveTexture sets the main texture and rebuilds the mip chain.
func (m *Material) ReceiveTexture(img *image.NRGBA) error {
	resampling := m.Resampling
	if resampling == nil {
		resampling = gift.BoxResampling
	}

	mips := []*image.NRGBA{img}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		g := gift.New(gift.Resize(w, h, resampling))
		dst := image.NewNRGBA(g.Bounds(mips[len(mips)-1].Bounds()))
		g.Draw(dst, mips[len(mips)-1])
		mips = append(mips, dst)
	}

	m.MainTexture = img
	m.Mips = mips
	return nil
}

// RawImage displays the texture scaled into a fixed rectangle, like a UI
// image element.
type RawImage struct {
	Width  int
	Height int
	Image  *image.NRGBA
}

// ReceiveTexture scales img into a new Width x Height image. A zero size
// keeps the texture's own size.
func (r *RawImage) ReceiveTexture(img *image.NRGBA) error {
	w, h := r.Width, r.Height
	if w <= 0 || h <= 0 {
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	r.Image = dst
	return nil
}

// FileReceiver encodes every texture to disk. A Path containing %d is
// formatted with a running frame number; otherwise the file is overwritten.
type FileReceiver struct {
	Path   string
	Format Format

	frame int
}

// Frames returns the number of textures written.
func (f *FileReceiver) Frames() int { return f.frame }

// ReceiveTexture writes img to the next path.
func (f *FileReceiver) ReceiveTexture(img *image.NRGBA) error {
	path := f.Path
	if strings.Contains(path, "%d") {
		path = fmt.Sprintf(path, f.frame)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create texture dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create texture %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, img, f.Format); err != nil {
		return fmt.Errorf("failed to encode texture %s: %w", path, err)
	}
	f.frame++
	return nil
}
