package cmd

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/archive"
	"github.com/MeKo-Tech/noisegen/internal/clock"
	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/terrain"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Record an animated texture or scrolling terrain into a SQLite archive",
	Long: `Simulate a fixed number of ticks and store every published frame in a
SQLite archive. Textures are stored as encoded images, terrain as OBJ text.

The archive can be served with "noisegen serve --archive".`,
	RunE: runAnimate,
}

func init() {
	rootCmd.AddCommand(animateCmd)

	tex := texture.DefaultConfig()
	flags := animateCmd.Flags()
	flags.StringP("output", "o", "animation.db", "Output archive")
	flags.String("kind", archive.KindTexture, "What to animate (texture, terrain)")
	flags.Int("frames", 60, "Number of frames to record")
	flags.Duration("step", 0, "Simulated time per tick (default 1/30s for textures, the scroll interval for terrain)")
	flags.String("format", texture.PNG.String(), "Texture frame encoding (png, bmp, tiff)")
	flags.String("name", "", "Archive name (default derived from kind)")
	flags.String("description", "", "Archive description")
	addNoiseFlags(flags, "animate", tex.Family, tex.Dimensions, tex.Fractal)
	addGradientFlags(flags, "animate", "0:#000000,1:#ffffff")
	addTextureFlags(flags, "animate")
	addTerrainFlags(flags, "animate")

	bindFlags(flags, []flagBinding{
		{"animate.output", "output"},
		{"animate.kind", "kind"},
		{"animate.frames", "frames"},
		{"animate.step", "step"},
		{"animate.format", "format"},
		{"animate.name", "name"},
		{"animate.description", "description"},
	})
}

const defaultTextureStep = time.Second / 30

// frameClock advances elapsed before every tick so receivers can stamp
// frames with the simulated time.
type frameClock struct {
	elapsed time.Duration
	next    clock.Ticker
}

func (f *frameClock) Tick(elapsed time.Duration) error {
	f.elapsed += elapsed
	return f.next.Tick(elapsed)
}

func runAnimate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	frames := viper.GetInt("animate.frames")
	if frames < 1 {
		return fmt.Errorf("frames must be positive")
	}
	kind := viper.GetString("animate.kind")
	name := viper.GetString("animate.name")
	if name == "" {
		name = "noisegen " + kind
	}
	meta := archive.Metadata{
		Name:        name,
		Kind:        kind,
		Seed:        viper.GetInt64("animate.seed"),
		Family:      viper.GetString("animate.family"),
		Description: viper.GetString("animate.description"),
		Version:     "1",
	}

	var (
		w   *archive.Writer
		err error
	)
	switch kind {
	case archive.KindTexture:
		w, err = animateTexture(meta, frames)
	case archive.KindTerrain:
		w, err = animateTerrain(meta, frames)
	default:
		return fmt.Errorf("unknown kind %q (want %s or %s)", kind, archive.KindTexture, archive.KindTerrain)
	}
	if w != nil {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	logger.Info("Animation recorded",
		"output", viper.GetString("animate.output"),
		"kind", kind,
		"frames", frames,
	)
	return nil
}

func animateTexture(meta archive.Metadata, frames int) (*archive.Writer, error) {
	cfg, err := readTextureConfig("animate")
	if err != nil {
		return nil, err
	}
	format, err := texture.ParseFormat(viper.GetString("animate.format"))
	if err != nil {
		return nil, err
	}
	if !cfg.Animated() {
		logger.Warn("Texture has neither scroll nor drift enabled, only the first frame is recorded")
	}
	step := durationOrDefault(viper.GetDuration("animate.step"), defaultTextureStep)

	meta.Format = format.String()
	meta.Resolution = cfg.Resolution
	meta.Interval = step
	if cfg.Gradient != nil {
		meta.Gradient = cfg.Gradient.ColorSpec() + "|" + cfg.Gradient.AlphaSpec()
	}

	w, err := archive.New(viper.GetString("animate.output"), meta)
	if err != nil {
		return nil, err
	}

	fc := &frameClock{}
	recv := texture.ReceiverFunc(func(img *image.NRGBA) error {
		var buf bytes.Buffer
		if err := texture.Encode(&buf, img, format); err != nil {
			return err
		}
		_, err := w.Append(buf.Bytes(), fc.elapsed)
		return err
	})

	creator, err := texture.New(cfg, noise.NewTable(cfg.Seed), recv, logger)
	if err != nil {
		return w, err
	}
	fc.next = creator
	if err := creator.Create(); err != nil {
		return w, err
	}
	defer creator.Destroy()

	return w, clock.Simulate(frames-1, step, fc)
}

func animateTerrain(meta archive.Metadata, frames int) (*archive.Writer, error) {
	cfg, err := readTerrainConfig("animate")
	if err != nil {
		return nil, err
	}
	cfg.Scroll.Enabled = true
	step := durationOrDefault(viper.GetDuration("animate.step"), cfg.Scroll.Interval)

	meta.Format = "obj"
	meta.Resolution = cfg.XCount
	meta.Interval = step
	if cfg.Gradient != nil {
		meta.Gradient = cfg.Gradient.ColorSpec() + "|" + cfg.Gradient.AlphaSpec()
	}

	w, err := archive.New(viper.GetString("animate.output"), meta)
	if err != nil {
		return nil, err
	}

	fc := &frameClock{}
	surface := terrain.SurfaceFunc(func(m *terrain.Mesh) error {
		var buf bytes.Buffer
		if err := terrain.WriteOBJ(&buf, m); err != nil {
			return err
		}
		_, err := w.Append(buf.Bytes(), fc.elapsed)
		return err
	})

	synth, err := terrain.New(cfg, noise.NewTable(meta.Seed), surface, logger)
	if err != nil {
		return w, err
	}
	fc.next = synth
	if err := synth.Create(); err != nil {
		return w, err
	}
	defer synth.Destroy()

	if frames < 2 {
		return w, nil
	}
	// the first scroll step is due right after Create
	if err := synth.Tick(0); err != nil {
		return w, err
	}
	return w, clock.Simulate(frames-2, step, fc)
}
