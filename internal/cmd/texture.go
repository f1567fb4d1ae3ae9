package cmd

import (
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var textureCmd = &cobra.Command{
	Use:   "texture",
	Short: "Render a single noise texture",
	Long: `Render one gradient-colored fractal noise texture to PNG, BMP or TIFF.
The format follows the output file extension.`,
	RunE: runTexture,
}

func init() {
	rootCmd.AddCommand(textureCmd)

	def := texture.DefaultConfig()
	flags := textureCmd.Flags()
	flags.StringP("output", "o", "noise.png", "Output file (.png, .bmp, .tif, .tiff)")
	flags.Bool("mips", false, "Also write the mip chain as <name>_mip<n><ext>")
	flags.Int("display-width", 0, "Scale the output to this width (0 keeps the resolution)")
	flags.Int("display-height", 0, "Scale the output to this height (0 keeps the resolution)")
	flags.Bool("randomize", false, "Randomize offsets and rotation from the seed")
	addNoiseFlags(flags, "texture", def.Family, def.Dimensions, def.Fractal)
	addGradientFlags(flags, "texture", "0:#000000,1:#ffffff")
	addTextureFlags(flags, "texture")

	bindFlags(flags, []flagBinding{
		{"texture.output", "output"},
		{"texture.mips", "mips"},
		{"texture.display_width", "display-width"},
		{"texture.display_height", "display-height"},
		{"texture.randomize", "randomize"},
	})
}

func runTexture(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg, err := readTextureConfig("texture")
	if err != nil {
		return err
	}
	output := viper.GetString("texture.output")
	format, err := texture.FormatFromPath(output)
	if err != nil {
		return err
	}

	var recv texture.Receiver = &texture.FileReceiver{Path: output, Format: format}
	material := &texture.Material{}
	if viper.GetBool("texture.mips") {
		recv = multiReceiver{recv, material}
	}
	dw, dh := viper.GetInt("texture.display_width"), viper.GetInt("texture.display_height")
	if dw > 0 && dh > 0 {
		recv = &scaledReceiver{display: &texture.RawImage{Width: dw, Height: dh}, next: recv}
	}

	creator, err := texture.New(cfg, noise.NewTable(cfg.Seed), recv, logger)
	if err != nil {
		return err
	}
	if viper.GetBool("texture.randomize") {
		rng := rand.New(rand.NewSource(cfg.Seed))
		creator.RandomizeOffsets(rng)
		creator.RandomizeRotation(rng)
	}
	if err := creator.Create(); err != nil {
		return err
	}
	defer creator.Destroy()

	if viper.GetBool("texture.mips") {
		ext := filepath.Ext(output)
		base := strings.TrimSuffix(output, ext)
		for level, mip := range material.Mips[1:] {
			path := fmt.Sprintf("%s_mip%d%s", base, level+1, ext)
			if err := (&texture.FileReceiver{Path: path, Format: format}).ReceiveTexture(mip); err != nil {
				return err
			}
		}
	}

	final := creator.Config()
	logger.Info("Texture written",
		"path", output,
		"resolution", final.Resolution,
		"family", final.Family.String(),
		"offset", formatVec3(final.Offset),
		"rotation", formatVec3(final.Rotation),
		"gradient", creator.Gradient().String(),
	)
	return nil
}

// multiReceiver hands the same texture to several receivers.
type multiReceiver []texture.Receiver

func (m multiReceiver) ReceiveTexture(img *image.NRGBA) error {
	for _, r := range m {
		if err := r.ReceiveTexture(img); err != nil {
			return err
		}
	}
	return nil
}

// scaledReceiver scales through a RawImage before passing the result on.
type scaledReceiver struct {
	display *texture.RawImage
	next    texture.Receiver
}

func (s *scaledReceiver) ReceiveTexture(img *image.NRGBA) error {
	if err := s.display.ReceiveTexture(img); err != nil {
		return err
	}
	return s.next.ReceiveTexture(s.display.Image)
}
