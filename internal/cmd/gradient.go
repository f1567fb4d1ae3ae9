package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/noisegen/internal/gradient"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var gradientCmd = &cobra.Command{
	Use:   "gradient",
	Short: "Generate, blend and preview color gradients",
	Long: `Print a gradient (parsed from --colors or drawn at random) and optionally
write a preview strip. With --lerp-colors the gradient is blended towards a
second gradient at --lerp-t.`,
	RunE: runGradient,
}

func init() {
	rootCmd.AddCommand(gradientCmd)

	flags := gradientCmd.Flags()
	flags.Int64("seed", 1337, "Seed for random gradients")
	flags.Int("count", 1, "Number of random gradients to print")
	flags.String("preview", "", "Write a preview strip of the (first) gradient to this image file")
	flags.Int("preview-width", 256, "Preview strip width")
	flags.Int("preview-height", 32, "Preview strip height")
	flags.String("lerp-colors", "", "Blend target color keys t:#rrggbb,...")
	flags.String("lerp-alphas", "", "Blend target alpha keys t:a,...")
	flags.Float64("lerp-t", 0.5, "Blend position between the gradients (0..1)")
	flags.String("lerp-channels", "all", "Channels to blend (all, color, alpha)")
	flags.Bool("json", false, "Print gradients as JSON")
	addGradientFlags(flags, "gradient", "")

	bindFlags(flags, []flagBinding{
		{"gradient.seed", "seed"},
		{"gradient.count", "count"},
		{"gradient.preview", "preview"},
		{"gradient.preview_width", "preview-width"},
		{"gradient.preview_height", "preview-height"},
		{"gradient.lerp_colors", "lerp-colors"},
		{"gradient.lerp_alphas", "lerp-alphas"},
		{"gradient.lerp_t", "lerp-t"},
		{"gradient.lerp_channels", "lerp-channels"},
		{"gradient.json", "json"},
	})
}

func parseChannels(s string) (gradient.Channels, error) {
	switch s {
	case "", "all":
		return gradient.AllChannels, nil
	case "color":
		return gradient.Channels{Color: true}, nil
	case "alpha":
		return gradient.Channels{Alpha: true}, nil
	}
	return gradient.Channels{}, fmt.Errorf("unknown lerp channels %q", s)
}

func runGradient(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	g, gen, err := readGradient("gradient")
	if err != nil {
		return err
	}

	var gradients []*gradient.Gradient
	if g != nil {
		gradients = append(gradients, g)
	} else {
		count := viper.GetInt("gradient.count")
		if count < 1 {
			return fmt.Errorf("count must be positive")
		}
		generator, err := gradient.NewGenerator(gen, viper.GetInt64("gradient.seed"))
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			gradients = append(gradients, generator.Random())
		}
	}

	if target := viper.GetString("gradient.lerp_colors"); target != "" {
		b, err := gradient.Parse(target, viper.GetString("gradient.lerp_alphas"), gradients[0].Mode())
		if err != nil {
			return fmt.Errorf("invalid lerp target: %w", err)
		}
		ch, err := parseChannels(viper.GetString("gradient.lerp_channels"))
		if err != nil {
			return err
		}
		for i, a := range gradients {
			if gradients[i], err = gradient.Lerp(a, b, viper.GetFloat64("gradient.lerp_t"), ch); err != nil {
				return err
			}
		}
	}

	out := cmd.OutOrStdout()
	for _, g := range gradients {
		if viper.GetBool("gradient.json") {
			data, err := json.Marshal(g)
			if err != nil {
				return fmt.Errorf("failed to encode gradient: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}
		fmt.Fprintln(out, g.String())
	}

	if preview := viper.GetString("gradient.preview"); preview != "" {
		format, err := texture.FormatFromPath(preview)
		if err != nil {
			return err
		}
		strip := gradient.Strip(gradients[0], viper.GetInt("gradient.preview_width"), viper.GetInt("gradient.preview_height"))
		if err := (&texture.FileReceiver{Path: preview, Format: format}).ReceiveTexture(strip); err != nil {
			return err
		}
		logger.Info("Gradient preview written", "path", preview)
	}
	return nil
}
