package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/server"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve archived frames and live websocket previews",
	Long: `Serve frames of an archive written by "noisegen animate" under /frames/{n}
and stream live synthesizer output over websockets:

  /stream/texture  binary PNG messages, one per refreshed texture
  /stream/terrain  JSON mesh messages, one per rebuilt terrain

Noise, gradient, texture and terrain flags configure the live streams.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	tex := texture.DefaultConfig()
	flags := serveCmd.Flags()
	flags.String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	flags.String("archive", "", "Frame archive to serve under /frames/")
	flags.String("cache-control", "no-store", "Cache-Control header for served frames")
	flags.Duration("tick", 100*time.Millisecond, "Interval of the live synthesis loop")
	flags.Bool("texture", true, "Enable the live texture stream")
	flags.Bool("terrain", true, "Enable the live terrain stream")
	addNoiseFlags(flags, "serve", tex.Family, tex.Dimensions, tex.Fractal)
	addGradientFlags(flags, "serve", "0:#000000,1:#ffffff")
	addTextureFlags(flags, "serve")
	addTerrainFlags(flags, "serve")

	bindFlags(flags, []flagBinding{
		{"serve.addr", "addr"},
		{"serve.archive", "archive"},
		{"serve.cache_control", "cache-control"},
		{"serve.tick", "tick"},
		{"serve.texture", "texture"},
		{"serve.terrain", "terrain"},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg := server.Config{
		Addr:         viper.GetString("serve.addr"),
		ArchivePath:  viper.GetString("serve.archive"),
		CacheControl: viper.GetString("serve.cache_control"),
		TickInterval: durationOrDefault(viper.GetDuration("serve.tick"), 100*time.Millisecond),
		Seed:         viper.GetInt64("serve.seed"),
	}
	if viper.GetBool("serve.texture") {
		tc, err := readTextureConfig("serve")
		if err != nil {
			return err
		}
		cfg.Texture = &tc
	}
	if viper.GetBool("serve.terrain") {
		tc, err := readTerrainConfig("serve")
		if err != nil {
			return err
		}
		// a live terrain preview always scrolls
		tc.Scroll.Enabled = true
		cfg.Terrain = &tc
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
