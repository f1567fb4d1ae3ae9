package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/MeKo-Tech/noisegen/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render seeded texture variants in parallel",
	Long: `Render --count texture variants with a worker pool. Variant i uses seed
base+i for its noise table and random gradient, so a batch can be re-rendered
exactly. Unless --colors is given every variant draws its own gradient.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	tex := texture.DefaultConfig()
	flags := batchCmd.Flags()
	flags.StringP("output-dir", "o", "variants", "Directory for rendered variants")
	flags.String("prefix", "texture", "File name prefix")
	flags.String("format", texture.PNG.String(), "Image format (png, bmp, tiff)")
	flags.Int("count", 16, "Number of variants")
	flags.Int("workers", runtime.NumCPU(), "Number of parallel workers")
	flags.Bool("progress", true, "Show progress bar")
	flags.Bool("randomize", true, "Randomize offset and rotation per variant")
	flags.Bool("allow-failures", false, "Exit successfully even if some variants fail")
	addNoiseFlags(flags, "batch", tex.Family, tex.Dimensions, tex.Fractal)
	addGradientFlags(flags, "batch", "")
	addTextureFlags(flags, "batch")

	bindFlags(flags, []flagBinding{
		{"batch.output_dir", "output-dir"},
		{"batch.prefix", "prefix"},
		{"batch.format", "format"},
		{"batch.count", "count"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.randomize", "randomize"},
		{"batch.allow_failures", "allow-failures"},
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg, err := readTextureConfig("batch")
	if err != nil {
		return err
	}
	format, err := texture.ParseFormat(viper.GetString("batch.format"))
	if err != nil {
		return err
	}
	count := viper.GetInt("batch.count")
	if count < 1 {
		return fmt.Errorf("count must be positive")
	}
	dir := viper.GetString("batch.output_dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	tasks := worker.Seeded(viper.GetString("batch.prefix"), cfg.Seed, count)

	progress := worker.NewProgress(len(tasks), "variants", viper.GetBool("batch.progress"))
	pool := worker.New(worker.Config{
		Workers: viper.GetInt("batch.workers"),
		Renderer: &worker.TextureRenderer{
			Config:         cfg,
			Dir:            dir,
			Format:         format,
			RandomizeSpace: viper.GetBool("batch.randomize"),
			Logger:         logger,
		},
		OnProgress: progress.Callback(),
	})

	logger.Info("Rendering variants", "count", len(tasks), "dir", dir)
	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Variant failed", "name", r.Task.Name, "seed", r.Task.Seed, "error", r.Err)
		}
	}

	logger.Info(progress.Summary())

	if failedCount > 0 {
		if viper.GetBool("batch.allow_failures") {
			logger.Warn("Some variants failed, continuing due to --allow-failures", "failed_count", failedCount)
			return nil
		}
		return fmt.Errorf("%d of %d variants failed", failedCount, len(tasks))
	}
	return nil
}
