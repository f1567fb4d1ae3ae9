package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/texture"
)

func variantName(prefix string, i int) string {
	return fmt.Sprintf("%s_%04d", prefix, i)
}

// TextureRenderer renders one texture per task. Each task seeds its own
// noise table, random gradient, offsets and rotation, so variants differ
// while staying reproducible.
type TextureRenderer struct {
	Config texture.Config
	Dir    string
	Format texture.Format
	// RandomizeSpace draws offset and rotation from the task seed.
	RandomizeSpace bool
	Logger         *slog.Logger
}

func (r *TextureRenderer) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Render writes Dir/<task name><ext>.
func (r *TextureRenderer) Render(ctx context.Context, task Task) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cfg := r.Config
	cfg.Seed = task.Seed

	path := filepath.Join(r.Dir, task.Name+r.Format.Extension())
	recv := &texture.FileReceiver{Path: path, Format: r.Format}

	creator, err := texture.New(cfg, noise.NewTable(task.Seed), recv, r.Logger)
	if err != nil {
		return "", fmt.Errorf("failed to configure variant %s: %w", task.Name, err)
	}
	if r.RandomizeSpace {
		rng := rand.New(rand.NewSource(task.Seed))
		creator.RandomizeOffsets(rng)
		creator.RandomizeRotation(rng)
	}
	if err := creator.Create(); err != nil {
		return "", fmt.Errorf("failed to render variant %s: %w", task.Name, err)
	}
	creator.Destroy()

	r.log().Debug("Variant rendered", "name", task.Name, "seed", task.Seed, "path", path)
	return path, nil
}
