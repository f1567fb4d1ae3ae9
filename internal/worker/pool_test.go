package worker

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/noisegen/internal/noise"
	"github.com/MeKo-Tech/noisegen/internal/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRenderer simulates variant rendering for testing
type mockRenderer struct {
	delay     time.Duration
	failSeeds map[int64]bool
	callCount atomic.Int32
}

func (m *mockRenderer) Render(ctx context.Context, task Task) (string, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(m.delay):
	}

	if m.failSeeds[task.Seed] {
		return "", errors.New("simulated failure")
	}
	return "/tmp/" + task.Name + ".png", nil
}

func TestSeeded(t *testing.T) {
	tasks := Seeded("noise", 100, 3)
	require.Len(t, tasks, 3)
	assert.Equal(t, Task{Index: 2, Name: "noise_0002", Seed: 102}, tasks[2])
}

func TestPool_BasicExecution(t *testing.T) {
	r := &mockRenderer{delay: 10 * time.Millisecond}
	pool := New(Config{Workers: 2, Renderer: r})

	tasks := Seeded("v", 1, 3)
	results := pool.Run(context.Background(), tasks)

	require.Len(t, results, len(tasks))
	for i, res := range results {
		assert.NoError(t, res.Err)
		assert.Equal(t, tasks[i], res.Task, "results keep task order")
		assert.Equal(t, "/tmp/"+tasks[i].Name+".png", res.Path)
	}
	assert.Equal(t, int32(3), r.callCount.Load())
}

func TestPool_Parallelism(t *testing.T) {
	r := &mockRenderer{delay: 50 * time.Millisecond}
	pool := New(Config{Workers: 4, Renderer: r})

	start := time.Now()
	results := pool.Run(context.Background(), Seeded("v", 0, 8))
	elapsed := time.Since(start)

	// 8 tasks on 4 workers at 50ms each is about two rounds
	if elapsed > 300*time.Millisecond {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}
	assert.Len(t, results, 8)
}

func TestPool_ErrorHandling(t *testing.T) {
	r := &mockRenderer{delay: 5 * time.Millisecond, failSeeds: map[int64]bool{11: true}}
	pool := New(Config{Workers: 2, Renderer: r})

	results := pool.Run(context.Background(), Seeded("v", 10, 3))
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestPool_Cancellation(t *testing.T) {
	r := &mockRenderer{delay: 100 * time.Millisecond}
	pool := New(Config{Workers: 2, Renderer: r})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, Seeded("v", 0, 10))
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("Expected early cancellation, took %v", elapsed)
	}
	require.Len(t, results, 10)
	cancelled := 0
	for i, res := range results {
		assert.Equal(t, i, res.Task.Index)
		if errors.Is(res.Err, context.Canceled) {
			cancelled++
		}
	}
	assert.Equal(t, 10, cancelled)
	assert.Less(t, r.callCount.Load(), int32(10))
}

func TestPool_ProgressCallback(t *testing.T) {
	r := &mockRenderer{delay: 5 * time.Millisecond, failSeeds: map[int64]bool{0: true}}

	var seen []int
	var lastTotal, lastFailed int
	pool := New(Config{
		Workers:  3,
		Renderer: r,
		OnProgress: func(completed, total, failed int) {
			seen = append(seen, completed)
			lastTotal = total
			lastFailed = failed
		},
	})

	pool.Run(context.Background(), Seeded("v", 0, 5))

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Equal(t, 5, lastTotal)
	assert.Equal(t, 1, lastFailed)
}

func TestPool_EmptyTasks(t *testing.T) {
	r := &mockRenderer{}
	pool := New(Config{Workers: 2, Renderer: r})

	assert.Empty(t, pool.Run(context.Background(), nil))
	assert.Zero(t, r.callCount.Load())
}

func TestTextureRenderer(t *testing.T) {
	dir := t.TempDir()
	cfg := texture.DefaultConfig()
	cfg.Resolution = 8
	cfg.Family = noise.Simplex
	cfg.Generator.Grayscale = true

	renderer := &TextureRenderer{
		Config:         cfg,
		Dir:            dir,
		Format:         texture.PNG,
		RandomizeSpace: true,
	}
	pool := New(Config{Workers: 2, Renderer: renderer})
	results := pool.Run(context.Background(), Seeded("variant", 7, 3))

	require.Len(t, results, 3)
	var first []byte
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, filepath.Join(dir, res.Task.Name+".png"), res.Path)

		data, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		f, err := os.Open(res.Path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())

		if i == 0 {
			first = data
		} else {
			assert.NotEqual(t, first, data, "seeds produce different variants")
		}
	}

	// the same seed renders the same bytes
	again, err := renderer.Render(context.Background(), Task{Name: "again", Seed: 7})
	require.NoError(t, err)
	a, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, first, a)
}
