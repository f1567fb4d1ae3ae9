// Package worker renders batches of texture variants in parallel.
package worker

import (
	"context"
	"sync"
	"time"
)

// Renderer produces one output file per task.
type Renderer interface {
	Render(ctx context.Context, task Task) (path string, err error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, task Task) (string, error)

// Render calls f(ctx, task).
func (f RendererFunc) Render(ctx context.Context, task Task) (string, error) { return f(ctx, task) }

// Task is a single variant to render.
type Task struct {
	Index int
	Name  string
	Seed  int64
}

// Result is the outcome of a task.
type Result struct {
	Task    Task
	Path    string
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Renderer   Renderer
	OnProgress ProgressFunc
}

// Pool runs render tasks on a fixed number of goroutines.
type Pool struct {
	workers    int
	renderer   Renderer
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		renderer:   cfg.Renderer,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns one result per task, in task order.
// It blocks until every task has finished or the context is cancelled;
// tasks never started get ctx.Err() as their error.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]Result, len(tasks))
	started := make([]bool, len(tasks))
	indexCh := make(chan int)

	var (
		mu        sync.Mutex
		completed int
		failed    int
	)
	// report serializes progress callbacks so counts never go backwards.
	report := func(i int, r Result) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = r
		completed++
		if r.Err != nil {
			failed++
		}
		if p.onProgress != nil {
			p.onProgress(completed, len(tasks), failed)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				report(i, p.render(ctx, tasks[i]))
			}
		}()
	}

feed:
	for i := range tasks {
		select {
		case indexCh <- i:
			started[i] = true
		case <-ctx.Done():
			break feed
		}
	}
	close(indexCh)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			report(i, Result{Task: tasks[i], Err: ctx.Err()})
		}
	}
	return results
}

func (p *Pool) render(ctx context.Context, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{Task: task, Err: err}
	}

	start := time.Now()
	path, err := p.renderer.Render(ctx, task)
	return Result{
		Task:    task,
		Path:    path,
		Err:     err,
		Elapsed: time.Since(start),
	}
}

// Seeded builds count tasks named prefix_0000.. with consecutive seeds.
func Seeded(prefix string, baseSeed int64, count int) []Task {
	tasks := make([]Task, count)
	for i := range tasks {
		tasks[i] = Task{
			Index: i,
			Name:  variantName(prefix, i),
			Seed:  baseSeed + int64(i),
		}
	}
	return tasks
}
