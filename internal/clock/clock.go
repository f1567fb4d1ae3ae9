// Package clock drives Tick(elapsed) callbacks in real time or offline.
package clock

import (
	"context"
	"errors"
	"time"
)

// Ticker is anything advanced by elapsed time, e.g. a terrain synthesizer
// or texture creator.
type Ticker interface {
	Tick(elapsed time.Duration) error
}

// TickFunc adapts a function to Ticker.
type TickFunc func(elapsed time.Duration) error

// Tick calls f(elapsed).
func (f TickFunc) Tick(elapsed time.Duration) error { return f(elapsed) }

// Group ticks several tickers in order and stops at the first error.
type Group []Ticker

// Tick advances every member by elapsed.
func (g Group) Tick(elapsed time.Duration) error {
	for _, t := range g {
		if err := t.Tick(elapsed); err != nil {
			return err
		}
	}
	return nil
}

// Run calls t.Tick every interval with the wall time measured since the
// previous call. It returns nil when ctx is cancelled, or the first tick error.
func Run(ctx context.Context, interval time.Duration, t Ticker) error {
	if interval <= 0 {
		return errors.New("tick interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if err := t.Tick(elapsed); err != nil {
				return err
			}
		}
	}
}

// Simulate calls t.Tick frames times with a fixed step, without waiting.
func Simulate(frames int, step time.Duration, t Ticker) error {
	for i := 0; i < frames; i++ {
		if err := t.Tick(step); err != nil {
			return err
		}
	}
	return nil
}
