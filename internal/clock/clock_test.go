package clock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	var total time.Duration
	calls := 0
	err := Simulate(5, 100*time.Millisecond, TickFunc(func(d time.Duration) error {
		total += d
		calls++
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, 500*time.Millisecond, total)
}

func TestSimulate_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Simulate(10, time.Millisecond, TickFunc(func(time.Duration) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestGroup(t *testing.T) {
	var order []string
	g := Group{
		TickFunc(func(time.Duration) error { order = append(order, "a"); return nil }),
		TickFunc(func(time.Duration) error { order = append(order, "b"); return nil }),
	}
	require.NoError(t, g.Tick(time.Millisecond))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, 5*time.Millisecond, TickFunc(func(d time.Duration) error {
			assert.Greater(t, d, time.Duration(0))
			if calls.Add(1) == 3 {
				cancel()
			}
			return nil
		}))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestRun_Error(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), time.Millisecond, TickFunc(func(time.Duration) error { return boom }))
	assert.ErrorIs(t, err, boom)

	assert.Error(t, Run(context.Background(), 0, TickFunc(func(time.Duration) error { return nil })))
}
