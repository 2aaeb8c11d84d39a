package poller_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-steen/remindlist/pkg/poller"
	"github.com/stretchr/testify/assert"
)

func TestTickRunsTasksInOrder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	order := []string{}
	p := poller.New(time.Hour,
		func() { order = append(order, "sweep") },
		func() { panic("boom") },
		func() { order = append(order, "check") },
	)

	assert.NotPanics(p.Tick)
	assert.Equal([]string{"sweep", "check"}, order)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	var ticks atomic.Int32

	p := poller.New(5*time.Millisecond, func() { ticks.Add(1) })
	assert.False(p.Running())

	p.Start(context.Background())
	p.Start(context.Background())
	assert.True(p.Running())

	assert.Eventually(func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	p.Stop()
	assert.False(p.Running())

	stopped := ticks.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(stopped, ticks.Load())

	// stopping twice is fine
	p.Stop()
}

func TestContextCancelStopsTicks(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	var ticks atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())

	p := poller.New(5*time.Millisecond, func() { ticks.Add(1) })
	p.Start(ctx)

	assert.Eventually(func() bool { return ticks.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	p.Stop()

	stopped := ticks.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(stopped, ticks.Load())
}
