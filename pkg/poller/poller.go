package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is one unit of periodic work.
type Task func()

// Poller runs its tasks in order on every tick of a fixed interval. All tasks share the one
// ticker, so they never overlap each other.
type Poller struct {
	interval time.Duration
	tasks    []Task

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a stopped Poller.
func New(interval time.Duration, tasks ...Task) *Poller {
	return &Poller{interval: interval, tasks: tasks}
}

// Start launches the ticker goroutine. It is a no-op when already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)

	log.Debug().Dur("interval", p.interval).Msg("poller started")
}

// Stop cancels the ticker and waits for the goroutine to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	log.Debug().Msg("poller stopped")
}

// Running reports whether the ticker goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cancel != nil
}

// Tick runs every task once, synchronously.
func (p *Poller) Tick() {
	for _, task := range p.tasks {
		runTask(task)
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

func runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("poller task panicked")
		}
	}()

	task()
}
