package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweepable is a dedup guard that needs its expired claims collected.
type Sweepable interface {
	Sweep(now time.Time) int
}

// DedupSweeper periodically removes expired claims from an in-process dedup
// guard. An interval of 0 disables it.
type DedupSweeper struct {
	guard    Sweepable
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

func NewDedupSweeper(g Sweepable, interval time.Duration, logger zerolog.Logger) *DedupSweeper {
	return &DedupSweeper{
		guard:    g,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs a sweep immediately, then on every tick until ctx is cancelled
// or Stop is called.
func (p *DedupSweeper) Start(ctx context.Context) {
	p.started = true
	if p.interval <= 0 {
		p.logger.Info().Msg("dedup sweeper disabled (interval=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info().Dur("interval", p.interval).Msg("dedup sweeper started")
}

// Stop signals the loop to exit and waits for it. Safe to call repeatedly,
// and before Start.
func (p *DedupSweeper) Stop() {
	if !p.started {
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *DedupSweeper) loop(ctx context.Context) {
	defer close(p.done)

	p.sweep()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *DedupSweeper) sweep() {
	if n := p.guard.Sweep(p.now()); n > 0 {
		p.logger.Debug().Int("removed", n).Msg("dedup sweep")
	}
}
