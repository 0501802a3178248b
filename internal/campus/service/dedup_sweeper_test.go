package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BrandonDHaskell/campusgate/internal/campus/service"
)

type countingGuard struct{ sweeps atomic.Int32 }

func (g *countingGuard) Sweep(time.Time) int {
	g.sweeps.Add(1)
	return 0
}

func TestDedupSweeper_DisabledWhenIntervalZero(t *testing.T) {
	g := &countingGuard{}
	sw := service.NewDedupSweeper(g, 0, silentLogger())

	sw.Start(context.Background())
	sw.Stop()

	if n := g.sweeps.Load(); n != 0 {
		t.Errorf("expected no sweeps, got %d", n)
	}
}

func TestDedupSweeper_SweepsImmediatelyAndOnTick(t *testing.T) {
	g := &countingGuard{}
	sw := service.NewDedupSweeper(g, 10*time.Millisecond, silentLogger())

	sw.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for g.sweeps.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	sw.Stop()

	if n := g.sweeps.Load(); n < 2 {
		t.Errorf("expected at least 2 sweeps, got %d", n)
	}
}

func TestDedupSweeper_StopIsIdempotent(t *testing.T) {
	sw := service.NewDedupSweeper(&countingGuard{}, time.Hour, silentLogger())

	sw.Stop() // before Start

	ctx, cancel := context.WithCancel(context.Background())
	sw.Start(ctx)
	cancel()
	sw.Stop()
	sw.Stop()
}
