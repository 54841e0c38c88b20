// Package sched runs fixed-interval periodic jobs on their own goroutines.
package sched

import (
	"context"
	"sync"
	"time"

	"github.com/cjeanneret/OrniPad/internal/debug"
)

// Task is a named periodic job.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func()
}

// Every calls fn once per interval until ctx is done. A run slower than
// the interval makes the ticker drop the missed ticks; runs never queue
// up or overlap.
func Every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// Sleep pauses for d or until ctx is done. It reports false if ctx
// ended first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Group runs a set of periodic tasks, each on its own goroutine.
type Group struct {
	wg sync.WaitGroup
}

// Start launches t. It returns immediately.
func (g *Group) Start(ctx context.Context, t Task) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		debug.Verbose("Task %s started (every %v)", t.Name, t.Interval)
		Every(ctx, t.Interval, t.Run)
		debug.Verbose("Task %s stopped", t.Name)
	}()
}

// Go runs fn on its own goroutine and tracks it like a task.
func (g *Group) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until every started task has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
