package app

import (
	"context"
	"errors"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrStopped is returned by a Scheduler when no more frames should be produced.
var ErrStopped = errors.New("scheduler stopped")

// Scheduler paces the frame loop. Next blocks until the next frame may start.
type Scheduler interface {
	Next(ctx context.Context) error
}

type SchedulerFunc func(ctx context.Context) error

func (f SchedulerFunc) Next(ctx context.Context) error { return f(ctx) }

// WindowScheduler runs one frame per event poll until the window is asked to close.
type WindowScheduler struct {
	Window *glfw.Window
}

func (s WindowScheduler) Next(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	glfw.PollEvents()
	if s.Window.ShouldClose() {
		return ErrStopped
	}
	return nil
}

type pacedScheduler struct {
	inner    Scheduler
	interval time.Duration
	now      func() time.Time
	next     time.Time
}

// Paced caps inner at fps frames per second. fps <= 0 returns inner unchanged.
func Paced(inner Scheduler, fps int) Scheduler {
	if fps <= 0 {
		return inner
	}
	return &pacedScheduler{
		inner:    inner,
		interval: time.Second / time.Duration(fps),
		now:      time.Now,
	}
}

func (p *pacedScheduler) Next(ctx context.Context) error {
	now := p.now()
	if wait := p.next.Sub(now); wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		now = p.next
	}
	p.next = now.Add(p.interval)
	return p.inner.Next(ctx)
}
