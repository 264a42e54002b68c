package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gekko3d/pointcloud"

	"github.com/cenkalti/backoff/v4"
)

// Session is one device generation: a frame loop plus the resources behind it.
type Session struct {
	Orchestrator *Orchestrator
	Resize       func(width, height int)
	Release      func()
}

// Factory builds a session whose frame counter starts at startFrame.
type Factory func(startFrame uint64) (*Session, error)

// Supervisor runs sessions and rebuilds them after the device is lost.
type Supervisor struct {
	// NewBackOff returns the retry policy for one rebuild.
	NewBackOff func() backoff.BackOff

	factory Factory
	log     pointcloud.Logger
	metrics *pointcloud.Metrics

	mu      sync.Mutex
	current *Session
}

func NewSupervisor(factory Factory, logger pointcloud.Logger, metrics *pointcloud.Metrics) *Supervisor {
	return &Supervisor{
		NewBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
		},
		factory: factory,
		log:     pointcloud.OrNop(logger),
		metrics: pointcloud.OrDiscard(metrics),
	}
}

// Current returns the running session, or nil between sessions.
func (s *Supervisor) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Resize forwards to the running session.
func (s *Supervisor) Resize(width, height int) {
	if cur := s.Current(); cur != nil && cur.Resize != nil {
		cur.Resize(width, height)
	}
}

func (s *Supervisor) Run(ctx context.Context, sched Scheduler) error {
	session, err := s.factory(0)
	if err != nil {
		return err
	}
	s.swap(session)
	defer s.swap(nil)

	for {
		err := session.Orchestrator.Run(ctx, sched)
		if !errors.Is(err, pointcloud.ErrDeviceLost) {
			return err
		}
		frame := session.Orchestrator.FrameCount()
		s.log.Warnf("device lost at frame %d, rebuilding pipelines", frame)
		s.swap(nil)

		if session, err = s.rebuild(ctx, frame); err != nil || session == nil {
			return err
		}
		s.swap(session)
		s.metrics.Recoveries.Inc()
		s.log.Infof("recovered at frame %d", frame)
	}
}

func (s *Supervisor) rebuild(ctx context.Context, frame uint64) (*Session, error) {
	var session *Session
	attempt := 0
	op := func() error {
		attempt++
		var err error
		session, err = s.factory(frame)
		if err == nil {
			return nil
		}
		if errors.Is(err, pointcloud.ErrDeviceUnavailable) || errors.Is(err, pointcloud.ErrDeviceLost) {
			s.log.Warnf("rebuild attempt %d: %v", attempt, err)
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(op, backoff.WithContext(s.NewBackOff(), ctx)); err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("recover from device loss: %w", err)
	}
	return session, nil
}

// swap installs next as the current session and releases the previous one.
func (s *Supervisor) swap(next *Session) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()
	if prev != nil && prev != next && prev.Release != nil {
		prev.Release()
	}
}
