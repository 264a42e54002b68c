package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gekko3d/pointcloud"
	"github.com/gekko3d/pointcloud/pointrt/rt/core"
)

// Backend is the GPU side of a frame. gpu.Pipelines implements it.
type Backend interface {
	WriteParams(data []byte) error
	WriteParticles(data []byte) error
	Submit(plan core.FramePlan) error
}

type Options struct {
	Policy   pointcloud.UpdatePolicy
	Logger   pointcloud.Logger
	Metrics  *pointcloud.Metrics
	Profiler *Profiler
	// StartFrame is the counter value before the first frame. A rebuilt session passes
	// the value reached by the lost one.
	StartFrame uint64
	// StatsEvery dumps the profiler at debug level every n frames. 0 disables it.
	StatsEvery uint64
}

// Orchestrator drives the per-frame sequence: params write, optional particle rewrite,
// then one submission. It owns the frame counter.
type Orchestrator struct {
	backend Backend
	set     *core.ParticleSet
	plan    core.FramePlan
	policy  pointcloud.UpdatePolicy
	frame   uint64

	log        pointcloud.Logger
	metrics    *pointcloud.Metrics
	prof       *Profiler
	statsEvery uint64
}

func NewOrchestrator(backend Backend, set *core.ParticleSet, opts Options) (*Orchestrator, error) {
	if backend == nil {
		return nil, errors.New("orchestrator: nil backend")
	}
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("%w: orchestrator needs at least one particle", pointcloud.ErrInvalidConfig)
	}
	return &Orchestrator{
		backend:    backend,
		set:        set,
		plan:       core.PlanFrame(set.Len()),
		policy:     opts.Policy,
		frame:      opts.StartFrame,
		log:        pointcloud.OrNop(opts.Logger),
		metrics:    pointcloud.OrDiscard(opts.Metrics),
		prof:       opts.Profiler,
		statsEvery: opts.StatsEvery,
	}, nil
}

// FrameCount is the number of frames started so far, including skipped ones.
func (o *Orchestrator) FrameCount() uint64 {
	return o.frame
}

func (o *Orchestrator) Plan() core.FramePlan {
	return o.plan
}

// Frame runs one iteration. The counter advances before any write so the first frame
// uploads 1.
func (o *Orchestrator) Frame() error {
	start := time.Now()
	o.frame++

	o.prof.BeginScope("params")
	err := o.backend.WriteParams(core.SimParams{Frame: float32(o.frame)}.Bytes())
	o.prof.EndScope("params")
	if err != nil {
		return fmt.Errorf("frame %d: write params: %w", o.frame, err)
	}

	if o.policy.RewritesParticles() {
		o.prof.BeginScope("particles")
		err = o.backend.WriteParticles(o.set.Bytes())
		o.prof.EndScope("particles")
		if err != nil {
			return fmt.Errorf("frame %d: write particles: %w", o.frame, err)
		}
	}

	o.prof.BeginScope("submit")
	err = o.backend.Submit(o.plan)
	o.prof.EndScope("submit")
	o.metrics.FrameSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, pointcloud.ErrFrameSkipped) {
			o.metrics.SkippedFrames.Inc()
		}
		return fmt.Errorf("frame %d: %w", o.frame, err)
	}
	o.metrics.Frames.Inc()

	o.prof.EndFrame()
	if o.prof != nil && o.statsEvery > 0 && o.frame%o.statsEvery == 0 && o.log.DebugEnabled() {
		o.prof.SetCount("particles", o.set.Len())
		o.prof.SetCount("workgroups", int(o.plan.Workgroups))
		o.log.Debugf("frame %d\n%s", o.frame, o.prof.StatsString())
		o.prof.Reset()
	}
	return nil
}

// Run produces frames until sched stops or ctx is cancelled, both of which return nil.
// Skipped frames are logged and the loop continues; any other error ends it.
func (o *Orchestrator) Run(ctx context.Context, sched Scheduler) error {
	for {
		if err := sched.Next(ctx); err != nil {
			if errors.Is(err, ErrStopped) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := o.Frame(); err != nil {
			if errors.Is(err, pointcloud.ErrFrameSkipped) {
				o.log.Warnf("%v", err)
				continue
			}
			return err
		}
	}
}
