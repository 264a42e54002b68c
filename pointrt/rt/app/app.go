package app

import (
	"context"
	"math/rand"
	"time"

	"github.com/gekko3d/pointcloud"
	"github.com/gekko3d/pointcloud/pointrt/rt/core"
	"github.com/gekko3d/pointcloud/pointrt/rt/gpu"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const statsEvery = 300

type App struct {
	Window   *glfw.Window
	Config   pointcloud.Config
	Camera   core.Camera
	Profiler *Profiler

	log        pointcloud.Logger
	metrics    *pointcloud.Metrics
	supervisor *Supervisor
}

func NewApp(window *glfw.Window, cfg pointcloud.Config, logger pointcloud.Logger, metrics *pointcloud.Metrics) *App {
	a := &App{
		Window:  window,
		Config:  cfg,
		Camera:  core.DefaultCamera(),
		log:     pointcloud.OrNop(logger),
		metrics: pointcloud.OrDiscard(metrics),
	}
	if cfg.Debug {
		a.Profiler = NewProfiler()
	}
	return a
}

// Run generates the particle set, brings up the device and renders until the window
// closes or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	format, err := gpu.ParseFormat(a.Config.Format)
	if err != nil {
		return err
	}

	seed := a.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	set, err := core.Generate(a.Config.Particles, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	a.metrics.Particles.Set(float64(set.Len()))
	a.log.Infof("generated %d particles (seed %d, policy %s)", set.Len(), seed, a.Config.UpdatePolicy())

	a.supervisor = NewSupervisor(a.sessionFactory(set, format), a.log, a.metrics)
	a.Window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		a.supervisor.Resize(width, height)
	})
	defer a.Window.SetFramebufferSizeCallback(nil)

	sched := Paced(WindowScheduler{Window: a.Window}, a.Config.MaxFPS)
	return a.supervisor.Run(ctx, sched)
}

func (a *App) sessionFactory(set *core.ParticleSet, format wgpu.TextureFormat) Factory {
	policy := a.Config.UpdatePolicy()
	return func(startFrame uint64) (*Session, error) {
		ctx, err := gpu.NewContext(a.Window, gpu.ContextOptions{Format: format, Logger: a.log})
		if err != nil {
			return nil, err
		}
		pipes, err := gpu.NewPipelines(ctx, set, gpu.PipelineOptions{
			Policy: policy,
			Camera: a.Camera,
			Logger: a.log,
		})
		if err != nil {
			ctx.Release()
			return nil, err
		}
		orch, err := NewOrchestrator(pipes, set, Options{
			Policy:     policy,
			Logger:     a.log,
			Metrics:    a.metrics,
			Profiler:   a.Profiler,
			StartFrame: startFrame,
			StatsEvery: statsEvery,
		})
		if err != nil {
			pipes.Release()
			ctx.Release()
			return nil, err
		}
		return &Session{
			Orchestrator: orch,
			Resize:       pipes.Resize,
			Release: func() {
				pipes.Release()
				ctx.Release()
			},
		}, nil
	}
}
