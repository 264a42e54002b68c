package gpu

import (
	"fmt"

	"github.com/gekko3d/pointcloud"
	"github.com/gekko3d/pointcloud/pointrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

type PipelineOptions struct {
	Policy pointcloud.UpdatePolicy
	Camera core.Camera
	Logger pointcloud.Logger
}

// Pipelines bundles the buffers and both stages built on one Context. It can only be
// created from a ready Context, and the frame loop can only be created from Pipelines.
type Pipelines struct {
	ctx     *Context
	buffers *Buffers
	compute *ComputeStage
	render  *RenderStage
	camera  core.Camera
	log     pointcloud.Logger
}

func NewPipelines(ctx *Context, set *core.ParticleSet, opts PipelineOptions) (*Pipelines, error) {
	if err := core.CheckLayout(); err != nil {
		return nil, err
	}
	if ctx.Lost() {
		return nil, pointcloud.ErrDeviceLost
	}

	width, height := ctx.Size()
	plan, err := planBuffers(set, opts.Camera.Bytes(width, height))
	if err != nil {
		return nil, err
	}

	p := &Pipelines{
		ctx:    ctx,
		camera: opts.Camera,
		log:    pointcloud.OrNop(opts.Logger),
	}
	if p.buffers, err = newBuffers(ctx, plan); err != nil {
		return nil, err
	}
	if p.compute, err = newComputeStage(ctx, p.buffers, opts.Policy); err != nil {
		p.Release()
		return nil, err
	}
	if p.render, err = newRenderStage(ctx, p.buffers); err != nil {
		p.Release()
		return nil, err
	}

	p.log.Infof("pipelines ready: %d particles, %d bytes, compute entry %s, %d workgroups/frame",
		set.Len(), p.buffers.ParticleSize, p.compute.EntryPoint, core.DispatchCount(set.Len()))
	return p, nil
}

func (p *Pipelines) WriteParams(data []byte) error {
	if len(data) != core.ParamsSize {
		return fmt.Errorf("%w: params block is %d bytes, want %d", pointcloud.ErrLayoutMismatch, len(data), core.ParamsSize)
	}
	return p.write(p.buffers.Params, data)
}

func (p *Pipelines) WriteParticles(data []byte) error {
	if uint64(len(data)) != p.buffers.ParticleSize {
		return fmt.Errorf("%w: particle upload is %d bytes, buffer is %d", pointcloud.ErrLayoutMismatch, len(data), p.buffers.ParticleSize)
	}
	return p.write(p.buffers.Particles, data)
}

func (p *Pipelines) write(buf *wgpu.Buffer, data []byte) error {
	if p.ctx.Lost() {
		return pointcloud.ErrDeviceLost
	}
	if err := p.ctx.Queue.WriteBuffer(buf, 0, data); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	return nil
}

// Submit records the compute pass and then the render pass into one command buffer,
// submits it and presents. It never waits for the GPU.
func (p *Pipelines) Submit(plan core.FramePlan) error {
	if p.ctx.Lost() {
		return pointcloud.ErrDeviceLost
	}

	texture, err := p.ctx.Surface.GetCurrentTexture()
	if err != nil {
		if p.ctx.Lost() {
			return pointcloud.ErrDeviceLost
		}
		p.ctx.reconfigure()
		return fmt.Errorf("%w: get current texture: %v", pointcloud.ErrFrameSkipped, err)
	}
	defer texture.Release()

	view, err := texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := p.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	if err := p.compute.encode(encoder, plan.Workgroups); err != nil {
		return err
	}
	if err := p.render.encode(encoder, view, plan); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()

	p.ctx.Queue.Submit(cmd)
	p.ctx.Surface.Present()

	if p.ctx.Lost() {
		return pointcloud.ErrDeviceLost
	}
	return nil
}

// Resize reconfigures the surface and rewrites the camera for the new aspect ratio.
func (p *Pipelines) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.ctx.Resize(width, height)
	if err := p.write(p.buffers.Camera, p.camera.Bytes(width, height)); err != nil {
		p.log.Warnf("camera update after resize: %v", err)
	}
}

func (p *Pipelines) Release() {
	if p.render != nil {
		p.render.Release()
		p.render = nil
	}
	if p.compute != nil {
		p.compute.Release()
		p.compute = nil
	}
	if p.buffers != nil {
		p.buffers.Release()
		p.buffers = nil
	}
}
