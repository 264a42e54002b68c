package gpu

import (
	"fmt"

	"github.com/gekko3d/pointcloud/pointrt/rt/core"
	"github.com/gekko3d/pointcloud/pointrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

// Slot 0 describes the particle record; it is fed by one degenerate vertex.
func vertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: core.RecordSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: core.PositionOffset, ShaderLocation: 0}, // position
			{Format: wgpu.VertexFormatFloat32x3, Offset: core.VelocityOffset, ShaderLocation: 1}, // velocity
		},
	}
}

// Group 0 of points.wgsl.
func renderBindGroupLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Particle Render BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeReadOnlyStorage,
					HasDynamicOffset: false,
					MinBindingSize:   core.RecordSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: core.CameraSize,
				},
			},
		},
	}
}

// Point list, no depth buffer, a single color target in the surface format.
func renderPipelineDescriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	return &wgpu.RenderPipelineDescriptor{
		Label:  "Particle Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shaders.VertexEntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shaders.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyPointList,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}

func colorAttachment(view *wgpu.TextureView, clear [4]float64) wgpu.RenderPassColorAttachment {
	return wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]},
	}
}

// RenderStage draws one point per particle.
type RenderStage struct {
	Format wgpu.TextureFormat

	module         *wgpu.ShaderModule
	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.RenderPipeline
	bindGroup      *wgpu.BindGroup
	vertex         *wgpu.Buffer
}

func newRenderStage(ctx *Context, buffers *Buffers) (*RenderStage, error) {
	s := &RenderStage{Format: ctx.Format(), vertex: buffers.Vertex}
	built := false
	defer func() {
		if !built {
			s.Release()
		}
	}()

	var err error
	s.module, err = ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Particle VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PointsWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("render shader: %w", err)
	}

	s.layout, err = ctx.Device.CreateBindGroupLayout(renderBindGroupLayoutDescriptor())
	if err != nil {
		return nil, fmt.Errorf("render bind group layout: %w", err)
	}
	s.pipelineLayout, err = ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Particle Render Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.layout},
	})
	if err != nil {
		return nil, fmt.Errorf("render pipeline layout: %w", err)
	}

	desc := renderPipelineDescriptor(s.module, s.pipelineLayout, s.Format)
	desc.Label = ctx.label(desc.Label)
	s.pipeline, err = ctx.Device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("render pipeline: %w", err)
	}

	s.bindGroup, err = ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Particle Render BG",
		Layout: s.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buffers.Particles, Offset: 0, Size: buffers.ParticleSize},
			{Binding: 1, Buffer: buffers.Camera, Offset: 0, Size: core.CameraSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render bind group: %w", err)
	}
	built = true
	return s, nil
}

func (s *RenderStage) encode(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, plan core.FramePlan) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment(view, plan.Clear)},
	})
	defer pass.Release()

	pass.SetPipeline(s.pipeline)
	pass.SetVertexBuffer(0, s.vertex, 0, wgpu.WholeSize)
	pass.SetBindGroup(0, s.bindGroup, nil)
	d := plan.Draw
	pass.Draw(d.VertexCount, d.InstanceCount, d.FirstVertex, d.FirstInstance)
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}
	return nil
}

// Release frees the stage's own objects. The vertex buffer belongs to Buffers.
func (s *RenderStage) Release() {
	if s.bindGroup != nil {
		s.bindGroup.Release()
		s.bindGroup = nil
	}
	if s.pipeline != nil {
		s.pipeline.Release()
		s.pipeline = nil
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
		s.pipelineLayout = nil
	}
	if s.layout != nil {
		s.layout.Release()
		s.layout = nil
	}
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
	s.vertex = nil
}
