package gpu

import (
	"fmt"

	"github.com/gekko3d/pointcloud"
	"github.com/gekko3d/pointcloud/pointrt/rt/core"
	"github.com/gekko3d/pointcloud/pointrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

// Group 0 of compute.wgsl.
func computeBindGroupLayoutDescriptor() *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: "Particle Compute BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeStorage,
					MinBindingSize: core.RecordSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: core.ParamsSize,
				},
			},
		},
	}
}

// ComputeStage advances every particle, one invocation per particle.
type ComputeStage struct {
	EntryPoint string

	module         *wgpu.ShaderModule
	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.ComputePipeline
	bindGroup      *wgpu.BindGroup
}

func newComputeStage(ctx *Context, buffers *Buffers, policy pointcloud.UpdatePolicy) (*ComputeStage, error) {
	s := &ComputeStage{EntryPoint: shaders.ComputeEntryPoint(policy)}
	built := false
	defer func() {
		if !built {
			s.Release()
		}
	}()

	var err error
	s.module, err = ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Particle CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ComputeWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("compute shader: %w", err)
	}

	s.layout, err = ctx.Device.CreateBindGroupLayout(computeBindGroupLayoutDescriptor())
	if err != nil {
		return nil, fmt.Errorf("compute bind group layout: %w", err)
	}
	s.pipelineLayout, err = ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Particle Compute Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.layout},
	})
	if err != nil {
		return nil, fmt.Errorf("compute pipeline layout: %w", err)
	}

	s.pipeline, err = ctx.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  ctx.label("Particle Compute Pipeline"),
		Layout: s.pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s.module,
			EntryPoint: s.EntryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compute pipeline: %w", err)
	}

	s.bindGroup, err = ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Particle Compute BG",
		Layout: s.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buffers.Particles, Offset: 0, Size: buffers.ParticleSize},
			{Binding: 1, Buffer: buffers.Params, Offset: 0, Size: core.ParamsSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compute bind group: %w", err)
	}
	built = true
	return s, nil
}

func (s *ComputeStage) encode(encoder *wgpu.CommandEncoder, workgroups uint32) error {
	pass := encoder.BeginComputePass(nil)
	defer pass.Release()
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, s.bindGroup, nil)
	if workgroups > 0 {
		pass.DispatchWorkgroups(workgroups, 1, 1)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("compute pass: %w", err)
	}
	return nil
}

func (s *ComputeStage) Release() {
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
}
