package gpu

import (
	"fmt"

	"github.com/gekko3d/pointcloud"
	"github.com/gekko3d/pointcloud/pointrt/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

type bufferSpec struct {
	Label    string
	Size     uint64
	Usage    wgpu.BufferUsage
	Contents []byte
}

// bufferPlan sizes every buffer for a particle set. Pure, so the sizing contract can be
// checked without a device.
type bufferPlan struct {
	Particles bufferSpec
	Params    bufferSpec
	Camera    bufferSpec
	Vertex    bufferSpec
}

func planBuffers(set *core.ParticleSet, camera []byte) (bufferPlan, error) {
	if set.Len() == 0 {
		return bufferPlan{}, fmt.Errorf("%w: particle set is empty", pointcloud.ErrInvalidConfig)
	}
	if uint64(len(set.Bytes())) != set.ByteSize() {
		return bufferPlan{}, fmt.Errorf("%w: mirror is %d bytes, want %d", pointcloud.ErrLayoutMismatch, len(set.Bytes()), set.ByteSize())
	}
	if len(camera) != core.CameraSize {
		return bufferPlan{}, fmt.Errorf("%w: camera block is %d bytes, want %d", pointcloud.ErrLayoutMismatch, len(camera), core.CameraSize)
	}
	return bufferPlan{
		Particles: bufferSpec{
			Label:    "Particles",
			Size:     set.ByteSize(),
			Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			Contents: set.Bytes(),
		},
		Params: bufferSpec{
			Label:    "SimParams",
			Size:     core.ParamsSize,
			Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			Contents: core.SimParams{}.Bytes(),
		},
		Camera: bufferSpec{
			Label:    "Camera",
			Size:     core.CameraSize,
			Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			Contents: camera,
		},
		// One all-zero vertex; the pipeline needs a slot-0 buffer but per-particle data is
		// pulled from storage.
		Vertex: bufferSpec{
			Label:    "Particle Vertex",
			Size:     core.RecordSize,
			Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			Contents: make([]byte, core.RecordSize),
		},
	}, nil
}

// Buffers are device-owned; the host only writes into them through the queue.
type Buffers struct {
	Particles *wgpu.Buffer
	Params    *wgpu.Buffer
	Camera    *wgpu.Buffer
	Vertex    *wgpu.Buffer

	ParticleSize uint64
}

func newBuffers(ctx *Context, plan bufferPlan) (*Buffers, error) {
	b := &Buffers{ParticleSize: plan.Particles.Size}
	for _, e := range []struct {
		dst  **wgpu.Buffer
		spec bufferSpec
	}{
		{&b.Particles, plan.Particles},
		{&b.Params, plan.Params},
		{&b.Camera, plan.Camera},
		{&b.Vertex, plan.Vertex},
	} {
		buf, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    ctx.label(e.spec.Label),
			Contents: e.spec.Contents,
			Usage:    e.spec.Usage,
		})
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("create %s buffer: %w", e.spec.Label, err)
		}
		*e.dst = buf
	}
	return b, nil
}

func (b *Buffers) Release() {
	for _, buf := range []**wgpu.Buffer{&b.Particles, &b.Params, &b.Camera, &b.Vertex} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
}
