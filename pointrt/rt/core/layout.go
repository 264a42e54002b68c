package core

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/pointcloud"
)

// Particle record layout shared by the host mirror, the compute shader and the vertex stage.
// WGSL declares the record as eight scalar f32 fields; a vec3<f32> member would be 16-byte
// aligned and move velocity off offset 12.
const (
	RecordSize     = 32
	RecordFloats   = RecordSize / 4
	PositionOffset = 0
	VelocityOffset = 12

	// SimParams: one f32 padded to 16 bytes for uniform alignment.
	ParamsSize = 16
	// Camera uniform: one column-major mat4x4<f32>.
	CameraSize = 64

	// WorkgroupSize must match @workgroup_size in compute.wgsl.
	WorkgroupSize = 64
)

// CheckLayout verifies the Go particle record against the layout constants.
func CheckLayout() error {
	var p Particle
	if s := unsafe.Sizeof(p); s != RecordSize {
		return fmt.Errorf("%w: record is %d bytes, want %d", pointcloud.ErrLayoutMismatch, s, RecordSize)
	}
	if o := unsafe.Offsetof(p.Position); o != PositionOffset {
		return fmt.Errorf("%w: position at offset %d, want %d", pointcloud.ErrLayoutMismatch, o, PositionOffset)
	}
	if o := unsafe.Offsetof(p.Velocity); o != VelocityOffset {
		return fmt.Errorf("%w: velocity at offset %d, want %d", pointcloud.ErrLayoutMismatch, o, VelocityOffset)
	}
	return nil
}

// DispatchCount returns the number of workgroups covering n invocations.
func DispatchCount(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize)
}
