package shaders

import (
	_ "embed"

	"github.com/gekko3d/pointcloud"
)

//go:embed compute.wgsl
var ComputeWGSL string

//go:embed points.wgsl
var PointsWGSL string

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// ComputeEntryPoint returns the compute.wgsl entry point implementing policy p.
func ComputeEntryPoint(p pointcloud.UpdatePolicy) string {
	if p == pointcloud.PolicyIntegrate {
		return "cs_integrate"
	}
	return "cs_recompute"
}
