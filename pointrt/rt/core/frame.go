package core

type DrawCall struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// FramePlan describes the GPU work of one frame: one compute dispatch followed by one
// instanced point draw.
type FramePlan struct {
	Workgroups uint32
	Draw       DrawCall
	Clear      [4]float64
}

// ClearColor is opaque black.
var ClearColor = [4]float64{0, 0, 0, 1}

// PlanFrame builds the plan for a population of n particles. Each particle is one instance
// of a single degenerate vertex.
func PlanFrame(n int) FramePlan {
	if n < 0 {
		n = 0
	}
	return FramePlan{
		Workgroups: DispatchCount(n),
		Draw: DrawCall{
			VertexCount:   1,
			InstanceCount: uint32(n),
		},
		Clear: ClearColor,
	}
}
