package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchCount(t *testing.T) {
	tests := []struct {
		n    int
		want uint32
	}{
		{-5, 0},
		{0, 0},
		{1, 1},
		{63, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{130, 3},
		{50000, 782},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DispatchCount(tt.n), "n=%d", tt.n)
	}
}

func TestDispatchCount_CoversEveryIndexOnce(t *testing.T) {
	for n := 0; n <= 300; n++ {
		groups := int(DispatchCount(n))
		if n > 0 {
			assert.GreaterOrEqual(t, groups*WorkgroupSize, n)
			// No whole workgroup is spent past the tail.
			assert.Less(t, (groups-1)*WorkgroupSize, n)
		} else {
			assert.Zero(t, groups)
		}
	}
}

func TestPlanFrame(t *testing.T) {
	plan := PlanFrame(130)
	assert.Equal(t, uint32(3), plan.Workgroups)
	assert.Equal(t, DrawCall{VertexCount: 1, InstanceCount: 130}, plan.Draw)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, plan.Clear)

	assert.Equal(t, uint32(0), PlanFrame(-1).Draw.InstanceCount)
}

func TestSimParams_Bytes(t *testing.T) {
	b := SimParams{Frame: 2}.Bytes()
	assert.Len(t, b, ParamsSize)

	p, ok := DecodeParams(b)
	assert.True(t, ok)
	assert.Equal(t, float32(2), p.Frame)
	assert.Equal(t, make([]byte, 12), b[4:], "padding must be zero")

	_, ok = DecodeParams(b[:4])
	assert.False(t, ok)
}
