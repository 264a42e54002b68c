package core

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLayout(t *testing.T) {
	require.NoError(t, CheckLayout())
}

func TestGenerate_SpeedIsConstant(t *testing.T) {
	set, err := Generate(10000, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for i, p := range set.Particles() {
		if !assert.InDelta(t, Speed, p.Velocity.Len(), 1e-7, "particle %d", i) {
			return
		}
	}
}

func TestGenerate_Distribution(t *testing.T) {
	set, err := Generate(5000, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for _, p := range set.Particles() {
		assert.LessOrEqual(t, p.Position.Vec2().Len(), float32(1.0+1e-6))
		assert.Equal(t, float32(0), p.Position.Z())
		// Directions live in the YZ plane.
		assert.Equal(t, float32(0), p.Velocity.X())
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(64, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := Generate(64, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a.Mirror(), b.Mirror())
}

func TestGenerate_Negative(t *testing.T) {
	_, err := Generate(-1, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestParticleSet_Sizes(t *testing.T) {
	tests := []struct {
		n          int
		wantFloats int
		wantBytes  int
	}{
		{0, 0, 0},
		{1, 8, 32},
		{4, 32, 128},
		{130, 1040, 4160},
	}
	for _, tt := range tests {
		set, err := Generate(tt.n, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		assert.Equal(t, tt.n, set.Len())
		assert.Len(t, set.Mirror(), tt.wantFloats, "n=%d", tt.n)
		assert.Len(t, set.Bytes(), tt.wantBytes, "n=%d", tt.n)
		assert.Equal(t, uint64(tt.wantBytes), set.ByteSize())
	}
}

func TestParticleSet_MirrorOrder(t *testing.T) {
	p := NewParticle(mgl32.Vec3{0.1, 0.2, 0.3}, mgl32.Vec3{0, 3, 4})
	set := NewParticleSet([]Particle{p, p})

	m := set.Mirror()
	require.Len(t, m, 16)
	want := []float32{0.1, 0.2, 0.3, 0, p.Velocity.Y(), p.Velocity.Z(), 0, 0}
	assert.Equal(t, want, m[:8])
	assert.Equal(t, want, m[8:])

	b := set.Bytes()
	for i, v := range m {
		assert.Equal(t, v, math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
}

func TestNewParticle_NormalizesAndScales(t *testing.T) {
	p := NewParticle(mgl32.Vec3{}, mgl32.Vec3{0, 3, 4})
	assert.InDelta(t, 0, p.Velocity.X(), 1e-9)
	assert.InDelta(t, 0.0006, p.Velocity.Y(), 1e-9)
	assert.InDelta(t, 0.0008, p.Velocity.Z(), 1e-9)
}

func TestNewParticle_ZeroDirection(t *testing.T) {
	p := NewParticle(mgl32.Vec3{}, mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{0, 0, Speed}, p.Velocity)
}
