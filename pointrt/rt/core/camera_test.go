package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAspect(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          float32
	}{
		{"Full HD", 1920, 1080, 1920.0 / 1080.0},
		{"Portrait", 720, 1280, 720.0 / 1280.0},
		{"Square", 512, 512, 1},
		{"Zero height", 800, 0, 1},
		{"Zero width", 0, 600, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Aspect(tt.width, tt.height), 1e-6)
		})
	}
}

// The projection must use width/height, not width/width.
func TestCamera_ProjectionUsesWidthOverHeight(t *testing.T) {
	cam := DefaultCamera()
	wide := cam.Projection(1920, 1080)
	square := cam.Projection(1080, 1080)

	assert.InDelta(t, square.At(1, 1), wide.At(1, 1), 1e-6)
	assert.InDelta(t, square.At(0, 0)*1080.0/1920.0, wide.At(0, 0), 1e-6)
	assert.NotEqual(t, square.At(0, 0), wide.At(0, 0))
}

func TestCamera_OriginProjectsToCenter(t *testing.T) {
	cam := DefaultCamera()
	clip := cam.ViewProjection(1280, 720).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())

	assert.InDelta(t, 0, ndc.X(), 1e-5)
	assert.InDelta(t, 0, ndc.Y(), 1e-5)
	// WebGPU depth range.
	assert.Greater(t, ndc.Z(), float32(0))
	assert.Less(t, ndc.Z(), float32(1))
}

func TestCamera_Bytes(t *testing.T) {
	b := DefaultCamera().Bytes(1280, 720)
	assert.Len(t, b, CameraSize)
}
