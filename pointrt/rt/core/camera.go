package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fixed perspective camera; it is not interactively controllable.
type Camera struct {
	FovY   float32
	Near   float32
	Far    float32
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

func DefaultCamera() Camera {
	return Camera{
		FovY:   math.Pi / 4,
		Near:   0.1,
		Far:    10,
		Eye:    mgl32.Vec3{-2, 0, 0},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 0, 1}, // Z-up
	}
}

// Aspect returns width/height, or 1 for a degenerate viewport.
func Aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// glToWebGPU remaps clip-space depth from [-1,1] to [0,1].
var glToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

func (c Camera) Projection(width, height int) mgl32.Mat4 {
	return glToWebGPU.Mul4(mgl32.Perspective(c.FovY, Aspect(width, height), c.Near, c.Far))
}

func (c Camera) ViewProjection(width, height int) mgl32.Mat4 {
	return c.Projection(width, height).Mul4(c.View())
}

// Bytes encodes the view-projection matrix column-major, as WGSL mat4x4<f32> expects.
func (c Camera) Bytes(width, height int) []byte {
	m := c.ViewProjection(width, height)
	buf := make([]byte, CameraSize)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
