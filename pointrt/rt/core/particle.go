package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Speed is the magnitude every particle velocity is scaled to.
const Speed = 0.001

// Particle matches the WGSL Particle struct in compute.wgsl and points.wgsl.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	_        [2]float32
}

// NewParticle normalizes dir and scales it to Speed, so every particle moves equally fast.
// A zero direction becomes +Z.
func NewParticle(pos, dir mgl32.Vec3) Particle {
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	return Particle{
		Position: pos,
		Velocity: dir.Normalize().Mul(Speed),
	}
}

// Floats returns the record in mirror order [px,py,pz,vx,vy,vz,pad,pad].
func (p Particle) Floats() [RecordFloats]float32 {
	return [RecordFloats]float32{
		p.Position[0], p.Position[1], p.Position[2],
		p.Velocity[0], p.Velocity[1], p.Velocity[2],
		0, 0,
	}
}

// ParticleSet is a fixed-size particle population with its host mirror. It is never
// resized or modified after Generate.
type ParticleSet struct {
	particles []Particle
	mirror    []float32
	bytes     []byte
}

// Generate samples count particles: positions inside a unit disk in the XY plane, velocities
// along a random YZ direction at Speed.
func Generate(count int, rng *rand.Rand) (*ParticleSet, error) {
	if count < 0 {
		return nil, fmt.Errorf("particle count must not be negative, got %d", count)
	}

	particles := make([]Particle, count)
	for i := range particles {
		angle := rng.Float64() * math.Pi * 2
		radius := -1 + rng.Float64()*2
		pos := mgl32.Vec3{
			float32(radius * math.Cos(angle)),
			float32(radius * math.Sin(angle)),
			0,
		}
		dir := mgl32.Vec3{
			0,
			float32(math.Sin(rng.Float64() * math.Pi * 2)),
			float32(math.Cos(rng.Float64() * math.Pi * 2)),
		}
		particles[i] = NewParticle(pos, dir)
	}
	return NewParticleSet(particles), nil
}

// NewParticleSet builds the mirror for an existing population. The slice is copied.
func NewParticleSet(particles []Particle) *ParticleSet {
	s := &ParticleSet{
		particles: append([]Particle(nil), particles...),
		mirror:    make([]float32, 0, len(particles)*RecordFloats),
	}
	for _, p := range s.particles {
		f := p.Floats()
		s.mirror = append(s.mirror, f[:]...)
	}

	s.bytes = make([]byte, len(s.mirror)*4)
	for i, v := range s.mirror {
		binary.LittleEndian.PutUint32(s.bytes[i*4:], math.Float32bits(v))
	}
	return s
}

func (s *ParticleSet) Len() int { return len(s.particles) }

// Particles returns the records. Callers must not modify the result.
func (s *ParticleSet) Particles() []Particle { return s.particles }

// Mirror returns the 8*Len() float mirror. Callers must not modify the result.
func (s *ParticleSet) Mirror() []float32 { return s.mirror }

// Bytes returns the little-endian upload image of the mirror, 32*Len() bytes.
// Callers must not modify the result.
func (s *ParticleSet) Bytes() []byte { return s.bytes }

// ByteSize is the size of the particle storage buffer.
func (s *ParticleSet) ByteSize() uint64 { return uint64(len(s.particles)) * RecordSize }
