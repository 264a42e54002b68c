package core

import (
	"encoding/binary"
	"math"
)

// SimParams is the compute shader's uniform block.
//
//	struct SimParams { frame: f32, pad0: f32, pad1: f32, pad2: f32 }
type SimParams struct {
	Frame float32
}

func (p SimParams) Bytes() []byte {
	buf := make([]byte, ParamsSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(p.Frame))
	return buf
}

// DecodeParams reads the frame value back out of an encoded block.
func DecodeParams(b []byte) (SimParams, bool) {
	if len(b) != ParamsSize {
		return SimParams{}, false
	}
	return SimParams{Frame: math.Float32frombits(binary.LittleEndian.Uint32(b))}, true
}
