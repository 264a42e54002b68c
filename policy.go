package pointcloud

import (
	"fmt"
	"strings"
)

// UpdatePolicy decides who owns particle state between frames.
type UpdatePolicy int

const (
	// PolicyRecompute rewrites the base state from the host mirror every frame; the compute
	// shader derives absolute positions from the base state and the elapsed frame count.
	PolicyRecompute UpdatePolicy = iota
	// PolicyIntegrate uploads the base state once; the compute shader advances the buffer in
	// place and the host never rewrites it.
	PolicyIntegrate
)

func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recompute":
		return PolicyRecompute, nil
	case "integrate":
		return PolicyIntegrate, nil
	}
	return 0, fmt.Errorf("%w: unknown update policy %q", ErrInvalidConfig, s)
}

func (p UpdatePolicy) String() string {
	switch p {
	case PolicyRecompute:
		return "recompute"
	case PolicyIntegrate:
		return "integrate"
	}
	return fmt.Sprintf("UpdatePolicy(%d)", int(p))
}

// RewritesParticles reports whether the host uploads the particle mirror every frame.
func (p UpdatePolicy) RewritesParticles() bool {
	return p == PolicyRecompute
}
