package pointcloud

import "errors"

var (
	// ErrDeviceUnavailable means no adapter, device or presentable surface format could be
	// obtained. Startup aborts; there is no retry and no CPU fallback.
	ErrDeviceUnavailable = errors.New("gpu device unavailable")

	// ErrDeviceLost means a previously working device became unusable. Everything built on
	// top of it has to be created again.
	ErrDeviceLost = errors.New("gpu device lost")

	// ErrLayoutMismatch reports a host/GPU memory layout disagreement. It is raised while
	// building resources and indicates a programming error.
	ErrLayoutMismatch = errors.New("particle layout mismatch")

	// ErrFrameSkipped is returned when the surface had no texture to draw into this frame.
	ErrFrameSkipped = errors.New("frame skipped")

	ErrInvalidConfig = errors.New("invalid config")
)
