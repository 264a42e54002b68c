package pointcloud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the renderer's Prometheus collectors.
type Metrics struct {
	Frames        prometheus.Counter
	SkippedFrames prometheus.Counter
	FrameSeconds  prometheus.Histogram
	Recoveries    prometheus.Counter
	Particles     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Frames: f.NewCounter(prometheus.CounterOpts{
			Name: "pointrt_frames_total",
			Help: "Frames submitted to the GPU queue",
		}),
		SkippedFrames: f.NewCounter(prometheus.CounterOpts{
			Name: "pointrt_frames_skipped_total",
			Help: "Frames dropped because the surface had no texture",
		}),
		FrameSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pointrt_frame_cpu_seconds",
			Help:    "Host time spent writing buffers and encoding one frame",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		Recoveries: f.NewCounter(prometheus.CounterOpts{
			Name: "pointrt_device_recoveries_total",
			Help: "Pipeline rebuilds after the device was lost",
		}),
		Particles: f.NewGauge(prometheus.GaugeOpts{
			Name: "pointrt_particles",
			Help: "Particle count fixed at initialization",
		}),
	}
}

// OrDiscard returns m, or unregistered collectors when m is nil.
func OrDiscard(m *Metrics) *Metrics {
	if m == nil {
		return NewMetrics(nil)
	}
	return m
}
