package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/gekko3d/pointcloud/pointrt/rt/core"

	"github.com/stretchr/testify/require"
)

type backendCall struct {
	Op   string
	Data []byte
	Plan core.FramePlan
}

type fakeBackend struct {
	calls []backendCall
	// submitErr, when set, decides the result of the n-th Submit (1-based).
	submitErr func(n int) error
	submits   int
}

func (b *fakeBackend) WriteParams(data []byte) error {
	b.calls = append(b.calls, backendCall{Op: "params", Data: append([]byte(nil), data...)})
	return nil
}

func (b *fakeBackend) WriteParticles(data []byte) error {
	b.calls = append(b.calls, backendCall{Op: "particles", Data: append([]byte(nil), data...)})
	return nil
}

func (b *fakeBackend) Submit(plan core.FramePlan) error {
	b.submits++
	b.calls = append(b.calls, backendCall{Op: "submit", Plan: plan})
	if b.submitErr != nil {
		return b.submitErr(b.submits)
	}
	return nil
}

func (b *fakeBackend) ops() []string {
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.Op
	}
	return out
}

// paramFrames decodes every params upload in order.
func (b *fakeBackend) paramFrames(t *testing.T) []float32 {
	t.Helper()
	var frames []float32
	for _, c := range b.calls {
		if c.Op != "params" {
			continue
		}
		p, ok := core.DecodeParams(c.Data)
		require.True(t, ok)
		frames = append(frames, p.Frame)
	}
	return frames
}

// frames allows n frames and then stops.
func frames(n int) Scheduler {
	return SchedulerFunc(func(ctx context.Context) error {
		if n <= 0 {
			return ErrStopped
		}
		n--
		return ctx.Err()
	})
}

func testSet(t *testing.T, n int) *core.ParticleSet {
	t.Helper()
	set, err := core.Generate(n, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	return set
}

type recordingLogger struct {
	mu    sync.Mutex
	debug bool
	lines []string
}

func (l *recordingLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) DebugEnabled() bool                 { return l.debug }
func (l *recordingLogger) SetDebug(enabled bool)              { l.debug = enabled }
func (l *recordingLogger) Debugf(format string, args ...any) { l.record("DEBUG", format, args...) }
func (l *recordingLogger) Infof(format string, args ...any)  { l.record("INFO", format, args...) }
func (l *recordingLogger) Warnf(format string, args ...any)  { l.record("WARN", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...any) { l.record("ERROR", format, args...) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if len(line) > len(level) && line[:len(level)+1] == level+" " {
			n++
		}
	}
	return n
}
