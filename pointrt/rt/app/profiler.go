package app

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler keeps per-phase CPU timings of the frame loop.
type Profiler struct {
	now    func() time.Time
	starts map[string]time.Time
	last   map[string]time.Duration
	total  map[string]time.Duration
	counts map[string]int
	order  []string
	frames int
}

func NewProfiler() *Profiler {
	return &Profiler{
		now:    time.Now,
		starts: make(map[string]time.Time),
		last:   make(map[string]time.Duration),
		total:  make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

func (p *Profiler) BeginScope(name string) {
	if p == nil {
		return
	}
	p.starts[name] = p.now()
	if _, seen := p.total[name]; !seen {
		p.total[name] = 0
		p.order = append(p.order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if p == nil {
		return
	}
	start, ok := p.starts[name]
	if !ok {
		return
	}
	delete(p.starts, name)
	d := p.now().Sub(start)
	p.last[name] = d
	p.total[name] += d
}

func (p *Profiler) SetCount(name string, count int) {
	if p == nil {
		return
	}
	p.counts[name] = count
}

// EndFrame marks one frame as complete for averaging.
func (p *Profiler) EndFrame() {
	if p == nil {
		return
	}
	p.frames++
}

func (p *Profiler) Frames() int {
	if p == nil {
		return 0
	}
	return p.frames
}

// Average is the mean duration of a scope over the frames since the last Reset.
func (p *Profiler) Average(name string) time.Duration {
	if p == nil || p.frames == 0 {
		return 0
	}
	return p.total[name] / time.Duration(p.frames)
}

// Reset clears the accumulated totals but keeps the scope order.
func (p *Profiler) Reset() {
	if p == nil {
		return
	}
	for k := range p.total {
		p.total[k] = 0
	}
	p.frames = 0
}

func (p *Profiler) StatsString() string {
	if p == nil {
		return ""
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "Timings (CPU, %d frames):\n", p.frames)
	for _, name := range p.order {
		fmt.Fprintf(&sb, "  %-15s: %.3f ms last, %.3f ms avg\n", name, ms(p.last[name]), ms(p.Average(name)))
	}

	if len(p.counts) > 0 {
		sb.WriteString("Stats:\n")
		keys := make([]string, 0, len(p.counts))
		for k := range p.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
		}
	}
	return sb.String()
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
