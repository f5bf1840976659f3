package task

import (
	"cmp"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// Profiler is notified around every Advance of the tasks it was given to.
// Swapping profilers never changes scheduling.
type Profiler interface {
	// Register is called once, when a task is created.
	Register(t *Task)

	// BeforeAdvance and AfterAdvance bracket a whole Advance call, including
	// the nested frames it runs.
	BeforeAdvance(t *Task)
	AfterAdvance(t *Task)

	// Dump writes the collected statistics to w.
	Dump(w io.Writer) error
}

// NopProfiler ignores everything. It is the default.
type NopProfiler struct{}

func (NopProfiler) Register(*Task)       {}
func (NopProfiler) BeforeAdvance(*Task)  {}
func (NopProfiler) AfterAdvance(*Task)   {}
func (NopProfiler) Dump(io.Writer) error { return nil }

// FrameStats is what StatsProfiler records for one frame label.
type FrameStats struct {
	Label     string
	Calls     int
	Allocated uint64
	Duration  time.Duration
}

type sample struct {
	label string
	alloc uint64
	start time.Time
}

// StatsProfiler counts calls, heap allocations and time spent per innermost
// frame label. Reading allocations stops the world, so it is meant for
// debugging sessions only.
type StatsProfiler struct {
	mu sync.Mutex

	frames     map[string]*FrameStats
	registered map[string]int

	// open samples per task, Advance calls can nest when a frame advances
	// another task
	samples map[*Task][]sample
}

func NewStatsProfiler() *StatsProfiler {
	return &StatsProfiler{
		frames:     make(map[string]*FrameStats),
		registered: make(map[string]int),
		samples:    make(map[*Task][]sample),
	}
}

func (p *StatsProfiler) Register(t *Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.registered[t.InitialLabel()]++
}

func (p *StatsProfiler) BeforeAdvance(t *Task) {
	s := sample{label: t.Label(), alloc: totalAlloc(), start: time.Now()}

	p.mu.Lock()
	p.samples[t] = append(p.samples[t], s)
	p.mu.Unlock()
}

func (p *StatsProfiler) AfterAdvance(t *Task) {
	alloc := totalAlloc()

	p.mu.Lock()
	defer p.mu.Unlock()

	open := p.samples[t]
	n := len(open) - 1
	if n < 0 {
		return
	}
	s := open[n]
	if n == 0 {
		delete(p.samples, t)
	} else {
		p.samples[t] = open[:n]
	}

	stats, ok := p.frames[s.label]
	if !ok {
		stats = &FrameStats{Label: s.label}
		p.frames[s.label] = stats
	}
	stats.Calls++
	stats.Duration += time.Since(s.start)
	if alloc > s.alloc {
		stats.Allocated += alloc - s.alloc
	}
}

// Frames returns the collected statistics, most allocating first.
func (p *StatsProfiler) Frames() []FrameStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]FrameStats, 0, len(p.frames))
	for _, s := range p.frames {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b FrameStats) int {
		if c := cmp.Compare(b.Allocated, a.Allocated); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})

	return out
}

// Registered returns how many tasks were created per initial frame label.
func (p *StatsProfiler) Registered() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.registered))
	for k, v := range p.registered {
		out[k] = v
	}
	return out
}

func (p *StatsProfiler) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "Memory allocated\tCall count\tTime\tFrame")
	for _, s := range p.Frames() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			humanize.IBytes(s.Allocated),
			humanize.Comma(int64(s.Calls)),
			s.Duration.Round(time.Microsecond),
			s.Label,
		)
	}

	return tw.Flush()
}

func totalAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.TotalAlloc
}
