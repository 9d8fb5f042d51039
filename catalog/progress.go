package catalog

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes a single, rewritten status line while entries are
// stored. It reports at most once per reportInterval entries.
type ProgressTracker struct {
	mu             sync.Mutex
	writer         io.Writer
	total          int
	done           int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
}

// NewProgressTracker creates a tracker for total entries. A non-positive
// reportInterval reports on every update.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: max(reportInterval, 1),
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.done = 0
	p.lastReported = 0
}

// Update records that done entries are stored, capped at the total.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.done = min(done, p.total)
	if p.done-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.done
	}
}

// Finish reports completion and ends the status line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// Percent returns completion in [0,100].
func (p *ProgressTracker) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent()
}

func (p *ProgressTracker) percent() float64 {
	if p.total <= 0 {
		return 100
	}
	return float64(p.done) / float64(p.total) * 100
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(p.done) / s
	}

	eta := "-"
	if rate > 0 && p.done < p.total {
		eta = time.Duration(float64(p.total-p.done) / rate * float64(time.Second)).Round(time.Second).String()
	}

	fmt.Fprintf(p.writer, "\rLoading catalog: %d/%d (%.1f%%) %.0f entries/s, eta %s",
		p.done, p.total, p.percent(), rate, eta)
}
