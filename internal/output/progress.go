package output

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/Alexdat2000/scooterload/internal/metrics"
)

// ProgressReporter displays real-time progress updates on a single line.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and waits for the reporter goroutine to exit.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			stats := p.collector.Stats(p.collector.Elapsed())
			line := fmt.Sprintf("\rRequests: %d | Successes: %d | Failures: %d | RPS: %.1f",
				stats.Total, stats.Successes, stats.Failures, stats.RequestsPerSec)
			if name, op, ok := slowestOperation(stats); ok {
				line += fmt.Sprintf(" | Slowest Step: %s (P99 %.1fms)", name, op.P99LatencyMs)
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}

// slowestOperation picks the step with the highest P99 latency for the
// at-a-glance progress line.
func slowestOperation(stats metrics.Stats) (string, metrics.OperationStats, bool) {
	if len(stats.Operations) == 0 {
		return "", metrics.OperationStats{}, false
	}
	names := make([]string, 0, len(stats.Operations))
	for name := range stats.Operations {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stats.Operations[names[i]].P99LatencyMs != stats.Operations[names[j]].P99LatencyMs {
			return stats.Operations[names[i]].P99LatencyMs > stats.Operations[names[j]].P99LatencyMs
		}
		return names[i] < names[j]
	})
	name := names[0]
	return name, stats.Operations[name], true
}
