package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Alexdat2000/scooterload/internal/metrics"
)

func TestProgressReporterEmitsLine(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()
	for i := 0; i < 5; i++ {
		collector.RecordRequest(30*time.Millisecond, nil, &metrics.RequestMetadata{
			Operation:  "get_order",
			StatusCode: "200",
		})
	}

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 20*time.Millisecond, &buf)
	reporter.Start()
	time.Sleep(60 * time.Millisecond)
	reporter.Stop()

	output := buf.String()
	if !strings.Contains(output, "Requests: 5") {
		t.Errorf("progress line missing request count:\n%q", output)
	}
	if !strings.Contains(output, "Slowest Step: get_order") {
		t.Errorf("progress line missing slowest step:\n%q", output)
	}
}

func TestProgressReporterStopWithoutStart(t *testing.T) {
	collector := metrics.NewCollector()
	reporter := NewProgressReporter(collector, 10*time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		reporter.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() without Start() hung")
	}
}

func TestProgressReporterDoubleStart(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()

	var buf bytes.Buffer
	reporter := NewProgressReporter(collector, 10*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start()
	time.Sleep(25 * time.Millisecond)
	reporter.Stop()
	reporter.Stop()
}

func TestSlowestOperation(t *testing.T) {
	stats := metrics.Stats{
		Operations: map[string]metrics.OperationStats{
			"create_offer": {P99LatencyMs: 12.0},
			"get_order":    {P99LatencyMs: 48.0},
			"finish_order": {P99LatencyMs: 48.0},
		},
	}

	name, op, ok := slowestOperation(stats)
	if !ok {
		t.Fatal("slowestOperation() ok = false, want true")
	}
	if name != "finish_order" {
		t.Errorf("slowestOperation() name = %q, want finish_order (tie broken by name)", name)
	}
	if op.P99LatencyMs != 48.0 {
		t.Errorf("slowestOperation() p99 = %g, want 48", op.P99LatencyMs)
	}

	if _, _, ok := slowestOperation(metrics.Stats{}); ok {
		t.Error("slowestOperation() on empty stats ok = true, want false")
	}
}
