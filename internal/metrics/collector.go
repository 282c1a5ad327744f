package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// RequestMetadata labels one recorded request with the scenario step that
// issued it and the HTTP status code it received. StatusCode stays empty for
// transport errors that never produced a response.
type RequestMetadata struct {
	Operation  string
	StatusCode string
}

// Collector records per-request metrics in a thread-safe manner. All workers
// share one Collector; the scenario runner records every request it issues,
// successful or not.
type Collector struct {
	mu            sync.Mutex
	overall       *latencyAgg
	operations    map[string]*latencyAgg
	statusBuckets map[string]map[string]int
	errorsByType  map[string]int64
	start         time.Time
}

// Stats represents aggregated metrics.
type Stats struct {
	Total          int64         `json:"total"`
	Successes      int64         `json:"successes"`
	Failures       int64         `json:"failures"`
	MinLatency     time.Duration `json:"-"`
	MaxLatency     time.Duration `json:"-"`
	MeanLatency    time.Duration `json:"-"`
	P50Latency     time.Duration `json:"-"`
	P90Latency     time.Duration `json:"-"`
	P99Latency     time.Duration `json:"-"`
	Duration       time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`

	// Per-step breakdown keyed by operation name (create_offer, create_order,
	// get_order, finish_order).
	Operations map[string]OperationStats `json:"operations,omitempty"`

	// StatusBuckets counts HTTP status codes per operation. Transport errors
	// never reach a bucket; they only appear in Errors.
	StatusBuckets map[string]map[string]int `json:"status_buckets,omitempty"`

	// Errors groups failures by Go error type. Reported in the human summary
	// only; the JSON schema carries failure detail via status buckets.
	Errors map[string]int `json:"-"`
}

// OperationStats aggregates latency and outcome figures for a single step.
type OperationStats struct {
	Total          int64   `json:"total"`
	Successes      int64   `json:"successes"`
	Failures       int64   `json:"failures"`
	MinLatencyMs   float64 `json:"min_latency_ms"`
	MaxLatencyMs   float64 `json:"max_latency_ms"`
	MeanLatencyMs  float64 `json:"mean_latency_ms"`
	P50LatencyMs   float64 `json:"p50_latency_ms"`
	P90LatencyMs   float64 `json:"p90_latency_ms"`
	P99LatencyMs   float64 `json:"p99_latency_ms"`
	RequestsPerSec float64 `json:"requests_per_sec"`
}

// latencyAgg is the shared histogram/counter bundle used for both the overall
// rollup and each per-operation slice. Callers hold the Collector mutex.
type latencyAgg struct {
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
}

func newLatencyAgg() *latencyAgg {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &latencyAgg{hist: hdrhistogram.New(1, 60_000_000, 3)}
}

func (a *latencyAgg) observe(latency time.Duration, err error) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < a.hist.LowestTrackableValue() {
			us = a.hist.LowestTrackableValue()
		}
		if us > a.hist.HighestTrackableValue() {
			us = a.hist.HighestTrackableValue()
		}
		_ = a.hist.RecordValue(us)
	}
	a.sumLatency += latency

	if a.minLatency == 0 || latency < a.minLatency {
		a.minLatency = latency
	}
	if latency > a.maxLatency {
		a.maxLatency = latency
	}

	if err == nil {
		a.successes++
	} else {
		a.failures++
	}
}

func NewCollector() *Collector {
	return &Collector{
		overall:       newLatencyAgg(),
		operations:    make(map[string]*latencyAgg),
		statusBuckets: make(map[string]map[string]int),
		errorsByType:  make(map[string]int64),
		start:         time.Now(),
	}
}

// Start marks the beginning of the measured run. Construction time is used
// until Start is called, so setup work (readiness polling, dashboard init)
// does not count against throughput.
func (c *Collector) Start() {
	c.mu.Lock()
	c.start = time.Now()
	c.mu.Unlock()
}

// Elapsed reports time since Start.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// RecordRequest records a single request's latency and error state plus its
// operation/status labels.
func (c *Collector) RecordRequest(latency time.Duration, err error, meta *RequestMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.overall.observe(latency, err)

	if err != nil {
		errorType := fmt.Sprintf("%T", err)
		if len(errorType) > 30 {
			errorType = errorType[len(errorType)-30:]
		}
		c.errorsByType[errorType]++
	}

	if meta == nil {
		return
	}
	if meta.Operation != "" {
		op := c.operations[meta.Operation]
		if op == nil {
			op = newLatencyAgg()
			c.operations[meta.Operation] = op
		}
		op.observe(latency, err)
	}
	if meta.StatusCode != "" {
		bucket := c.statusBuckets[meta.Operation]
		if bucket == nil {
			bucket = make(map[string]int)
			c.statusBuckets[meta.Operation] = bucket
		}
		bucket[meta.StatusCode]++
	}
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.overall.successes + c.overall.failures
	stats := Stats{
		Total:      total,
		Successes:  c.overall.successes,
		Failures:   c.overall.failures,
		MinLatency: c.overall.minLatency,
		MaxLatency: c.overall.maxLatency,
	}

	if total > 0 {
		stats.MeanLatency = time.Duration(int64(c.overall.sumLatency) / total)
	}

	if c.overall.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.overall.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(c.overall.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Latency = time.Duration(c.overall.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = float64(stats.MinLatency) / float64(time.Millisecond)
	stats.MaxLatencyMs = float64(stats.MaxLatency) / float64(time.Millisecond)
	stats.MeanLatencyMs = float64(stats.MeanLatency) / float64(time.Millisecond)
	stats.P50LatencyMs = float64(stats.P50Latency) / float64(time.Millisecond)
	stats.P90LatencyMs = float64(stats.P90Latency) / float64(time.Millisecond)
	stats.P99LatencyMs = float64(stats.P99Latency) / float64(time.Millisecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	if len(c.operations) > 0 {
		stats.Operations = make(map[string]OperationStats, len(c.operations))
		for name, agg := range c.operations {
			stats.Operations[name] = agg.operationStats(elapsed)
		}
	}

	if len(c.statusBuckets) > 0 {
		stats.StatusBuckets = make(map[string]map[string]int, len(c.statusBuckets))
		for op, codes := range c.statusBuckets {
			copied := make(map[string]int, len(codes))
			for code, count := range codes {
				copied[code] = count
			}
			stats.StatusBuckets[op] = copied
		}
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

func (a *latencyAgg) operationStats(elapsed time.Duration) OperationStats {
	total := a.successes + a.failures
	op := OperationStats{
		Total:        total,
		Successes:    a.successes,
		Failures:     a.failures,
		MinLatencyMs: float64(a.minLatency) / float64(time.Millisecond),
		MaxLatencyMs: float64(a.maxLatency) / float64(time.Millisecond),
	}
	if total > 0 {
		mean := time.Duration(int64(a.sumLatency) / total)
		op.MeanLatencyMs = float64(mean) / float64(time.Millisecond)
	}
	if a.hist.TotalCount() > 0 {
		op.P50LatencyMs = float64(a.hist.ValueAtQuantile(50)) / 1000
		op.P90LatencyMs = float64(a.hist.ValueAtQuantile(90)) / 1000
		op.P99LatencyMs = float64(a.hist.ValueAtQuantile(99)) / 1000
	}
	if elapsed > 0 && total > 0 {
		op.RequestsPerSec = float64(total) / elapsed.Seconds()
	}
	return op
}
