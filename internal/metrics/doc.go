// Package metrics provides real-time metrics collection and aggregation for
// the load run.
//
// The metrics package collects latency measurements, success/failure counts,
// and per-operation status code distributions while scenarios execute.
//
// # Collector
//
// The central [Collector] type aggregates metrics from all workers:
//
//	collector := metrics.NewCollector()
//	collector.Start() // Mark run start for accurate RPS calculation
//
//	// Record a request
//	collector.RecordRequest(latency, err, &metrics.RequestMetadata{
//		Operation:  "create_offer",
//		StatusCode: "201",
//	})
//
//	// Get aggregated statistics
//	stats := collector.Stats(elapsed)
//
// # Statistics
//
// The [Stats] type provides:
//   - Request counts (total, successes, failures)
//   - Latency percentiles (P50, P90, P99) from an HDR histogram
//   - Requests per second
//   - Per-operation breakdowns and status code buckets
//
// # Thread Safety
//
// The Collector guards its state with a single mutex. Workers issue requests
// strictly sequentially, so recording is safe and uncontended enough to call
// from every goroutine.
package metrics
