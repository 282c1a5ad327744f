package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Alexdat2000/scooterload/internal/metrics"
	"github.com/Alexdat2000/scooterload/internal/runner"
)

// Report bundles everything one run produced: the scenario-level outcome the
// tool exists to measure plus the per-request latency breakdown.
type Report struct {
	RunID     string          `json:"run_id,omitempty"`
	Target    string          `json:"target"`
	RateLimit int             `json:"rate_limit,omitempty"`
	Scenarios ScenarioSummary `json:"scenarios"`
	Requests  metrics.Stats   `json:"requests"`
}

// ScenarioSummary mirrors runner.Result with derived figures precomputed so
// the JSON form is self-contained.
type ScenarioSummary struct {
	TotalOrders int                   `json:"total_orders"`
	Successes   int                   `json:"successes"`
	Failures    int                   `json:"failures"`
	DurationSec float64               `json:"duration_sec"`
	Throughput  float64               `json:"throughput_per_sec"`
	SuccessRate float64               `json:"success_rate_pct"`
	Workers     []runner.WorkerResult `json:"workers,omitempty"`
}

// NewReport assembles a Report from the run outcome and the collected
// request metrics.
func NewReport(runID, target string, rateLimit int, res runner.Result, stats metrics.Stats) Report {
	return Report{
		RunID:     runID,
		Target:    target,
		RateLimit: rateLimit,
		Scenarios: ScenarioSummary{
			TotalOrders: res.Requested,
			Successes:   res.Successes,
			Failures:    res.Failures,
			DurationSec: res.Duration.Seconds(),
			Throughput:  res.Throughput(),
			SuccessRate: res.SuccessRate(),
			Workers:     res.Workers,
		},
		Requests: stats,
	}
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, rep Report) {
	scheme := newColorScheme(isTerminal(w))

	fmt.Fprintln(w, "\n--- Load Run Results ---")
	fmt.Fprintf(w, "Target:            %s\n", rep.Target)
	fmt.Fprintf(w, "Orders:            %d\n", rep.Scenarios.TotalOrders)
	fmt.Fprintf(w, "Successful:        %d\n", rep.Scenarios.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", rep.Scenarios.Failures)
	fmt.Fprintf(w, "Duration:          %.2fs\n", rep.Scenarios.DurationSec)
	fmt.Fprintf(w, "Throughput:        %.2f scenarios/sec\n", rep.Scenarios.Throughput)
	fmt.Fprintf(w, "Success Rate:      %s\n", formatSuccessRate(scheme, rep.Scenarios))

	fmt.Fprintln(w, "\nRequests:")
	fmt.Fprintf(w, "  Total:           %d\n", rep.Requests.Total)
	fmt.Fprintf(w, "  Requests/sec:    %.2f\n", rep.Requests.RequestsPerSec)
	if rep.RateLimit > 0 {
		fmt.Fprintf(w, "  Rate Limit:      %d rps\n", rep.RateLimit)
	}

	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", rep.Requests.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", rep.Requests.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", rep.Requests.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", rep.Requests.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", rep.Requests.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", rep.Requests.P99Latency)

	if len(rep.Requests.Operations) > 0 {
		fmt.Fprintln(w, "\nStep Breakdown:")
		names := make([]string, 0, len(rep.Requests.Operations))
		for name := range rep.Requests.Operations {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if rep.Requests.Operations[names[i]].Total != rep.Requests.Operations[names[j]].Total {
				return rep.Requests.Operations[names[i]].Total > rep.Requests.Operations[names[j]].Total
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			op := rep.Requests.Operations[name]
			share := 0.0
			if rep.Requests.Total > 0 {
				share = (float64(op.Total) / float64(rep.Requests.Total)) * 100
			}

			fmt.Fprintf(
				w,
				"  - %s: total=%d (%.1f%%), successes=%d, failures=%d, rps=%.2f, p99=%.1fms\n",
				name,
				op.Total,
				share,
				op.Successes,
				op.Failures,
				op.RequestsPerSec,
				op.P99LatencyMs,
			)
		}
	}

	if len(rep.Requests.StatusBuckets) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		writeStatusBuckets(w, rep.Requests.StatusBuckets, "  ")
	}

	if len(rep.Requests.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		writeErrorBreakdown(w, rep.Requests.Errors, "  ")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, verdictLine(scheme, rep.Scenarios))
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func formatSuccessRate(scheme *colorScheme, scen ScenarioSummary) string {
	text := fmt.Sprintf("%.1f%%", scen.SuccessRate)
	switch {
	case scen.Failures == 0:
		return scheme.ok.Sprint(text)
	case scen.SuccessRate >= 50:
		return scheme.warn.Sprint(text)
	default:
		return scheme.fail.Sprint(text)
	}
}

func verdictLine(scheme *colorScheme, scen ScenarioSummary) string {
	completed := scen.Successes + scen.Failures
	switch {
	case completed < scen.TotalOrders:
		return fmt.Sprintf("%s %d of %d scenarios completed (run interrupted)", scheme.warnIcon(), completed, scen.TotalOrders)
	case scen.Failures == 0:
		return fmt.Sprintf("%s all %d scenarios succeeded", scheme.successIcon(), scen.TotalOrders)
	default:
		return fmt.Sprintf("%s %d of %d scenarios failed", scheme.errorIcon(), scen.Failures, completed)
	}
}

func writeStatusBuckets(w io.Writer, buckets map[string]map[string]int, indent string) {
	rows := metrics.FlattenStatusBuckets(buckets)
	if len(rows) == 0 {
		fmt.Fprintf(w, "%sNone\n", indent)
		return
	}
	for _, row := range rows {
		fmt.Fprintf(
			w,
			"%s%s %s: %d\n",
			indent,
			row.Operation,
			row.Code,
			row.Count,
		)
	}
}

func writeErrorBreakdown(w io.Writer, errs map[string]int, indent string) {
	merged := map[string]int{}
	for name, count := range errs {
		merged[metrics.FriendlyErrorName(name)] += count
	}

	labels := make([]string, 0, len(merged))
	for label := range merged {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if merged[labels[i]] != merged[labels[j]] {
			return merged[labels[i]] > merged[labels[j]]
		}
		return labels[i] < labels[j]
	})
	for _, label := range labels {
		fmt.Fprintf(w, "%s%s: %d\n", indent, label, merged[label])
	}
}
