package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/Alexdat2000/scooterload/internal/metrics"
)

// RunConfig holds load run parameters for display.
type RunConfig struct {
	TargetURL    string        // Rental service base URL
	Concurrency  int           // Number of concurrent workers
	Orders       int           // Total order scenarios to execute
	GetsPerOrder int           // Status polls per order
	Rate         int           // Requests per second (0 = unlimited)
	Timeout      time.Duration // Request timeout
	ConfigFile   string        // Path to config file if used
}

// Dashboard renders a live terminal UI for load run metrics.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	rpsGauge       *widgets.Gauge
	stepList       *widgets.List
	statusList     *widgets.List
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	errorsPara     *widgets.Paragraph
	latencyHistory []float64
	runDuration    time.Duration
	targetURL      string
	runConfig      RunConfig
}

// New creates a new Dashboard.
func New(collector *metrics.Collector, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		targetURL:      cfg.TargetURL,
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Latency Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	// Latency Metrics Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// RPS Gauge
	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests Per Second"
	d.rpsGauge.Percent = 0
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rpsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Scenario Step List
	d.stepList = widgets.NewList()
	d.stepList.Title = "Scenario Steps"
	d.stepList.Rows = []string{"Awaiting data"}
	d.stepList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.stepList.BorderStyle.Fg = ui.ColorCyan

	// Status Code List
	d.statusList = widgets.NewList()
	d.statusList.Title = "Status Codes"
	d.statusList.Rows = []string{"Awaiting data"}
	d.statusList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.statusList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan

	// Error Breakdown Paragraph
	d.errorsPara = widgets.NewParagraph()
	d.errorsPara.Title = "Errors"
	d.errorsPara.Text = "[No errors](fg:green)"
	d.errorsPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.18,
			ui.NewCol(0.5, d.rpsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.26,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.28,
			ui.NewCol(0.5, d.stepList),
			ui.NewCol(0.5, d.statusList),
		),
		ui.NewRow(0.14,
			ui.NewCol(1.0, d.errorsPara),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	d.runDuration = d.collector.Elapsed()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// GetFinalStats returns the final statistics after the dashboard has stopped.
func (d *Dashboard) GetFinalStats() metrics.Stats {
	return d.collector.Stats(d.runDuration)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := d.collector.Elapsed()
	stats := d.collector.Stats(elapsed)

	// Update latency history for sparkline
	if stats.MeanLatency > 0 {
		latencyMs := stats.MeanLatencyMs
		d.latencyHistory = append(d.latencyHistory, latencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		// Update sparkline title with current latency values
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | Current: %.2fms | Min: %.2fms | Max: %.2fms",
			latencyMs,
			stats.MinLatencyMs,
			stats.MaxLatencyMs,
		)
	}

	currentRPS := stats.RequestsPerSec
	maxRPS := 100.0
	if currentRPS > maxRPS {
		maxRPS = currentRPS
	}
	rpsPercent := int((currentRPS / maxRPS) * 100)
	if rpsPercent > 100 {
		rpsPercent = 100
	}
	d.rpsGauge.Percent = rpsPercent
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", currentRPS)

	successRate := 0.0
	if stats.Total > 0 {
		successRate = (float64(stats.Successes) / float64(stats.Total)) * 100
	}

	// Build run parameters line
	params := d.formatRunParams()

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Requests: %d | Success Rate: %.1f%%",
		d.targetURL,
		params,
		elapsed.Round(time.Second),
		stats.Total,
		successRate,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Total Requests:    %d\nSuccessful:        %d\nFailed:            %d\nCurrent RPS:       %.2f\nSuccess Rate:      %.1f%%\nMin Latency:       %.2fms\nMean Latency:      %.2fms\nP50/P90/P99:       %.2f / %.2f / %.2f ms",
		stats.Total,
		stats.Successes,
		stats.Failures,
		currentRPS,
		successRate,
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		stats.MinLatencyMs,
		stats.MeanLatencyMs,
		stats.P50LatencyMs,
		stats.P90LatencyMs,
		stats.P99LatencyMs,
	)

	d.statusList.Rows = formatStatusListRows(stats.StatusBuckets)
	d.errorsPara.Text = formatErrorBreakdown(stats.Errors, 4)

	d.updateStepList(stats)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func (d *Dashboard) updateStepList(stats metrics.Stats) {
	if len(stats.Operations) == 0 {
		d.stepList.Rows = []string{"[No step data](fg:green)"}
		return
	}
	type stepRow struct {
		name string
		stat metrics.OperationStats
	}
	rows := make([]stepRow, 0, len(stats.Operations))
	for name, stat := range stats.Operations {
		rows = append(rows, stepRow{name: name, stat: stat})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].stat.Total == rows[j].stat.Total {
			return rows[i].name < rows[j].name
		}
		return rows[i].stat.Total > rows[j].stat.Total
	})
	formatted := make([]string, 0, len(rows))
	for _, entry := range rows {
		share := 0.0
		if stats.Total > 0 {
			share = (float64(entry.stat.Total) / float64(stats.Total)) * 100
		}
		formatted = append(formatted, fmt.Sprintf("[%s](fg:cyan) | %5.1f%% | RPS %5.1f | P99 %5.1fms | Err %d",
			entry.name,
			share,
			entry.stat.RequestsPerSec,
			entry.stat.P99LatencyMs,
			entry.stat.Failures,
		))
	}
	d.stepList.Rows = formatted
}

func formatStatusListRows(buckets map[string]map[string]int) []string {
	rows := metrics.FlattenStatusBuckets(buckets)
	if len(rows) == 0 {
		return []string{"[No responses yet](fg:green)"}
	}
	maxRows := len(rows)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		row := rows[i]
		color := "green"
		if !strings.HasPrefix(row.Code, "2") {
			color = "red"
		}
		formatted = append(formatted, fmt.Sprintf("[%s %s](fg:%s) %d", row.Operation, row.Code, color, row.Count))
	}
	return formatted
}

func formatErrorBreakdown(errs map[string]int, limit int) string {
	if len(errs) == 0 {
		return "[No errors](fg:green)"
	}
	merged := map[string]int{}
	for name, count := range errs {
		merged[metrics.FriendlyErrorName(name)] += count
	}
	labels := make([]string, 0, len(merged))
	for label := range merged {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if merged[labels[i]] == merged[labels[j]] {
			return labels[i] < labels[j]
		}
		return merged[labels[i]] > merged[labels[j]]
	})
	if limit > 0 && len(labels) > limit {
		labels = labels[:limit]
	}
	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("[%s:](fg:white) [%d](fg:yellow)", label, merged[label]))
	}
	return strings.Join(lines, "\n")
}

// formatRunParams formats the run configuration parameters for display.
func (d *Dashboard) formatRunParams() string {
	var parts []string

	// Concurrency
	if d.runConfig.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", d.runConfig.Concurrency))
	}

	// Orders
	if d.runConfig.Orders > 0 {
		parts = append(parts, fmt.Sprintf("Orders: %d", d.runConfig.Orders))
	}

	// Status polls per order
	if d.runConfig.GetsPerOrder > 0 {
		parts = append(parts, fmt.Sprintf("Polls/Order: %d", d.runConfig.GetsPerOrder))
	}

	// Rate
	if d.runConfig.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", d.runConfig.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}

	// Timeout
	if d.runConfig.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", d.runConfig.Timeout))
	}

	// Config file (only show if used)
	if d.runConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.runConfig.ConfigFile))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " | ")
}
