package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Alexdat2000/scooterload/internal/client"
	"github.com/Alexdat2000/scooterload/internal/config"
	"github.com/Alexdat2000/scooterload/internal/dashboard"
	"github.com/Alexdat2000/scooterload/internal/logging"
	"github.com/Alexdat2000/scooterload/internal/metrics"
	"github.com/Alexdat2000/scooterload/internal/output"
	"github.com/Alexdat2000/scooterload/internal/ratelimit"
	"github.com/Alexdat2000/scooterload/internal/runner"
	"github.com/Alexdat2000/scooterload/internal/scenario"
	"github.com/Alexdat2000/scooterload/internal/tracing"
)

const (
	progressInterval  = time.Second
	readinessInterval = 2 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := logging.NewRunID()
	log := logging.New(os.Stderr, cfg.LogLevel, runID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, tracing.Config{
		Endpoint:   cfg.Tracing.Endpoint,
		Protocol:   cfg.Tracing.Protocol,
		Insecure:   cfg.Tracing.Insecure,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := provider.Shutdown(flushCtx); err != nil {
			log.Warn().Err(err).Msg("trace provider shutdown failed")
		}
	}()
	if provider.Enabled() {
		log.Info().Msg("tracing enabled")
	}

	logStartup(log, cfg)

	if cfg.WaitReady > 0 {
		if err := waitForService(ctx, cfg, log); err != nil {
			return err
		}
	}

	limiter := ratelimit.New(cfg.Rate)
	collector := metrics.NewCollector()
	tracer := provider.Tracer()

	opts := runner.Options{
		Concurrency:  cfg.Concurrency,
		TotalOrders:  cfg.Orders,
		GetsPerOrder: cfg.GetsPerOrder,
		NewExecutor: func(worker int) runner.Executor {
			c := client.New(cfg.TargetURL, cfg.Timeout)
			return scenario.NewRunner(c, limiter, collector, tracer, log)
		},
		Logger: log,
	}

	r := runner.New(opts)

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.RunConfig{
			TargetURL:    cfg.TargetURL,
			Concurrency:  cfg.Concurrency,
			Orders:       cfg.Orders,
			GetsPerOrder: cfg.GetsPerOrder,
			Rate:         cfg.Rate,
			Timeout:      cfg.Timeout,
			ConfigFile:   cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	// Mark the actual start time in the collector so the dashboard and
	// progress reporter compute RPS from when the run really began.
	collector.Start()
	result := r.Run(ctx)

	var stats metrics.Stats
	if dash != nil {
		// Restore the terminal before printing the final report.
		dash.Stop()
		stats = dash.GetFinalStats()
	} else {
		stats = collector.Stats(result.Duration)
	}
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	log.Info().
		Int("total_orders", result.Requested).
		Int("successes", result.Successes).
		Int("failures", result.Failures).
		Float64("throughput_per_sec", result.Throughput()).
		Msg("load run finished")

	rep := output.NewReport(runID, cfg.TargetURL, cfg.Rate, result, stats)

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, rep)
	}

	if cfg.JSONFile != "" {
		if err := output.WriteJSONFile(cfg.JSONFile, rep); err != nil {
			return err
		}
		log.Info().Str("path", cfg.JSONFile).Msg("report written")
	}

	// Scenario failures are part of the measurement, not a harness error, so
	// they never fail the process.
	return nil
}

// logStartup echoes the effective run configuration, including how the order
// count splits across workers.
func logStartup(log zerolog.Logger, cfg *config.Config) {
	base, remainder := 0, 0
	if cfg.Concurrency > 0 {
		base = cfg.Orders / cfg.Concurrency
		remainder = cfg.Orders % cfg.Concurrency
	}
	log.Info().
		Str("target", cfg.TargetURL).
		Int("users", cfg.Concurrency).
		Int("total_orders", cfg.Orders).
		Int("gets_per_order", cfg.GetsPerOrder).
		Int("base_orders_per_user", base).
		Int("remainder", remainder).
		Int("rate", cfg.Rate).
		Dur("timeout", cfg.Timeout).
		Msg("starting load run")
}

// waitForService polls the target's health endpoint until it answers 200 or
// the wait budget runs out. Probes are paced so a slow target is not hammered
// before the run even starts.
func waitForService(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	probe := client.New(cfg.TargetURL, 0)
	defer probe.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, cfg.WaitReady)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(readinessInterval), 1)
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("target %s not ready after %s", cfg.TargetURL, cfg.WaitReady)
			}
			return err
		}
		if probe.Healthy(ctx) {
			log.Info().Int("attempt", attempt).Msg("target ready")
			return nil
		}
		log.Debug().Int("attempt", attempt).Msg("target not ready yet")
	}
}
