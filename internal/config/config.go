package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds every knob of a load run. Values are resolved by Loader.Load
// with flags taking precedence over the config file, which takes precedence
// over the environment and built-in defaults.
type Config struct {
	TargetURL    string        `mapstructure:"target"`
	Concurrency  int           `mapstructure:"concurrency"`
	Orders       int           `mapstructure:"orders"`
	GetsPerOrder int           `mapstructure:"gets_per_order"`
	Rate         int           `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	WaitReady    time.Duration `mapstructure:"wait_ready"`
	LogLevel     string        `mapstructure:"log_level"`
	JSONOutput   bool          `mapstructure:"json_output"`
	JSONFile     string        `mapstructure:"json_file"`
	Dashboard    bool          `mapstructure:"dashboard"`
	ConfigFile   string        `mapstructure:"-"`
	Tracing      TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls optional OTLP trace export. Tracing stays disabled
// until an endpoint is configured here or via OTEL_EXPORTER_OTLP_ENDPOINT.
type TracingConfig struct {
	Endpoint   string  `mapstructure:"endpoint"`
	Protocol   string  `mapstructure:"protocol"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (set --target or CLIENT_SERVICE_URL)")
	}

	// Security warnings for high rate/concurrency
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High rate limit configured (%d RPS). Ensure you have authorization to test the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}

	// Print warnings to stderr
	if len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, w)
		}
	}

	if c.Orders > 0 && c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1 when orders > 0")
	}
	if c.Orders < 0 {
		issues = append(issues, "orders must be >= 0")
	}
	if c.GetsPerOrder < 0 {
		issues = append(issues, "gets-per-order must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.WaitReady < 0 {
		issues = append(issues, "wait-ready must be >= 0")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	levelIssues := validateLogLevel(c.LogLevel)
	if len(levelIssues) > 0 {
		issues = append(issues, levelIssues...)
	}

	tracingIssues := validateTracingConfig(c.Tracing)
	if len(tracingIssues) > 0 {
		issues = append(issues, tracingIssues...)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateLogLevel(level string) []string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "", "DEBUG", "INFO", "WARNING", "ERROR":
		return nil
	default:
		return []string{fmt.Sprintf("log-level %q is not supported (use DEBUG, INFO, WARNING, or ERROR)", level)}
	}
}

func validateTracingConfig(tr TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(tr.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", tr.Protocol))
	}
	if tr.SampleRate < 0 || tr.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", tr.SampleRate))
	}
	return issues
}
