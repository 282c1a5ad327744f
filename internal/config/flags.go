package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scooterload",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("target", "", "Base URL of the rental service (overrides CLIENT_SERVICE_URL)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Duration("wait-ready", 0, "How long to wait for the target health endpoint before starting (0 starts immediately)")

	// Load shape flags
	flags.IntP("concurrency", "c", 200, "Number of concurrent simulated users")
	flags.IntP("orders", "n", 100, "Total number of orders across all users")
	flags.IntP("gets-per-order", "g", 100, "Status polls per order before it is finished")
	flags.IntP("rate", "r", 0, "Requests per second limit across all users (0 means unlimited)")

	// Output flags
	flags.String("log-level", "INFO", "Log level: DEBUG, INFO, WARNING, or ERROR")
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("json-file", "", "Write the JSON summary to the specified file path")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP collector endpoint for trace export (host:port)")
	flags.String("otlp-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("otlp-insecure", false, "Disable TLS for OTLP trace export")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of traces to sample (0.0-1.0)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("wait-ready") {
		val, err := fs.GetDuration("wait-ready")
		if err != nil {
			return err
		}
		cfg.WaitReady = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("orders") {
		val, err := fs.GetInt("orders")
		if err != nil {
			return err
		}
		cfg.Orders = val
	}
	if fs.Changed("gets-per-order") {
		val, err := fs.GetInt("gets-per-order")
		if err != nil {
			return err
		}
		cfg.GetsPerOrder = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("json-file") {
		val, err := fs.GetString("json-file")
		if err != nil {
			return err
		}
		cfg.JSONFile = strings.TrimSpace(val)
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("otlp-endpoint") {
		val, err := fs.GetString("otlp-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otlp-protocol") {
		val, err := fs.GetString("otlp-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("otlp-insecure") {
		val, err := fs.GetBool("otlp-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}

	return nil
}
