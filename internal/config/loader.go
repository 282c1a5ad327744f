package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// envTarget is consulted when neither --target nor a config file names the
// rental service.
const (
	envTarget     = "CLIENT_SERVICE_URL"
	defaultTarget = "http://localhost:8080"
)

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Running without any arguments is valid and yields a full default
// run against CLIENT_SERVICE_URL.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		TargetURL:    defaultTargetURL(),
		Concurrency:  200,
		Orders:       100,
		GetsPerOrder: 100,
		Timeout:      30 * time.Second,
		LogLevel:     "INFO",
		ConfigFile:   configPath,
		Tracing:      TracingConfig{Protocol: "grpc", SampleRate: 1},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

// defaultTargetURL resolves the built-in target, honoring CLIENT_SERVICE_URL.
func defaultTargetURL() string {
	if env := strings.TrimSpace(os.Getenv(envTarget)); env != "" {
		return env
	}
	return defaultTarget
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.TargetURL = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "orders"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		cfg.Orders = val
	}

	if raw, ok := lookupSetting(settings, "getsperorder", "gets_per_order", "gets-per-order"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("getsPerOrder: %w", err)
		}
		cfg.GetsPerOrder = val
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "waitready", "wait_ready", "wait-ready"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("waitReady: %w", err)
		}
		cfg.WaitReady = dur
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.LogLevel = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "jsonfile", "json_file", "json-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("jsonFile: %w", err)
		}
		cfg.JSONFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tr, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tr
	}

	return nil
}

func parseTracing(value interface{}) (TracingConfig, error) {
	if value == nil {
		return TracingConfig{Protocol: "grpc", SampleRate: 1}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	return buildTracingConfig(entry)
}

func buildTracingConfig(settings map[string]interface{}) (TracingConfig, error) {
	tr := TracingConfig{Protocol: "grpc", SampleRate: 1}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tr.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			tr.Protocol = strings.ToLower(strings.TrimSpace(val))
		}
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tr.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tr.SampleRate = val
	}
	return tr, nil
}
