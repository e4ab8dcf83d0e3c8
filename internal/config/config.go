// Package config loads reactorctl's configuration from a YAML file and
// environment variables, layered with viper: defaults, then config
// file, then environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds reactorctl's full configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Limits    LimitsConfig    `mapstructure:"limits"`
}

// HTTPConfig controls the /metrics and /healthz server.
type HTTPConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
}

// TracingConfig controls OTLP export. OTLPEndpoint is loaded but not
// passed on: obs.InitTracing takes its endpoint from REACTOR_OTLP_ENDPOINT.
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

// TelemetryConfig sizes the TelemetryObserver's async event buffer.
type TelemetryConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// LimitsConfig bounds what a single run will tolerate, independent of
// the Go runtime's own limits.
type LimitsConfig struct {
	MaxRedefinitionDepth int `mapstructure:"max_redefinition_depth"`
}

// Load reads configuration from configPath (if non-empty) and the
// REACTOR_-prefixed environment, in that priority order (env wins).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("REACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 8090)
	v.SetDefault("http.read_timeout", 10)
	v.SetDefault("http.write_timeout", 10)
	v.SetDefault("http.shutdown_timeout", 5)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "reactor")
	v.SetDefault("tracing.service_version", "dev")

	v.SetDefault("telemetry.buffer_size", 1000)

	v.SetDefault("limits.max_redefinition_depth", 10000)
}
