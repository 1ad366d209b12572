package config

import "fmt"

// ObservabilityConfig configures structured logging and OpenTelemetry
// export. An empty OTLPEndpoint disables tracing/metrics export; logs
// always go to stderr via log/slog regardless of this config.
type ObservabilityConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

func applyObservabilityDefaults(cfg *ObservabilityConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "nikcli"
	}
}

func validateObservability(cfg ObservabilityConfig) []string {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return []string{fmt.Sprintf("observability.log_level %q is not one of debug, info, warn, error", cfg.LogLevel)}
	}
}
