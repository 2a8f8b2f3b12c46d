// Package config provides configuration loading for researchd.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. Model credentials are always injected through
// configuration; no package in this repository reads the process
// environment on its own.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete researchd configuration.
type Config struct {
	LLM           LLMConfig           `koanf:"llm"`
	Pipeline      PipelineConfig      `koanf:"pipeline"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// LLMConfig holds model provider configuration.
type LLMConfig struct {
	OpenAI OpenAIConfig `koanf:"openai"`
	Google GoogleConfig `koanf:"google"`
}

// OpenAIConfig configures the OpenAI-compatible chat backend used by the
// planner, searcher, and synthesis agents.
type OpenAIConfig struct {
	APIKey      Secret  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	BaseURL     string  `koanf:"base_url"` // empty means the provider default
	Temperature float64 `koanf:"temperature"`
}

// GoogleConfig configures the Google model used by the output guardrails
// agent.
type GoogleConfig struct {
	APIKey Secret `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// PipelineConfig holds research pipeline settings.
type PipelineConfig struct {
	// MaxSearches caps the number of web searches per research run.
	MaxSearches int `koanf:"max_searches"`

	// IncludeValidation runs the output guardrails agent on the report.
	IncludeValidation bool `koanf:"include_validation"`

	// StepTimeout bounds a single agent invocation. Zero disables it.
	StepTimeout Duration `koanf:"step_timeout"`
}

// LoggingConfig holds the subset of logging settings exposed through the
// top-level config. See internal/logging for the full logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	Endpoint        string `koanf:"endpoint"`
	Protocol        string `koanf:"protocol"` // "grpc" or "http/protobuf"
	ServiceName     string `koanf:"service_name"`
	Insecure        bool   `koanf:"insecure"`
}

// NewDefaultConfig returns a configuration with sensible defaults.
// API keys have no default and must come from the environment or file.
func NewDefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			OpenAI: OpenAIConfig{
				Model:       "gpt-4",
				Temperature: 0.7,
			},
			Google: GoogleConfig{
				Model: "gemini-pro",
			},
		},
		Pipeline: PipelineConfig{
			MaxSearches:       2,
			IncludeValidation: true,
			StepTimeout:       Duration(2 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: false,
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			ServiceName:     "researchd",
			Insecure:        true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Pipeline.MaxSearches < 1 || c.Pipeline.MaxSearches > 5 {
		return fmt.Errorf("pipeline.max_searches must be between 1 and 5, got %d", c.Pipeline.MaxSearches)
	}
	if c.LLM.OpenAI.Model == "" {
		return fmt.Errorf("llm.openai.model is required")
	}
	if c.LLM.OpenAI.Temperature < 0 || c.LLM.OpenAI.Temperature > 2 {
		return fmt.Errorf("llm.openai.temperature must be between 0 and 2, got %f", c.LLM.OpenAI.Temperature)
	}
	if c.LLM.Google.Model == "" {
		return fmt.Errorf("llm.google.model is required")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Observability.EnableTelemetry {
		if c.Observability.Endpoint == "" {
			return fmt.Errorf("observability.endpoint is required when telemetry is enabled")
		}
		switch c.Observability.Protocol {
		case "grpc", "http/protobuf":
		default:
			return fmt.Errorf("observability.protocol must be 'grpc' or 'http/protobuf', got %q", c.Observability.Protocol)
		}
	}
	return nil
}
