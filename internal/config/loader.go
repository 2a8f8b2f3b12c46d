package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envAliases maps well-known provider variables onto config keys. The
// generic section transformer below cannot derive these because the
// variable names predate this program.
var envAliases = map[string]string{
	"openai_api_key":  "llm.openai.api_key",
	"openai_model":    "llm.openai.model",
	"openai_base_url": "llm.openai.base_url",
	"gemini_api_key":  "llm.google.api_key",
	"gemini_model":    "llm.google.model",
}

// Load loads configuration from an optional YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (OPENAI_API_KEY, PIPELINE_MAX_SEARCHES, ...)
//  2. YAML config file (if configPath is non-empty and the file exists)
//  3. Hardcoded defaults
//
// Environment variables use underscore separators and are uppercased:
//
//	PIPELINE_MAX_SEARCHES      -> pipeline.max_searches
//	OBSERVABILITY_SERVICE_NAME -> observability.service_name
//	LLM_OPENAI_TEMPERATURE     -> llm.openai.temperature
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			content, err := readConfigFile(configPath)
			if err != nil {
				return nil, err
			}
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return unmarshal(k)
}

// LoadBytes loads configuration from raw YAML content. Environment variables
// are not consulted; intended for tests and embedded configuration.
func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envToKey maps an environment variable name onto a dotted config key.
// Unknown variables map to keys no config field carries and are ignored
// during unmarshal.
func envToKey(s string) string {
	lower := strings.ToLower(s)
	if key, ok := envAliases[lower]; ok {
		return key
	}

	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	section, field := parts[0], parts[1]

	// The llm section nests one level deeper: llm.<provider>.<field>.
	if section == "llm" {
		sub := strings.SplitN(field, "_", 2)
		if len(sub) == 2 {
			return "llm." + sub[0] + "." + sub[1]
		}
	}
	return section + "." + field
}

// readConfigFile reads a config file with a size cap to avoid loading
// arbitrarily large content into memory.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
