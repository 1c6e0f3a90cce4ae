package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports a missing or invalid configuration value.
// It is fatal: nothing runs before the config loads cleanly.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error for %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("missing required configuration key: %q", e.Key)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Config is the effective configuration for one evaluation run. It is loaded
// once per run and never mutated by any stage.
type Config struct {
	UseCase           string          `yaml:"use_case"`
	Thresholds        Thresholds      `yaml:"thresholds"`
	Evaluation        Evaluation      `yaml:"evaluation"`
	TargetModel       TargetModel     `yaml:"target_model"`
	VerificationModel Model           `yaml:"verification_model"`
	Elasticsearch     Elasticsearch   `yaml:"elasticsearch"`
	DocSources        []DocSource     `yaml:"doc_sources"`
	Audit             Audit           `yaml:"audit"`
}

// Thresholds gate the deployment decision. Both are minimum required
// reliability, not risk.
type Thresholds struct {
	Deploy float64 `yaml:"deploy"`
	Warn   float64 `yaml:"warn"`
}

type Evaluation struct {
	NumPrompts       int      `yaml:"num_prompts"`
	PromptCategories []string `yaml:"prompt_categories"`
}

type TargetModel struct {
	Provider string `yaml:"provider"`
	ModelID  string `yaml:"model_id"`
}

type Model struct {
	ModelID string `yaml:"model_id"`
}

type Elasticsearch struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Index     string `yaml:"index"`
	Retrieval string `yaml:"retrieval"`
}

type DocSource struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// Audit configures the optional best-effort audit record write. An empty
// RedisAddr disables auditing.
type Audit struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
}

var requiredKeys = []string{
	"use_case",
	"thresholds",
	"evaluation",
	"target_model",
	"verification_model",
	"elasticsearch",
	"doc_sources",
}

// DefaultPath is used when no config path is supplied by the caller.
const DefaultPath = "config.yaml"

// Load reads and validates a YAML configuration file. An empty path falls
// back to DefaultPath. Any missing required key fails with a
// *ConfigurationError before the pipeline starts.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Key: path, Err: err}
	}

	// Required keys are checked against the raw document so that a present
	// but empty section is distinguishable from an absent one.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Key: path, Err: err}
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, &ConfigurationError{Key: key}
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Key: path, Err: err}
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Thresholds.Deploy == 0 {
		cfg.Thresholds.Deploy = 0.8
	}
	if cfg.Thresholds.Warn == 0 {
		cfg.Thresholds.Warn = 0.5
	}
	if cfg.Evaluation.NumPrompts == 0 {
		cfg.Evaluation.NumPrompts = 10
	}
	if cfg.Elasticsearch.Port == 0 {
		cfg.Elasticsearch.Port = 9200
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "trusted_docs"
	}
	if cfg.Elasticsearch.Retrieval == "" {
		cfg.Elasticsearch.Retrieval = "text"
	}
	if cfg.TargetModel.Provider == "" {
		cfg.TargetModel.Provider = "bedrock"
	}
}

func (c *Config) validate() error {
	if c.TargetModel.ModelID == "" {
		return &ConfigurationError{Key: "target_model.model_id"}
	}
	if c.VerificationModel.ModelID == "" {
		return &ConfigurationError{Key: "verification_model.model_id"}
	}
	if c.Elasticsearch.Host == "" {
		return &ConfigurationError{Key: "elasticsearch.host"}
	}
	if c.Thresholds.Warn > c.Thresholds.Deploy {
		return &ConfigurationError{
			Key: "thresholds",
			Err: fmt.Errorf("warn threshold %.2f exceeds deploy threshold %.2f", c.Thresholds.Warn, c.Thresholds.Deploy),
		}
	}
	switch c.Elasticsearch.Retrieval {
	case "text", "vector":
	default:
		return &ConfigurationError{
			Key: "elasticsearch.retrieval",
			Err: fmt.Errorf("unknown retrieval mode %q", c.Elasticsearch.Retrieval),
		}
	}
	return nil
}
