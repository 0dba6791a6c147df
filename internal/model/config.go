package model

import (
	"runtime"
	"time"
)

// Config is the full filesort configuration
type Config struct {
	Inference    InferenceConfig    `yaml:"inference" mapstructure:"inference"`
	Learning     LearningConfig     `yaml:"learning" mapstructure:"learning"`
	Rules        RulesConfig        `yaml:"rules" mapstructure:"rules"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// InferenceConfig configures the local inference service
type InferenceConfig struct {
	// Provider: "ollama", "openai" (any OpenAI-compatible server) or "" to disable
	Provider    string `yaml:"provider" mapstructure:"provider"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model       string `yaml:"model" mapstructure:"model"`
	VisionModel string `yaml:"vision_model" mapstructure:"vision_model"`

	TextTimeout    time.Duration `yaml:"text_timeout" mapstructure:"text_timeout"`
	ContentTimeout time.Duration `yaml:"content_timeout" mapstructure:"content_timeout"`
	VisionTimeout  time.Duration `yaml:"vision_timeout" mapstructure:"vision_timeout"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
	ProbeCacheTTL  time.Duration `yaml:"probe_cache_ttl" mapstructure:"probe_cache_ttl"`

	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	NumPredict  int     `yaml:"num_predict" mapstructure:"num_predict"`

	// VisionMaxWidth downscales images wider than this before upload (0 sends the file as-is)
	VisionMaxWidth int `yaml:"vision_max_width" mapstructure:"vision_max_width"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// Enabled reports whether an inference provider is configured
func (c InferenceConfig) Enabled() bool {
	return c.Provider != ""
}

// LearningConfig configures the learning store
type LearningConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // json, sqlite, memory
	Path    string `yaml:"path" mapstructure:"path"`
}

// RulesConfig configures user keyword rules
type RulesConfig struct {
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles inference calls per model (0 = unlimited)
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// VisionRequestsPerSecond overrides the rate for the vision model (0 = same as requests_per_second)
	VisionRequestsPerSecond float64 `yaml:"vision_requests_per_second" mapstructure:"vision_requests_per_second"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Inference: DefaultInferenceConfig(),
		Learning: LearningConfig{
			Backend: "json",
			Path:    "~/.filesort/learning_data.json",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultInferenceConfig returns defaults for a local Ollama server
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{
		Provider:       "ollama",
		BaseURL:        "http://localhost:11434",
		Model:          "llama3.2",
		VisionModel:    "llava",
		TextTimeout:    10 * time.Second,
		ContentTimeout: 15 * time.Second,
		VisionTimeout:  30 * time.Second, // vision inference is slow
		ProbeTimeout:   2 * time.Second,
		ProbeCacheTTL:  30 * time.Second,
		Temperature:    0.1,
		NumPredict:     20,
	}
}
