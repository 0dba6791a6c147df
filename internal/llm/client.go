package llm

import (
	"context"
	"time"

	"github.com/ppiankov/filesort/internal/model"
)

// Client talks to an inference service.
// Every call makes exactly one attempt; retries are the caller's business.
type Client interface {
	// Name returns the provider name
	Name() string

	// Generate completes a single prompt
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Chat answers a conversation; messages may carry images
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// ListModels returns the model names the service advertises
	ListModels(ctx context.Context) ([]string, error)
}

// Options tune sampling
type Options struct {
	Temperature float64
	NumPredict  int // max tokens to produce
}

// Message is one chat turn
type Message struct {
	Role    string
	Content string
	Images  [][]byte // raw image bytes; providers encode them
}

// GenerateRequest is the input to Generate
type GenerateRequest struct {
	Model   string
	Prompt  string
	Options Options

	// Timeout bounds the call (0 = only the caller's context)
	Timeout time.Duration
}

// ChatRequest is the input to Chat
type ChatRequest struct {
	Model    string
	Messages []Message
	Options  Options
	Timeout  time.Duration
}

// Config holds inference client configuration
type Config struct {
	// Provider name: "ollama", "openai", "" (disabled)
	Provider string

	BaseURL string

	// APIKey is only used by OpenAI-compatible servers that want one
	APIKey string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts model.InferenceConfig to llm.Config
func ConfigFromModel(cfg model.InferenceConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	}
}

// OptionsFromModel returns the sampling options configured for classification
func OptionsFromModel(cfg model.InferenceConfig) Options {
	return Options{
		Temperature: cfg.Temperature,
		NumPredict:  cfg.NumPredict,
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
