package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI-compatible servers
// (LM Studio, llama.cpp server, vLLM and the like)
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for an OpenAI-compatible server (e.g., http://localhost:1234/v1)")
	}

	// local servers usually ignore the key, but the header must be well-formed
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "filesort"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	clientConfig.HTTPClient = newHTTPClient(config)

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Generate sends the prompt as a single user message
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return c.Chat(ctx, ChatRequest{
		Model:    req.Model,
		Messages: []Message{{Role: openai.ChatMessageRoleUser, Content: req.Prompt}},
		Options:  req.Options,
		Timeout:  req.Timeout,
	})
}

// Chat uses the Chat Completions API; images become data-URI image parts
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("model must be specified")
	}

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = toOpenAIMessage(m)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.Options.NumPredict,
		Temperature: float32(req.Options.Temperature),
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", openAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrMalformed)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the model IDs from GET /models
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, openAIError(err)
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessage {
	if len(m.Images) == 0 {
		return openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: m.Content,
		},
	}
	for _, img := range m.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURI(img),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	return openai.ChatCompletionMessage{Role: m.Role, MultiContent: parts}
}

func dataURI(img []byte) string {
	return "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img)
}

func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		statusErr := &StatusError{Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
		if apiErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrModelMissing, statusErr)
		}
		return statusErr
	}
	return transportError(err)
}
