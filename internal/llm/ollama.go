package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// OllamaClient implements Client against a local Ollama server
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

// Ollama API structures
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64, no data-URI prefix
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaChatResponse struct {
	Model   string         `json:"model"`
	Message *ollamaMessage `json:"message"`
	Done    bool           `json:"done"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(config Config) *OllamaClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(config),
	}
}

// Name returns the provider name
func (c *OllamaClient) Name() string {
	return "ollama"
}

// Generate calls POST /api/generate
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("ollama model must be specified (e.g., llama3.2, mistral)")
	}

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	apiReq := ollamaGenerateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Stream:  false, // Get complete response at once
		Options: toOllamaOptions(req.Options),
	}

	var resp ollamaGenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", apiReq, &resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Response), nil
}

// Chat calls POST /api/chat; images are sent base64-encoded
func (c *OllamaClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.Model == "" {
		return "", fmt.Errorf("ollama model must be specified (e.g., llava)")
	}

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	messages := make([]ollamaMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = ollamaMessage{Role: m.Role, Content: m.Content}
		for _, img := range m.Images {
			messages[i].Images = append(messages[i].Images, base64.StdEncoding.EncodeToString(img))
		}
	}

	apiReq := ollamaChatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   false,
		Options:  toOllamaOptions(req.Options),
	}

	var resp ollamaChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", apiReq, &resp); err != nil {
		return "", err
	}
	if resp.Message == nil {
		return "", fmt.Errorf("%w: chat response has no message", ErrMalformed)
	}

	return strings.TrimSpace(resp.Message.Content), nil
}

// ListModels calls GET /api/tags
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	var resp ollamaTagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func toOllamaOptions(o Options) ollamaOptions {
	return ollamaOptions{
		Temperature: o.Temperature,
		NumPredict:  o.NumPredict,
	}
}

// do makes an HTTP request to the Ollama API and decodes the JSON reply into out
func (c *OllamaClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return transportError(fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			statusErr.Body = apiErr.Error
		}
		if httpResp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrModelMissing, statusErr)
		}
		return statusErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}
