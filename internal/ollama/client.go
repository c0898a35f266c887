// Package ollama provides a client for a locally hosted Ollama server.
// Uses the OpenAI-compatible endpoint for chat completions.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// Default OpenAI-compatible endpoint of a local Ollama server
	DefaultEndpoint = "http://localhost:11434/v1"

	// Default model
	DefaultModel = "gemma3:1b"
)

// Client wraps the OpenAI SDK configured for a local Ollama server.
type Client struct {
	client *openai.Client
	model  string
}

// Config holds the configuration for the Ollama client.
type Config struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// NewClient creates a new Ollama client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	// Ollama ignores the API key but the SDK requires one
	config := openai.DefaultConfig("ollama")
	config.BaseURL = cfg.Endpoint
	if cfg.Timeout > 0 {
		// Small local models can take minutes on long prompts
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// ChatResponse represents a chat completion response.
type ChatResponse struct {
	Content      string
	FinishReason string
	TokensUsed   TokenUsage
}

// TokenUsage represents token usage statistics.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Chat sends a chat completion request to the local model server.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := []openai.ChatCompletionMessage{}

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
	}

	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	log.Debug().
		Str("model", c.model).
		Int("prompt_chars", len(req.UserPrompt)).
		Msg("Sending chat request to Ollama")

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// ChatJSON sends a chat request and parses the JSON object embedded in the
// response. Local models wrap JSON in fences or prose more often than not,
// so the response goes through ExtractJSON first.
func (c *Client) ChatJSON(ctx context.Context, req ChatRequest, result interface{}) error {
	resp, err := c.Chat(ctx, req)
	if err != nil {
		return err
	}

	raw, err := ExtractJSON(resp.Content)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
