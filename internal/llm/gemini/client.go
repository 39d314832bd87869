package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-builder/internal/llm"
)

const DefaultModel = "gemini-2.5-flash"

// Client streams completions through the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a Gemini API client; baseURL may be empty.
func NewClient(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string { return "gemini" }

// Stream opens GenerateContentStream. The request is sent when iteration starts.
func (c *Client) Stream(ctx context.Context, prompt llm.Prompt) (llm.FragmentStream, error) {
	if strings.TrimSpace(prompt.User) == "" {
		return nil, llm.ErrEmptyPrompt
	}
	model := c.model
	if prompt.Model != "" {
		model = prompt.Model
	}
	seq := c.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt.User), generateConfig(prompt))

	return func(yield func(string, error) bool) {
		for resp, err := range seq {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}, nil
}

func generateConfig(prompt llm.Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if prompt.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(prompt.MaxTokens)
	}
	if strings.TrimSpace(prompt.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	return cfg
}

var _ llm.Provider = (*Client)(nil)
