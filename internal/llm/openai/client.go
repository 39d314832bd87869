package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

const DefaultModel = "gpt-4o-mini"

// Client streams completions from OpenAI Chat Completions.
type Client struct {
	api   sdk.Client
	model string
}

// NewClient constructs a new OpenAI client. baseURL may be empty.
// SDK retries are off since llm.WithRetry owns that policy.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{api: sdk.NewClient(opts...), model: model}, nil
}

func (c *Client) Name() string { return "openai" }

// Stream opens a streamed chat completion. The HTTP request is sent when iteration starts.
// A stream that ends before any choice reports a finish reason is incomplete.
func (c *Client) Stream(ctx context.Context, prompt llm.Prompt) (llm.FragmentStream, error) {
	if strings.TrimSpace(prompt.User) == "" {
		return nil, llm.ErrEmptyPrompt
	}
	model := c.model
	if prompt.Model != "" {
		model = prompt.Model
	}
	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: toParams(BuildMessages(prompt, model)),
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		StreamOptions: sdk.ChatCompletionStreamOptionsParam{IncludeUsage: sdk.Bool(true)},
	}
	if prompt.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(prompt.MaxTokens))
	}
	if !isGPT5(model) {
		params.Temperature = sdk.Float(0)
	}

	return func(yield func(string, error) bool) {
		stream := c.api.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		finished := false
		for stream.Next() {
			chunk := stream.Current()
			if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
				telemetry.Debug("llm.usage", map[string]any{
					"provider":          "openai",
					"model":             model,
					"prompt_tokens":     chunk.Usage.PromptTokens,
					"completion_tokens": chunk.Usage.CompletionTokens,
				})
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					if !yield(choice.Delta.Content, nil) {
						return
					}
				}
				if choice.FinishReason == "" {
					continue
				}
				finished = true
				if choice.FinishReason == "length" {
					telemetry.Warn("llm.truncated", map[string]any{"provider": "openai", "model": model})
				}
			}
		}
		err := stream.Err()
		if err == nil {
			if finished {
				return
			}
			err = llm.ErrIncompleteStream
		}
		yield("", fmt.Errorf("openai stream: %w", describe(err)))
	}, nil
}

func toParams(messages []Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "developer":
			out = append(out, sdk.DeveloperMessage(m.Content))
		case "system":
			out = append(out, sdk.SystemMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}

// describe puts the HTTP status in front of API errors so retry can classify them.
func describe(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("http status %d: %w", apiErr.StatusCode, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", err)
	}
	return err
}

var _ llm.Provider = (*Client)(nil)
