package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

const (
	DefaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 4000
)

// Client streams completions from the Anthropic Messages API.
type Client struct {
	api   sdk.Client
	model string
}

type settings struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*settings)

// WithBaseURL points the client at another host (proxies, tests).
func WithBaseURL(u string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimSpace(u)
	}
}

// WithHTTPClient replaces the transport client. It should not set a Timeout:
// the whole stream is bounded by the request context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// NewClient constructs a client; model may be empty to use DefaultModel.
// SDK retries are off since llm.WithRetry owns that policy.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.httpClient))
	}
	return &Client{api: sdk.NewClient(reqOpts...), model: model}, nil
}

func (c *Client) Name() string { return "anthropic" }

// Stream opens a streamed Messages call. The HTTP request is sent when iteration starts.
func (c *Client) Stream(ctx context.Context, prompt llm.Prompt) (llm.FragmentStream, error) {
	if strings.TrimSpace(prompt.User) == "" {
		return nil, llm.ErrEmptyPrompt
	}
	model := c.model
	if prompt.Model != "" {
		model = prompt.Model
	}
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt.User))},
	}
	if strings.TrimSpace(prompt.System) != "" {
		params.System = []sdk.TextBlockParam{{Text: prompt.System}}
	}

	return func(yield func(string, error) bool) {
		stream := c.api.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		var stopReason sdk.StopReason
		for stream.Next() {
			switch ev := stream.Current().AsAny().(type) {
			case sdk.ContentBlockDeltaEvent:
				text, ok := ev.Delta.AsAny().(sdk.TextDelta)
				if !ok || text.Text == "" {
					continue
				}
				if !yield(text.Text, nil) {
					return
				}
			case sdk.MessageDeltaEvent:
				stopReason = ev.Delta.StopReason
				telemetry.Debug("llm.usage", map[string]any{
					"provider":      "anthropic",
					"model":         model,
					"output_tokens": ev.Usage.OutputTokens,
					"stop_reason":   string(stopReason),
				})
			case sdk.MessageStopEvent:
				if stopReason == sdk.StopReasonMaxTokens {
					telemetry.Warn("llm.truncated", map[string]any{"provider": "anthropic", "model": model, "max_tokens": maxTokens})
				}
				return
			}
		}
		err := stream.Err()
		if err == nil {
			err = llm.ErrIncompleteStream
		}
		yield("", fmt.Errorf("anthropic stream: %w", describe(err)))
	}, nil
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
