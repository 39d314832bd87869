package llm

import (
	"context"
	"errors"
	"iter"
)

// Prompt is one generation request as the provider sees it.
type Prompt struct {
	System    string
	User      string
	Model     string // empty selects the provider default
	MaxTokens int
}

// FragmentStream yields text fragments in arrival order. A yielded non-nil error is the
// terminal failure; running out of fragments is the terminal success. Stopping the loop
// early releases the upstream connection.
type FragmentStream = iter.Seq2[string, error]

// Provider opens streaming completions.
//
// Stream reports only local setup failures (missing credentials, unencodable request) as an
// error; transport and provider failures arrive through the returned stream.
type Provider interface {
	Name() string
	Stream(ctx context.Context, prompt Prompt) (FragmentStream, error)
}

var (
	// ErrNotConfigured is returned by the placeholder provider.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrEmptyPrompt is returned when the prompt has no user content.
	ErrEmptyPrompt = errors.New("llm prompt is empty")
	// ErrIncompleteStream marks a stream that ended without the provider's terminal event.
	ErrIncompleteStream = errors.New("llm stream ended before completion")
)

// PlaceholderProvider stands in when no provider is configured.
type PlaceholderProvider struct{}

func (PlaceholderProvider) Name() string { return "placeholder" }

// Stream returns ErrNotConfigured.
func (PlaceholderProvider) Stream(ctx context.Context, prompt Prompt) (FragmentStream, error) {
	_ = ctx
	_ = prompt
	return nil, ErrNotConfigured
}

// Failed returns a stream whose only element is err.
func Failed(err error) FragmentStream {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}

var _ Provider = PlaceholderProvider{}
