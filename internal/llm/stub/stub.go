// Package stub provides a deterministic provider for local development and tests.
package stub

import (
	"context"
	_ "embed"
	"sync/atomic"
	"time"

	"resume-builder/internal/llm"
)

//go:embed sample_resume.json
var sampleResume string

// Provider replays Fragments in order, then ends with Err (nil means success).
type Provider struct {
	Fragments []string
	Err       error
	// SetupErr is returned by Stream itself.
	SetupErr error
	// Delay is slept before each fragment; it honors context cancellation.
	Delay time.Duration

	calls   atomic.Int64
	prompts chan llm.Prompt
}

// New returns a provider that replays fragments.
func New(fragments ...string) *Provider {
	return &Provider{Fragments: fragments}
}

// Sample returns a provider that streams a complete sample resume in chunkSize pieces.
func Sample(chunkSize int) *Provider {
	return New(Split(sampleResume, chunkSize)...)
}

// SampleResume is the canned document Sample streams.
func SampleResume() string {
	return sampleResume
}

// Split cuts text into pieces of at most size bytes.
func Split(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	out := make([]string, 0, len(text)/size+1)
	for len(text) > size {
		out = append(out, text[:size])
		text = text[size:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func (p *Provider) Name() string { return "stub" }

// Calls reports how many times Stream was invoked.
func (p *Provider) Calls() int {
	return int(p.calls.Load())
}

// Record makes the provider keep the first n prompts for inspection via Prompts.
// Later prompts are dropped until the channel is drained.
func (p *Provider) Record(n int) *Provider {
	p.prompts = make(chan llm.Prompt, n)
	return p
}

// Prompts returns the recorded prompts channel.
func (p *Provider) Prompts() <-chan llm.Prompt {
	return p.prompts
}

// Stream replays the script.
func (p *Provider) Stream(ctx context.Context, prompt llm.Prompt) (llm.FragmentStream, error) {
	p.calls.Add(1)
	if p.prompts != nil {
		select {
		case p.prompts <- prompt:
		default:
		}
	}
	if p.SetupErr != nil {
		return nil, p.SetupErr
	}
	return func(yield func(string, error) bool) {
		for _, frag := range p.Fragments {
			if p.Delay > 0 {
				select {
				case <-time.After(p.Delay):
				case <-ctx.Done():
					yield("", ctx.Err())
					return
				}
			}
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
		if p.Err != nil {
			yield("", p.Err)
		}
	}, nil
}

var _ llm.Provider = (*Provider)(nil)
