package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// RetryPolicy bounds provider retries. Attempts counts the first try.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	// OnRetry observes each retry (attempt is the one about to start).
	OnRetry func(provider string, attempt int, err error)
}

type retryingProvider struct {
	base   Provider
	policy RetryPolicy
}

// WithRetry wraps p so that a transient failure before the first fragment reopens the stream.
// Once any fragment was delivered, errors pass through untouched. Setup errors are never retried.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	if p == nil || policy.Attempts <= 1 {
		return p
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 300 * time.Millisecond
	}
	return retryingProvider{base: p, policy: policy}
}

func (r retryingProvider) Name() string { return r.base.Name() }

func (r retryingProvider) Stream(ctx context.Context, prompt Prompt) (FragmentStream, error) {
	first, err := r.base.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return func(yield func(string, error) bool) {
		stream := first
		for attempt := 1; ; attempt++ {
			delivered := false
			var failure error
			for frag, err := range stream {
				if err != nil {
					failure = err
					break
				}
				delivered = true
				if !yield(frag, nil) {
					return
				}
			}
			if failure == nil {
				return
			}
			if delivered || attempt >= r.policy.Attempts || ctx.Err() != nil || !ShouldRetry(failure) {
				yield("", failure)
				return
			}
			if r.policy.OnRetry != nil {
				r.policy.OnRetry(r.base.Name(), attempt+1, failure)
			}
			delay := r.policy.BaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				yield("", failure)
				return
			}
			next, err := r.base.Stream(ctx, prompt)
			if err != nil {
				yield("", err)
				return
			}
			stream = next
		}
	}, nil
}

// ShouldRetry reports whether err looks transient.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrIncompleteStream) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "http status 429") {
		return true
	}
	if strings.Contains(msg, "overloaded") || strings.Contains(msg, "server_error") || strings.Contains(msg, "rate_limit") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof") {
		return true
	}
	return false
}
