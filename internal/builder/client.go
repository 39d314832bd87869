// Package builder is the client side of resume generation: it streams from the generation
// endpoint and republishes the running buffer as bytes arrive.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"resume-builder/internal/generation"
)

const (
	generatePath    = "/api/generate-resume"
	defaultReadSize = 4 << 10
	maxErrorBody    = 1 << 10
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("generate resume: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("generate resume: http status %d: %s", e.StatusCode, e.Body)
}

// Client calls the generation endpoint.
type Client struct {
	baseURL  string
	http     *http.Client
	readSize int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. It must not set a total timeout shorter than a generation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithReadSize sets the body read buffer size.
func WithReadSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 5 * time.Minute},
		readSize: defaultReadSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream posts req and yields the whole running buffer after every chunk read from the body.
// Before the stream ends the buffer is usually not valid JSON. Incomplete UTF-8 sequences at a
// chunk boundary are held back until the rest arrives.
func (c *Client) Stream(ctx context.Context, req generation.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		body, err := json.Marshal(req)
		if err != nil {
			yield("", fmt.Errorf("encode request: %w", err))
			return
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
		if err != nil {
			yield("", err)
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			yield("", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))})
			return
		}

		var running strings.Builder
		var pending []byte
		buf := make([]byte, c.readSize)
		for {
			n, readErr := resp.Body.Read(buf)
			if n > 0 {
				pending = append(pending, buf[:n]...)
				cut := completePrefix(pending)
				if cut > 0 {
					running.Write(pending[:cut])
					pending = append(pending[:0], pending[cut:]...)
					if !yield(running.String(), nil) {
						return
					}
				}
			}
			if errors.Is(readErr, io.EOF) {
				if len(pending) > 0 {
					running.WriteString(strings.ToValidUTF8(string(pending), "\uFFFD"))
					yield(running.String(), nil)
				}
				return
			}
			if readErr != nil {
				yield("", fmt.Errorf("read response: %w", readErr))
				return
			}
		}
	}
}

// completePrefix returns how many leading bytes of b end on a rune boundary.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}
