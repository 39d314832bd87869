package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const (
	defaultTimeout    = 120 * time.Second
	defaultChunkBytes = 512
	defaultMaxTokens  = 4000
)

// Options tunes a Service.
type Options struct {
	Model      string
	MaxTokens  int
	Timeout    time.Duration
	ChunkBytes int
	// Schema, when set, must accept the parsed output for the relay to succeed.
	Schema *model.Schema
}

// Service opens provider streams for generation requests. It holds no per-request state.
type Service struct {
	provider llm.Provider
	opts     Options
	system   string
	now      func() time.Time
}

// NewService constructs a Service around provider.
func NewService(provider llm.Provider, opts Options) (*Service, error) {
	if provider == nil {
		return nil, errors.New("generation: provider is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ChunkBytes <= 0 {
		opts.ChunkBytes = defaultChunkBytes
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	system, err := SystemPrompt()
	if err != nil {
		return nil, err
	}
	return &Service{provider: provider, opts: opts, system: system, now: time.Now}, nil
}

// Generation is one opened provider stream awaiting Relay.
type Generation struct {
	id       string
	svc      *Service
	req      Request
	ctx      context.Context
	cancel   context.CancelFunc
	stream   llm.FragmentStream
	started  time.Time
	relaying bool
}

// ID identifies the generation in logs and history.
func (g *Generation) ID() string { return g.id }

// Open validates req, builds the prompt and opens the provider stream under the generation timeout.
// Errors returned here happen before anything is written to the client. A successful Open must be
// followed by Relay, which releases the stream.
func (s *Service) Open(ctx context.Context, req Request) (*Generation, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	started := s.now()
	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	prompt := buildPrompt(s.system, req, s.opts.Model, s.opts.MaxTokens)
	stream, err := s.provider.Stream(genCtx, prompt)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open %s stream: %w", s.provider.Name(), err)
	}

	g := &Generation{
		id:      uuid.NewString(),
		svc:     s,
		req:     req,
		ctx:     genCtx,
		cancel:  cancel,
		stream:  stream,
		started: started,
	}
	metrics.IncGenerationStarted()
	telemetry.Info("generation.start", map[string]any{
		"generation_id": g.id,
		"provider":      s.provider.Name(),
		"model":         s.opts.Model,
		"has_template":  req.HasTemplate(),
		"jd_len":        len(req.JobDescription),
	})
	return g, nil
}

// Relay drains the provider stream into one payload and writes it to sink.
// The sink is closed exactly once whatever happens, and the provider stream is released.
// Relay must be called at most once.
func (g *Generation) Relay(sink Sink) Result {
	defer g.cancel()

	res := Result{
		ID:          g.id,
		Provider:    g.svc.provider.Name(),
		Model:       g.svc.opts.Model,
		HasTemplate: g.req.HasTemplate(),
		JobDescLen:  len(g.req.JobDescription),
		StartedAt:   g.started,
	}
	if g.relaying {
		res.Outcome = OutcomeProviderError
		res.Err = errors.Join(errors.New("generation already relayed"), sink.Close())
		return res
	}
	g.relaying = true

	defer func() {
		if err := sink.Close(); err != nil && res.Err == nil {
			res.Err = err
		}
		res.Duration = g.svc.now().Sub(g.started)
		metrics.ObserveGeneration(string(res.Outcome), res.Duration, res.Fragments)
		logResult(res)
	}()

	if err := sink.Open(); err != nil {
		res.Outcome = OutcomeProviderError
		res.Err = fmt.Errorf("open sink: %w", err)
		return res
	}

	var buf strings.Builder
	var streamErr error
	for frag, err := range g.stream {
		if err != nil {
			streamErr = err
			break
		}
		res.Fragments++
		buf.WriteString(frag)
	}

	res.Outcome, res.Payload, res.Err = g.finalize(buf.String(), streamErr)

	for chunk := range chunks(res.Payload, g.svc.opts.ChunkBytes) {
		if err := sink.Write(chunk); err != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("write payload: %w", err))
			break
		}
		res.Bytes += len(chunk)
	}
	return res
}

// finalize decides the single payload for the accumulated text.
func (g *Generation) finalize(text string, streamErr error) (Outcome, []byte, error) {
	if streamErr != nil {
		outcome := OutcomeProviderError
		if errors.Is(g.ctx.Err(), context.DeadlineExceeded) {
			outcome = OutcomeTimeout
		}
		return outcome, errorPayload(outcome), streamErr
	}

	payload, err := Canonicalize(text)
	if err != nil {
		return OutcomeParseError, errorPayload(OutcomeParseError), err
	}
	if schema := g.svc.opts.Schema; schema != nil {
		if err := schema.Validate(payload); err != nil {
			return OutcomeSchemaError, errorPayload(OutcomeSchemaError), err
		}
	}
	if doc, err := model.Parse(text); err == nil {
		if issues := doc.DateIssues(); len(issues) > 0 {
			telemetry.Warn("generation.date_format", map[string]any{
				"generation_id": g.id,
				"fields":        strings.Join(issues, ","),
			})
		}
	}
	return OutcomeSuccess, payload, nil
}

// Canonicalize parses text as exactly one JSON value and re-serializes it compactly.
// Surrounding whitespace is allowed, numbers keep their literal form, and HTML is not escaped.
func Canonicalize(text string) ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode model output: %w", err)
	}
	return bytes.TrimRight(out.Bytes(), "\n"), nil
}

func errorPayload(outcome Outcome) []byte {
	raw, _ := json.Marshal(map[string]string{"error": outcome.Message()})
	return raw
}

func chunks(payload []byte, size int) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for len(payload) > 0 {
			n := min(size, len(payload))
			if !yield(payload[:n]) {
				return
			}
			payload = payload[n:]
		}
	}
}

func logResult(res Result) {
	fields := map[string]any{
		"generation_id": res.ID,
		"provider":      res.Provider,
		"outcome":       string(res.Outcome),
		"fragments":     res.Fragments,
		"bytes":         res.Bytes,
		"duration_ms":   res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		fields["error"] = res.Err
		telemetry.Warn("generation.complete", fields)
		return
	}
	telemetry.Info("generation.complete", fields)
}
