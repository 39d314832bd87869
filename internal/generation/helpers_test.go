package generation

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/llm"
	"resume-builder/resume/model"
)

type recordingSink struct {
	opens    int
	closes   int
	writes   [][]byte
	openErr  error
	writeErr error
}

func (s *recordingSink) Open() error {
	s.opens++
	return s.openErr
}

func (s *recordingSink) Write(p []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, append([]byte(nil), p...))
	return nil
}

func (s *recordingSink) Close() error {
	s.closes++
	return nil
}

func (s *recordingSink) body() []byte {
	return bytes.Join(s.writes, nil)
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []Result
}

func (r *fakeRecorder) RecordGeneration(ctx context.Context, res Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func (r *fakeRecorder) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

func newTestService(t *testing.T, p llm.Provider, opts Options) *Service {
	t.Helper()
	svc, err := NewService(p, opts)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func withSchema(t *testing.T, opts Options) Options {
	t.Helper()
	schema, err := model.LoadSchema()
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	opts.Schema = schema
	return opts
}

func relay(t *testing.T, svc *Service, req Request) (Result, *recordingSink) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gen, err := svc.Open(ctx, req)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sink := &recordingSink{}
	return gen.Relay(sink), sink
}
