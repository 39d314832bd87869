package stub

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSampleReassembles(t *testing.T) {
	p := Sample(37)
	stream, err := p.Stream(context.Background(), llmPrompt())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	var b strings.Builder
	n := 0
	for frag, err := range stream {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		n++
		b.WriteString(frag)
	}
	if b.String() != SampleResume() {
		t.Fatalf("reassembled sample differs")
	}
	if n < 2 {
		t.Fatalf("expected several fragments, got %d", n)
	}
	if p.Calls() != 1 {
		t.Fatalf("expected 1 call, got %d", p.Calls())
	}
}

func TestTerminalError(t *testing.T) {
	boom := errors.New("boom")
	p := &Provider{Fragments: []string{"a", "b"}, Err: boom}
	stream, _ := p.Stream(context.Background(), llmPrompt())
	var got []string
	var last error
	for frag, err := range stream {
		if err != nil {
			last = err
			break
		}
		got = append(got, frag)
	}
	if len(got) != 2 || !errors.Is(last, boom) {
		t.Fatalf("unexpected result %v %v", got, last)
	}
}

func TestDelayHonorsCancel(t *testing.T) {
	p := &Provider{Fragments: []string{"a"}, Delay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	stream, _ := p.Stream(ctx, llmPrompt())
	for _, err := range stream {
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", err)
		}
	}
}

func TestSplit(t *testing.T) {
	if got := Split("abcdefg", 3); strings.Join(got, "|") != "abc|def|g" {
		t.Fatalf("unexpected split %v", got)
	}
	if got := Split("ab", 0); len(got) != 1 {
		t.Fatalf("expected single piece, got %v", got)
	}
}

func TestRecordKeepsFirstPrompts(t *testing.T) {
	p := New("{}").Record(1)
	for _, user := range []string{"first", "second"} {
		pr := llmPrompt()
		pr.User = user
		if _, err := p.Stream(context.Background(), pr); err != nil {
			t.Fatalf("Stream: %v", err)
		}
	}

	got := <-p.Prompts()
	if got.User != "first" {
		t.Fatalf("expected the first prompt to be kept, got %q", got.User)
	}
	select {
	case extra := <-p.Prompts():
		t.Fatalf("expected later prompts to be dropped, got %q", extra.User)
	default:
	}
	if p.Calls() != 2 {
		t.Fatalf("expected both calls counted, got %d", p.Calls())
	}
}
