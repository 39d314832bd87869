package generation

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/llm/stub"
	"resume-builder/resume/model"
)

const (
	generatingPayload = `{"error":"Error generating resume"}`
	parsingPayload    = `{"error":"Error parsing resume data"}`
)

var closedRange = regexp.MustCompile(`^[A-Z][a-z]{2} \d{4} - [A-Z][a-z]{2} \d{4}$`)

func TestRelayStreamsCompleteResume(t *testing.T) {
	provider := stub.Sample(37)
	svc := newTestService(t, provider, withSchema(t, Options{ChunkBytes: 64}))

	res, sink := relay(t, svc, Request{JobDescription: "Senior backend engineer, Go, 5 years"})

	if res.Outcome != OutcomeSuccess || res.Err != nil {
		t.Fatalf("expected success, got %s (%v)", res.Outcome, res.Err)
	}
	if sink.opens != 1 || sink.closes != 1 {
		t.Fatalf("expected one open and one close, got %d/%d", sink.opens, sink.closes)
	}
	for i, w := range sink.writes {
		if len(w) > 64 {
			t.Fatalf("write %d exceeds chunk size: %d", i, len(w))
		}
	}
	if res.Fragments != len(provider.Fragments) {
		t.Fatalf("expected %d fragments, got %d", len(provider.Fragments), res.Fragments)
	}
	if res.Bytes != len(sink.body()) {
		t.Fatalf("byte count mismatch: %d vs %d", res.Bytes, len(sink.body()))
	}

	var got, want map[string]any
	if err := json.Unmarshal(sink.body(), &got); err != nil {
		t.Fatalf("final body is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(stub.SampleResume()), &want); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("payload does not round-trip the provider document")
	}

	doc, err := model.Parse(string(sink.body()))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	dated := false
	for _, exp := range doc.Experience {
		if closedRange.MatchString(exp.DateRange) {
			dated = true
		}
	}
	if !dated {
		t.Fatalf("expected an experience entry dated MMM YYYY - MMM YYYY")
	}
}

func TestRelayProviderErrorAfterPartialText(t *testing.T) {
	provider := stub.New(`{"personalInfo":{`)
	provider.Err = errors.New("read tcp: connection reset by peer")
	svc := newTestService(t, provider, Options{})

	res, sink := relay(t, svc, Request{JobDescription: "Go developer"})

	if string(sink.body()) != generatingPayload {
		t.Fatalf("unexpected payload %q", sink.body())
	}
	if res.Outcome != OutcomeProviderError || res.Fragments != 1 {
		t.Fatalf("unexpected result %s fragments=%d", res.Outcome, res.Fragments)
	}
	if !errors.Is(res.Err, provider.Err) {
		t.Fatalf("expected provider error in result, got %v", res.Err)
	}
	if sink.closes != 1 {
		t.Fatalf("expected single close, got %d", sink.closes)
	}
}

func TestRelayMalformedJSON(t *testing.T) {
	cases := map[string][]string{
		"scenario":  {`{"personalInfo": }`},
		"trailing":  {`{"summary":"a"}`, ` {"summary":"b"}`},
		"empty":     {},
		"prose":     {"Here is your resume: ", `{"summary":"a"}`},
		"truncated": {`{"summary":"a"`},
	}
	for name, fragments := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, stub.New(fragments...), Options{})
			res, sink := relay(t, svc, Request{JobDescription: "Go developer"})
			if string(sink.body()) != parsingPayload {
				t.Fatalf("unexpected payload %q", sink.body())
			}
			if res.Outcome != OutcomeParseError {
				t.Fatalf("expected parse_error, got %s", res.Outcome)
			}
			if sink.closes != 1 {
				t.Fatalf("expected single close, got %d", sink.closes)
			}
		})
	}
}

func TestRelaySchemaViolation(t *testing.T) {
	fragments := []string{`{"summary":"only a summary"}`}

	svc := newTestService(t, stub.New(fragments...), withSchema(t, Options{}))
	res, sink := relay(t, svc, Request{JobDescription: "Go developer"})
	if res.Outcome != OutcomeSchemaError || string(sink.body()) != parsingPayload {
		t.Fatalf("expected schema_error with parse payload, got %s %q", res.Outcome, sink.body())
	}

	lenient := newTestService(t, stub.New(fragments...), Options{})
	res, sink = relay(t, lenient, Request{JobDescription: "Go developer"})
	if res.Outcome != OutcomeSuccess || string(sink.body()) != fragments[0] {
		t.Fatalf("expected passthrough without schema, got %s %q", res.Outcome, sink.body())
	}
}

func TestRelayTimeout(t *testing.T) {
	provider := stub.New(`{"summary":`, `"late"}`)
	provider.Delay = 200 * time.Millisecond
	svc := newTestService(t, provider, Options{Timeout: 20 * time.Millisecond})

	res, sink := relay(t, svc, Request{JobDescription: "Go developer"})
	if res.Outcome != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s (%v)", res.Outcome, res.Err)
	}
	if string(sink.body()) != generatingPayload || sink.closes != 1 {
		t.Fatalf("unexpected payload %q closes=%d", sink.body(), sink.closes)
	}
}

func TestRelayClientCancel(t *testing.T) {
	provider := stub.New(`{"summary":`, `"late"}`)
	provider.Delay = 200 * time.Millisecond
	svc := newTestService(t, provider, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	gen, err := svc.Open(ctx, Request{JobDescription: "Go developer"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cancel()
	sink := &recordingSink{}
	res := gen.Relay(sink)
	if res.Outcome != OutcomeProviderError || !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected provider_error from cancel, got %s (%v)", res.Outcome, res.Err)
	}
	if sink.closes != 1 {
		t.Fatalf("expected single close, got %d", sink.closes)
	}
}

func TestRelayIsDeterministic(t *testing.T) {
	svc := newTestService(t, stub.Sample(50), withSchema(t, Options{}))
	req := Request{JobDescription: "Platform engineer"}

	_, first := relay(t, svc, req)
	_, second := relay(t, svc, req)
	if string(first.body()) != string(second.body()) {
		t.Fatalf("expected identical payloads")
	}
}

func TestRelayClosesSinkOnWriteFailure(t *testing.T) {
	svc := newTestService(t, stub.Sample(100), Options{})
	gen, err := svc.Open(context.Background(), Request{JobDescription: "Go developer"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	writeErr := errors.New("broken pipe")
	sink := &recordingSink{writeErr: writeErr}
	res := gen.Relay(sink)
	if !errors.Is(res.Err, writeErr) || res.Bytes != 0 {
		t.Fatalf("expected write error, got %v bytes=%d", res.Err, res.Bytes)
	}
	if sink.closes != 1 {
		t.Fatalf("expected single close, got %d", sink.closes)
	}
}

func TestRelaySkipsStreamWhenSinkFails(t *testing.T) {
	provider := stub.Sample(100)
	svc := newTestService(t, provider, Options{})
	gen, err := svc.Open(context.Background(), Request{JobDescription: "Go developer"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sink := &recordingSink{openErr: errors.New("client gone")}
	res := gen.Relay(sink)
	if res.Outcome != OutcomeProviderError || res.Fragments != 0 || sink.closes != 1 {
		t.Fatalf("unexpected result %s fragments=%d closes=%d", res.Outcome, res.Fragments, sink.closes)
	}
}

func TestRelayTwice(t *testing.T) {
	svc := newTestService(t, stub.Sample(100), Options{})
	gen, err := svc.Open(context.Background(), Request{JobDescription: "Go developer"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	gen.Relay(&recordingSink{})
	second := &recordingSink{}
	res := gen.Relay(second)
	if res.Err == nil || second.closes != 1 || len(second.writes) != 0 {
		t.Fatalf("expected rejected second relay, got err=%v closes=%d", res.Err, second.closes)
	}
}

func TestOpenRejectsBlankJobDescription(t *testing.T) {
	provider := stub.Sample(10)
	svc := newTestService(t, provider, Options{})
	for _, jd := range []string{"", "   \n\t"} {
		if _, err := svc.Open(context.Background(), Request{JobDescription: jd}); !errors.Is(err, ErrJobDescriptionRequired) {
			t.Fatalf("expected ErrJobDescriptionRequired for %q, got %v", jd, err)
		}
	}
	if provider.Calls() != 0 {
		t.Fatalf("expected no provider calls, got %d", provider.Calls())
	}
}

func TestOpenSurfacesSetupError(t *testing.T) {
	provider := stub.New()
	provider.SetupErr = errors.New("missing api key")
	svc := newTestService(t, provider, Options{})
	if _, err := svc.Open(context.Background(), Request{JobDescription: "Go"}); !errors.Is(err, provider.SetupErr) {
		t.Fatalf("expected setup error, got %v", err)
	}
}

func TestOpenBuildsPrompt(t *testing.T) {
	provider := stub.Sample(100).Record(2)
	svc := newTestService(t, provider, Options{Model: "claude-test"})

	relay(t, svc, Request{JobDescription: "  Go developer  "})
	relay(t, svc, Request{JobDescription: "Go developer", ResumeTemplate: "Jane Doe\nEngineer"})

	first := <-provider.Prompts()
	if first.Model != "claude-test" || first.MaxTokens != 4000 {
		t.Fatalf("unexpected model settings %q %d", first.Model, first.MaxTokens)
	}
	if !strings.HasPrefix(first.User, "Job Description: Go developer\n") {
		t.Fatalf("expected trimmed job description, got %q", first.User)
	}
	if !strings.Contains(first.User, "Create a new resume from scratch.") {
		t.Fatalf("expected scratch instruction, got %q", first.User)
	}
	if !strings.Contains(first.System, `"cloudDevOps": []`) || !strings.Contains(first.System, `"MMM YYYY - MMM YYYY"`) {
		t.Fatalf("system prompt missing template or rules")
	}

	second := <-provider.Prompts()
	if !strings.Contains(second.User, "Current Resume: Jane Doe\nEngineer") {
		t.Fatalf("expected verbatim template, got %q", second.User)
	}
}

func TestCanonicalize(t *testing.T) {
	got, err := Canonicalize("\n  {\"b\": 1.50, \"a\": \"<C++ & Go>\"}  \n")
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if string(got) != `{"a":"<C++ & Go>","b":1.50}` {
		t.Fatalf("unexpected canonical form %s", got)
	}
	if _, err := Canonicalize(`{} []`); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected trailing data error, got %v", err)
	}
}
