package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadSample(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "model", "testdata", "sample_resume.json"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return string(raw)
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRenderModernSectionOrder(t *testing.T) {
	out, err := newRenderer(t).RenderString(loadSample(t), StyleModern)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	order := []string{
		"Jordan Rivera",
		"Senior Backend Engineer",
		"jordan.rivera@example.com",
		">jrivera<",
		">jordan-rivera<",
		"<h2>Summary</h2>",
		"<h2>SKILLS</h2>",
		"<strong>Languages:</strong> Go, SQL, Python",
		"<strong>Cloud/DevOps:</strong> AWS, Kubernetes, Terraform",
		"<strong>Methodologies:</strong> Agile, TDD",
		"<h2>EDUCATION</h2>",
		"Relevant Coursework:</strong> Distributed Systems, Databases",
		"<h2>PROFESSIONAL EXPERIENCE</h2>",
		"<li>Cut p99 checkout latency",
		"<li>Led migration of 40 cron jobs",
		"<h2>PROJECTS</h2>",
		"<li>Postgres health exporter",
		"Page 1",
	}
	pos := 0
	for _, want := range order {
		idx := strings.Index(out[pos:], want)
		if idx < 0 {
			t.Fatalf("expected %q after offset %d", want, pos)
		}
		pos += idx + len(want)
	}
	if !strings.Contains(out, "width: 210mm; height: 297mm; padding: 15mm 20mm;") {
		t.Fatalf("expected A4 page styles")
	}
}

func TestRenderParseFailurePlaceholder(t *testing.T) {
	r := newRenderer(t)
	for _, style := range []Style{StyleModern, StyleClassic} {
		out, err := r.RenderString(`{"personalInfo":{"name":"Jor`, style)
		if err != nil {
			t.Fatalf("Render(%s): %v", style, err)
		}
		if !strings.Contains(out, "Error parsing resume content") {
			t.Fatalf("expected placeholder for %s", style)
		}
		if strings.Contains(out, "Jor") {
			t.Fatalf("partial content must not leak into %s placeholder", style)
		}
	}
}

func TestRenderClassicShowsBufferVerbatim(t *testing.T) {
	content := `{"summary":"<b>bold</b> & more"}`
	out, err := newRenderer(t).RenderString(content, StyleClassic)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<pre class="classic">{&#34;summary&#34;:&#34;&lt;b&gt;bold&lt;/b&gt; &amp; more&#34;}</pre>`) {
		t.Fatalf("expected escaped verbatim buffer, got:\n%s", out)
	}
	if strings.Contains(out, "<h2>SKILLS</h2>") {
		t.Fatalf("classic must not render modern sections")
	}
}

func TestRenderEscapesModelText(t *testing.T) {
	content := `{"personalInfo":{"name":"<script>alert(1)</script>"}}`
	out, err := newRenderer(t).RenderString(content, StyleModern)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatalf("model text must be escaped")
	}
}

func TestParseStyle(t *testing.T) {
	if s, err := ParseStyle(""); err != nil || s != StyleModern {
		t.Fatalf("expected modern default, got %q %v", s, err)
	}
	if s, err := ParseStyle(" Classic "); err != nil || s != StyleClassic {
		t.Fatalf("expected classic, got %q %v", s, err)
	}
	if _, err := ParseStyle("fancy"); !errors.Is(err, ErrUnknownStyle) {
		t.Fatalf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestRenderStreamedErrorPayload(t *testing.T) {
	r := newRenderer(t)
	for _, msg := range []string{"Error generating resume", "Error parsing resume data"} {
		for _, style := range []Style{StyleModern, StyleClassic} {
			out, err := r.RenderString(`{"error":"`+msg+`"}`, style)
			if err != nil {
				t.Fatalf("Render(%s): %v", style, err)
			}
			if !strings.Contains(out, `<div class="page error"><p>`+msg+`</p></div>`) {
				t.Fatalf("expected %q shown for %s, got %s", msg, style, out)
			}
			if strings.Contains(out, `class="modern"`) || strings.Contains(out, `class="classic"`) {
				t.Fatalf("error payload must not render a resume layout for %s", style)
			}
		}
	}
}

func TestRenderNonObjectShowsPlaceholder(t *testing.T) {
	r := newRenderer(t)
	for _, content := range []string{"null", " null ", "[]", `"text"`, "42", "true"} {
		for _, style := range []Style{StyleModern, StyleClassic} {
			out, err := r.RenderString(content, style)
			if err != nil {
				t.Fatalf("Render(%q, %s): %v", content, style, err)
			}
			if !strings.Contains(out, "Error parsing resume content") {
				t.Fatalf("expected placeholder for %q in %s", content, style)
			}
			if strings.Contains(out, `class="modern"`) {
				t.Fatalf("non-object %q must not render the modern layout", content)
			}
		}
	}
}
