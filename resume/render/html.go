package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"resume-builder/resume/model"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Style selects the page layout.
type Style string

const (
	StyleClassic Style = "classic"
	StyleModern  Style = "modern"
)

// ErrUnknownStyle is returned by ParseStyle for anything but classic or modern.
var ErrUnknownStyle = errors.New("unknown resume style")

// ParseStyle maps user input to a Style. Empty input selects modern.
func ParseStyle(raw string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StyleModern:
		return StyleModern, nil
	case StyleClassic:
		return StyleClassic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, raw)
	}
}

// Renderer turns a generated buffer into a single A4 HTML page.
type Renderer struct {
	tpl *template.Template
}

type pageData struct {
	Style  Style
	Failed bool
	// ErrorMessage is set when the buffer is a streamed {"error": ...} payload.
	ErrorMessage string
	Doc          *model.Document
	Raw          string
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("resume").Funcs(template.FuncMap{
		"join":   func(tags []string) string { return strings.Join(tags, ", ") },
		"handle": model.ProfileHandle,
		"href":   model.Href,
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse resume templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render writes the page for content. A buffer that does not parse as a resume object yields the
// fixed "Error parsing resume content" page rather than an error, so callers can render
// in-flight buffers on every update. A streamed error payload shows its message instead.
func (r *Renderer) Render(w io.Writer, content string, style Style) error {
	data := pageData{Style: style, Raw: content}
	if msg, ok := model.StreamedError(content); ok {
		data.Failed = true
		data.ErrorMessage = msg
	} else if doc, err := model.Parse(content); err != nil {
		data.Failed = true
	} else {
		data.Doc = &doc
	}
	if err := r.tpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render %s page: %w", style, err)
	}
	return nil
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(content string, style Style) (string, error) {
	var b strings.Builder
	if err := r.Render(&b, content, style); err != nil {
		return "", err
	}
	return b.String(), nil
}
