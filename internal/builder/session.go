package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"resume-builder/internal/generation"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// PreviewPlaceholder is shown before anything has been generated.
const PreviewPlaceholder = "Preview will appear here"

var (
	// ErrBusy is returned by Generate while a generation is in flight.
	ErrBusy = errors.New("generation already in progress")
	// ErrJobDescriptionRequired is returned by Generate when no job description is set.
	ErrJobDescriptionRequired = errors.New("job description is required")
)

// PayloadError is the error object the service streams instead of a resume.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string { return "generate resume: " + e.Message }

// State is a snapshot of a session.
type State struct {
	Generated string
	Loading   bool
	Err       error
}

// Session holds the inputs and the latest generated buffer for one user.
type Session struct {
	client *Client

	mu             sync.Mutex
	jobDescription string
	templateName   string
	templateText   string
	style          render.Style
	generated      string
	loading        bool
	lastErr        error
	onChange       func(State)
}

// NewSession starts an empty session using the modern layout.
func NewSession(client *Client) *Session {
	return &Session{client: client, style: render.StyleModern}
}

func (s *Session) SetJobDescription(jd string) {
	s.mu.Lock()
	s.jobDescription = jd
	s.mu.Unlock()
}

// SetTemplate attaches uploaded template text; empty text clears it.
func (s *Session) SetTemplate(name, text string) {
	s.mu.Lock()
	s.templateName, s.templateText = name, text
	s.mu.Unlock()
}

// TemplateName is the name of the attached template, if any.
func (s *Session) TemplateName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateName
}

func (s *Session) SetStyle(style render.Style) {
	s.mu.Lock()
	s.style = style
	s.mu.Unlock()
}

// OnChange registers fn to receive every state change. fn runs on the generating goroutine.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{Generated: s.generated, Loading: s.loading, Err: s.lastErr}
}

// Generate streams a resume for the current inputs, publishing the running buffer on every chunk.
// The loading flag is cleared however the call ends.
func (s *Session) Generate(ctx context.Context) (err error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(s.jobDescription) == "" {
		s.mu.Unlock()
		return ErrJobDescriptionRequired
	}
	req := generation.Request{JobDescription: s.jobDescription, ResumeTemplate: s.templateText}
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
	s.publish()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.lastErr = err
		s.mu.Unlock()
		s.publish()
		if err != nil {
			telemetry.Warn("builder.generate_failed", map[string]any{"error": err})
		}
	}()

	final := ""
	for buf, streamErr := range s.client.Stream(ctx, req) {
		if streamErr != nil {
			return streamErr
		}
		final = buf
		s.mu.Lock()
		s.generated = buf
		s.mu.Unlock()
		s.publish()
	}
	if msg, ok := model.StreamedError(final); ok {
		return &PayloadError{Message: msg}
	}
	return nil
}

// Preview renders the current buffer, or the placeholder when nothing was generated yet.
func (s *Session) Preview(w io.Writer, r *render.Renderer) error {
	s.mu.Lock()
	generated, style := s.generated, s.style
	s.mu.Unlock()

	if generated == "" {
		_, err := io.WriteString(w, PreviewPlaceholder)
		return err
	}
	if err := r.Render(w, generated, style); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

func (s *Session) publish() {
	s.mu.Lock()
	fn := s.onChange
	state := s.stateLocked()
	s.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}
