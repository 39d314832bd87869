package generation

import (
	"strings"
	"time"
)

// Request is the body of POST /api/generate-resume.
type Request struct {
	JobDescription string `json:"jobDescription"`
	ResumeTemplate string `json:"resumeTemplate"`
}

// Normalize trims the job description and rejects an empty one.
// The template is kept verbatim.
func (r Request) Normalize() (Request, error) {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	if r.JobDescription == "" {
		return Request{}, ErrJobDescriptionRequired
	}
	return r, nil
}

// HasTemplate reports whether an uploaded template accompanies the request.
func (r Request) HasTemplate() bool {
	return strings.TrimSpace(r.ResumeTemplate) != ""
}

// Result summarizes one relay.
type Result struct {
	ID        string
	RequestID string
	Provider  string
	Model     string
	Outcome   Outcome
	// Payload is the single JSON document written to the sink.
	Payload []byte
	// Fragments counts provider fragments received before the stream ended.
	Fragments int
	// Bytes counts payload bytes the sink accepted.
	Bytes       int
	HasTemplate bool
	JobDescLen  int
	StartedAt   time.Time
	Duration    time.Duration
	Err         error
}
