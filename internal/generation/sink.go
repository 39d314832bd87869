package generation

import (
	"errors"
	"net/http"
)

// Sink receives the streamed payload. Close is called exactly once by Relay.
type Sink interface {
	// Open commits the success status and headers.
	Open() error
	Write(p []byte) error
	Close() error
}

// ErrSinkClosed is returned by writes after Close.
var ErrSinkClosed = errors.New("sink closed")

// HTTPSink streams to an http.ResponseWriter, flushing after every write.
type HTTPSink struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed bool
}

// NewHTTPSink wraps w.
func NewHTTPSink(w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{w: w, rc: http.NewResponseController(w)}
}

func (s *HTTPSink) Open() error {
	h := s.w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	return s.flush()
}

func (s *HTTPSink) Write(p []byte) error {
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.w.Write(p); err != nil {
		return err
	}
	return s.flush()
}

// Close flushes any buffered bytes. The connection itself ends when the handler returns.
func (s *HTTPSink) Close() error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	return s.flush()
}

func (s *HTTPSink) flush() error {
	err := s.rc.Flush()
	if errors.Is(err, http.ErrNotSupported) {
		return nil
	}
	return err
}
