package sse

import (
	"errors"
	"net/http"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// Stream writes events to one client.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// Open sends the event-stream headers and a 200 status.
func Open(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache, no-transform")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &Stream{w: w, flusher: flusher}, nil
}

// Send writes and flushes one event.
func (s *Stream) Send(e Event) error {
	if _, err := s.w.Write(e.Encode()); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes and flushes a comment line, used for heartbeats.
func (s *Stream) Comment(text string) error {
	if _, err := s.w.Write([]byte(": " + text + "\n\n")); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
