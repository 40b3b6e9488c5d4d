// Package sse writes Server-Sent Events streams.
package sse

import (
	"bytes"
	"strconv"
	"strings"
)

// Event is one Server-Sent Event.
type Event struct {
	ID      string
	Type    string
	Data    []byte
	RetryMS int
}

// Encode renders the event in the text/event-stream format. Multi-line data
// is split over several data fields; empty data is sent as "{}".
func (e Event) Encode() []byte {
	var buf bytes.Buffer
	if e.ID != "" {
		buf.WriteString("id: ")
		buf.WriteString(e.ID)
		buf.WriteByte('\n')
	}
	if e.Type != "" {
		buf.WriteString("event: ")
		buf.WriteString(e.Type)
		buf.WriteByte('\n')
	}
	if e.RetryMS > 0 {
		buf.WriteString("retry: ")
		buf.WriteString(strconv.Itoa(e.RetryMS))
		buf.WriteByte('\n')
	}
	data := e.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	for _, line := range strings.Split(string(data), "\n") {
		buf.WriteString("data: ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
