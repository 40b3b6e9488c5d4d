package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json format with debug level", config: Config{Level: DebugLevel, Format: JSONFormat}},
		{name: "text format with info level", config: Config{Level: InfoLevel, Format: TextFormat}},
		{name: "empty format defaults to json", config: Config{Level: WarnLevel}},
		{name: "default to info level for invalid level", config: Config{Level: "invalid", Format: JSONFormat}},
		{name: "invalid format", config: Config{Level: InfoLevel, Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Output = &bytes.Buffer{}
			logger, err := NewZapLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewZapLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("NewZapLogger() returned nil logger")
			}
		})
	}
}

func TestZapLogger_LogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logLevel LogLevel
		logFunc  func(Logger)
		expected bool
	}{
		{name: "debug level logs debug", logLevel: DebugLevel, logFunc: func(l Logger) { l.Debug("m") }, expected: true},
		{name: "info level does not log debug", logLevel: InfoLevel, logFunc: func(l Logger) { l.Debug("m") }, expected: false},
		{name: "info level logs info", logLevel: InfoLevel, logFunc: func(l Logger) { l.Info("m") }, expected: true},
		{name: "warn level does not log info", logLevel: WarnLevel, logFunc: func(l Logger) { l.Info("m") }, expected: false},
		{name: "warn level logs warn", logLevel: WarnLevel, logFunc: func(l Logger) { l.Warn("m") }, expected: true},
		{name: "error level does not log warn", logLevel: ErrorLevel, logFunc: func(l Logger) { l.Warn("m") }, expected: false},
		{name: "error level logs error", logLevel: ErrorLevel, logFunc: func(l Logger) { l.Error("m") }, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewZapLogger(Config{Level: tt.logLevel, Format: JSONFormat, Output: &buf})
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			tt.logFunc(logger)
			if got := buf.Len() > 0; got != tt.expected {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.expected, buf.String())
			}
		})
	}
}

func TestZapLogger_StructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.With("dataset", "invoices").Info("listing served", "total_items", 24, "cached", true)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e["message"] != "listing served" || e["level"] != "info" {
		t.Errorf("unexpected entry %v", e)
	}
	if e["dataset"] != "invoices" || e["total_items"] != float64(24) || e["cached"] != true {
		t.Errorf("missing structured fields in %v", e)
	}
	if _, ok := e["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestZapLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(Config{Level: InfoLevel, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-42")
	logger.WithContext(ctx).Info("with id")
	logger.WithContext(context.Background()).Info("without id")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entries[0]["request_id"])
	}
	if _, ok := entries[1]["request_id"]; ok {
		t.Errorf("unexpected request_id in %v", entries[1])
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("discarded", "k", "v")
	l.With("a", 1).WithContext(context.Background()).Error("discarded")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "INFO", want: InfoLevel},
		{in: "warning", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    LogFormat
		wantErr bool
	}{
		{in: "json", want: JSONFormat},
		{in: "console", want: TextFormat},
		{in: "text", want: TextFormat},
		{in: "yaml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLogFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLogFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
