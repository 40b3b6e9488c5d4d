package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/middleware/requestid"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, buf *bytes.Buffer, cfg Config) *gin.Engine {
	t.Helper()
	log, err := logger.NewZapLogger(logger.Config{Level: logger.DebugLevel, Format: logger.JSONFormat, Output: buf})
	if err != nil {
		t.Fatalf("NewZapLogger() error = %v", err)
	}
	r := gin.New()
	r.Use(requestid.RequestID(), WithConfig(log, cfg))
	r.GET("/api/v1/datasets/:name", func(c *gin.Context) {
		switch c.Param("name") {
		case "missing":
			c.Status(http.StatusNotFound)
		case "broken":
			c.Status(http.StatusInternalServerError)
		default:
			c.String(http.StatusOK, "ok")
		}
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}

func TestLogging_LevelsAndFields(t *testing.T) {
	tests := []struct {
		path      string
		wantLevel string
		wantMsg   string
		status    float64
	}{
		{path: "/api/v1/datasets/invoices?page=2", wantLevel: "info", wantMsg: "request completed", status: 200},
		{path: "/api/v1/datasets/missing", wantLevel: "warn", wantMsg: "request rejected", status: 404},
		{path: "/api/v1/datasets/broken", wantLevel: "error", wantMsg: "request failed", status: 500},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var buf bytes.Buffer
			r := newEngine(t, &buf, DefaultConfig())
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(requestid.RequestIDHeader, "req-9")
			r.ServeHTTP(httptest.NewRecorder(), req)

			got := entries(t, &buf)
			if len(got) != 1 {
				t.Fatalf("got %d entries, want 1", len(got))
			}
			e := got[0]
			if e["level"] != tt.wantLevel || e["message"] != tt.wantMsg {
				t.Errorf("level/message = %v/%v", e["level"], e["message"])
			}
			if e[FieldStatus] != tt.status || e[FieldRoute] != "/api/v1/datasets/:name" || e["request_id"] != "req-9" {
				t.Errorf("unexpected fields %v", e)
			}
			if _, ok := e[FieldDurationMS]; !ok {
				t.Error("missing duration")
			}
		})
	}
}

func TestLogging_ExcludedPaths(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(t, &buf, DefaultConfig())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if buf.Len() != 0 {
		t.Errorf("excluded path was logged: %s", buf.String())
	}
}

func TestLogging_LogStart(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(t, &buf, Config{LogStart: true})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	got := entries(t, &buf)
	if len(got) != 2 || got[0]["message"] != "request started" {
		t.Errorf("entries = %v", got)
	}
}
