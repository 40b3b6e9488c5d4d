package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	var fromCtx, fromGin string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		fromCtx = logger.RequestIDFromContext(c.Request.Context())
		fromGin = Get(c)
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, fromCtx, fromGin
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	rec, fromCtx, fromGin := serve(t, "")

	if _, err := uuid.Parse(fromCtx); err != nil {
		t.Fatalf("generated id %q is not a UUID: %v", fromCtx, err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != fromCtx {
		t.Errorf("response header = %q, want %q", got, fromCtx)
	}
	if fromGin != fromCtx {
		t.Errorf("gin context id = %q, want %q", fromGin, fromCtx)
	}
}

func TestRequestID_PreservesExistingHeader(t *testing.T) {
	rec, fromCtx, _ := serve(t, "existing-request-id-123")

	if fromCtx != "existing-request-id-123" {
		t.Errorf("context id = %q, want existing-request-id-123", fromCtx)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "existing-request-id-123" {
		t.Errorf("response header = %q", got)
	}
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	_, fromCtx, _ := serve(t, strings.Repeat("x", maxLength+1))

	if _, err := uuid.Parse(fromCtx); err != nil {
		t.Errorf("oversized id was kept: %q", fromCtx)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		_, id, _ := serve(t, "")
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}
