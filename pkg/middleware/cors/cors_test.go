package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/api/v1/datasets", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func request(r http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/datasets", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowOrigins = []string{"https://ops.freightdesk.example", "https://*.staging.example"}

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{name: "no origin", method: http.MethodGet, wantStatus: 200},
		{name: "allowed origin", method: http.MethodGet, origin: "https://ops.freightdesk.example", wantStatus: 200, wantOrigin: "https://ops.freightdesk.example"},
		{name: "wildcard origin", method: http.MethodGet, origin: "https://eu.staging.example", wantStatus: 200, wantOrigin: "https://eu.staging.example"},
		{name: "foreign origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: 200},
		{name: "allowed preflight", method: http.MethodOptions, origin: "https://ops.freightdesk.example", preflight: true, wantStatus: 204, wantOrigin: "https://ops.freightdesk.example"},
		{name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(newEngine(cfg), tt.method, tt.origin, tt.preflight)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowOrigins = []string{"https://ops.freightdesk.example"}
	rec := request(newEngine(cfg), http.MethodOptions, "https://ops.freightdesk.example", true)

	h := rec.Header()
	if h.Get("Access-Control-Allow-Methods") != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Allow-Methods = %q", h.Get("Access-Control-Allow-Methods"))
	}
	if h.Get("Access-Control-Max-Age") != "43200" {
		t.Errorf("Max-Age = %q", h.Get("Access-Control-Max-Age"))
	}
	if h.Get("Vary") != "Origin, Access-Control-Request-Method, Access-Control-Request-Headers" {
		t.Errorf("Vary = %q", h.Get("Vary"))
	}
}

func TestCORS_AllowAllDropsCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowOrigins = []string{"*"}
	cfg.AllowCredentials = true
	rec := request(newEngine(cfg), http.MethodGet, "https://anywhere.example", false)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	rec := request(newEngine(DefaultConfig()), http.MethodOptions, "https://ops.freightdesk.example", true)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers set while disabled")
	}
}
