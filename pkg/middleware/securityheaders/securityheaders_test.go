package securityheaders

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(cfg Config, req *http.Request) http.Header {
	r := gin.New()
	r.Use(SecurityHeaders(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Header()
}

func TestSecurityHeaders_Defaults(t *testing.T) {
	h := serve(DefaultConfig(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Frame-Options":         "DENY",
		"X-Content-Type-Options":  "nosniff",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":         "no-referrer",
	}
	for name, value := range want {
		if got := h.Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Error("HSTS sent on a plain HTTP request")
	}
}

func TestSecurityHeaders_HSTSBehindProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	h := serve(DefaultConfig(), req)

	if got := h.Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("Strict-Transport-Security = %q", got)
	}
}

func TestSecurityHeaders_EmptyValuesOmitted(t *testing.T) {
	h := serve(Config{}, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, name := range []string{"X-Frame-Options", "X-Content-Type-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if h.Get(name) != "" {
			t.Errorf("%s set with empty config", name)
		}
	}
}
