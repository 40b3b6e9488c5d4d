// Package securityheaders sets browser hardening headers on API responses.
package securityheaders

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Config defines the headers to send. Empty values are omitted.
type Config struct {
	FrameOptions          string
	ContentTypeNosniff    bool
	ContentSecurityPolicy string
	ReferrerPolicy        string
	// STSSeconds enables Strict-Transport-Security on secure requests.
	STSSeconds           int64
	STSIncludeSubdomains bool
	// ProxyHeaders mark a request as secure when a TLS-terminating proxy
	// forwarded it, e.g. X-Forwarded-Proto: https.
	ProxyHeaders map[string]string
}

// DefaultConfig returns strict defaults for a JSON API.
func DefaultConfig() Config {
	return Config{
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		ProxyHeaders:          map[string]string{"X-Forwarded-Proto": "https"},
	}
}

// SecurityHeaders applies cfg before the handler runs.
func SecurityHeaders(cfg Config) gin.HandlerFunc {
	sts := ""
	if cfg.STSSeconds > 0 {
		sts = fmt.Sprintf("max-age=%d", cfg.STSSeconds)
		if cfg.STSIncludeSubdomains {
			sts += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if cfg.FrameOptions != "" {
			h.Set("X-Frame-Options", cfg.FrameOptions)
		}
		if cfg.ContentTypeNosniff {
			h.Set("X-Content-Type-Options", "nosniff")
		}
		if cfg.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
		}
		if cfg.ReferrerPolicy != "" {
			h.Set("Referrer-Policy", cfg.ReferrerPolicy)
		}
		if sts != "" && isSecure(c.Request, cfg.ProxyHeaders) {
			h.Set("Strict-Transport-Security", sts)
		}
		c.Next()
	}
}

func isSecure(req *http.Request, proxyHeaders map[string]string) bool {
	if req.TLS != nil || strings.EqualFold(req.URL.Scheme, "https") {
		return true
	}
	for name, want := range proxyHeaders {
		if strings.EqualFold(strings.TrimSpace(req.Header.Get(name)), want) {
			return true
		}
	}
	return false
}
