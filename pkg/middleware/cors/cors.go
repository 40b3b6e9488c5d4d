// Package cors answers cross-origin requests from the back-office web
// client.
package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Config configures CORS handling. An empty AllowOrigins list disables it.
type Config struct {
	// AllowOrigins lists exact origins, "*" or patterns with a single "*"
	// such as "https://*.freightdesk.example".
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultConfig returns the defaults for the listing API.
func DefaultConfig() Config {
	return Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "X-Request-ID", "Last-Event-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
}

// CORS sets the Access-Control headers for allowed origins and answers
// preflight requests itself. Preflights from other origins get 403.
func CORS(cfg Config) gin.HandlerFunc {
	defaults := DefaultConfig()
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = defaults.AllowMethods
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = defaults.MaxAge
	}
	allowAll := false
	for i, origin := range cfg.AllowOrigins {
		cfg.AllowOrigins[i] = strings.TrimSpace(origin)
		if cfg.AllowOrigins[i] == "*" {
			allowAll = true
		}
	}
	// A wildcard origin cannot be combined with credentials.
	if allowAll {
		cfg.AllowCredentials = false
	}
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	exposed := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || len(cfg.AllowOrigins) == 0 {
			c.Next()
			return
		}
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		h := c.Writer.Header()
		appendVary(h, "Origin")
		if !allowed(cfg.AllowOrigins, origin) {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		switch {
		case cfg.AllowCredentials:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		default:
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if exposed != "" {
			h.Set("Access-Control-Expose-Headers", exposed)
		}

		if !preflight {
			c.Next()
			return
		}
		appendVary(h, "Access-Control-Request-Method")
		appendVary(h, "Access-Control-Request-Headers")
		h.Set("Access-Control-Allow-Methods", methods)
		if headers != "" {
			h.Set("Access-Control-Allow-Headers", headers)
		} else if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
			h.Set("Access-Control-Allow-Headers", requested)
		}
		h.Set("Access-Control-Max-Age", maxAge)
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func allowed(origins []string, origin string) bool {
	for _, candidate := range origins {
		if candidate == "*" || strings.EqualFold(candidate, origin) || wildcardMatch(candidate, origin) {
			return true
		}
	}
	return false
}

func wildcardMatch(pattern, value string) bool {
	if strings.Count(pattern, "*") != 1 {
		return false
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	return len(value) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(value, prefix) && strings.HasSuffix(value, suffix)
}

func appendVary(h http.Header, value string) {
	current := h.Get("Vary")
	if current == "" {
		h.Set("Vary", value)
		return
	}
	for _, part := range strings.Split(current, ",") {
		if strings.EqualFold(strings.TrimSpace(part), value) {
			return
		}
	}
	h.Set("Vary", current+", "+value)
}
