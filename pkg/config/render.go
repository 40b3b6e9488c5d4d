package config

import (
	"net/url"
	"strings"
	"time"
)

const redacted = "xxxxx"

// Redacted returns a copy of c with credentials in connection URLs masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Store.URL = RedactURL(c.Store.URL)
	out.Cache.URL = RedactURL(c.Cache.URL)
	return &out
}

// RedactURL masks the password of a URL or of a MySQL style DSN
// ("user:pass@tcp(host)/db").
func RedactURL(raw string) string {
	if raw == "" {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	at := strings.LastIndex(raw, "@")
	if at < 0 {
		return raw
	}
	creds := raw[:at]
	start := strings.Index(creds, "://")
	if start >= 0 {
		start += 3
	} else {
		start = 0
	}
	colon := strings.Index(creds[start:], ":")
	if colon < 0 {
		return raw
	}
	return raw[:start+colon+1] + redacted + raw[at:]
}

// Map renders c as nested maps keyed like the configuration file, with
// durations in Go duration syntax. Used to print the effective settings.
func (c *Config) Map() map[string]any {
	root := make(map[string]any)
	for _, s := range c.settings() {
		section, name, _ := strings.Cut(s.key, ".")
		m, ok := root[section].(map[string]any)
		if !ok {
			m = make(map[string]any)
			root[section] = m
		}
		m[name] = renderValue(s.value)
	}
	return root
}

func renderValue(v any) any {
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	return v
}
