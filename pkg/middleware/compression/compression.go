// Package compression negotiates Brotli or gzip encoding of response bodies.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

// Config controls response compression.
type Config struct {
	EnableGzip   bool
	EnableBrotli bool
	GzipLevel    int
	BrotliLevel  int
	// MinSize is the body size below which responses are sent as is.
	MinSize                  int
	CompressibleContentTypes []string
	ExcludedPathPrefixes     []string
}

// DefaultConfig compresses JSON and YAML bodies of 1 KiB or more. Streams
// and the metrics endpoint, which negotiates its own encoding, are skipped.
func DefaultConfig() Config {
	return Config{
		EnableGzip:   true,
		EnableBrotli: true,
		GzipLevel:    gzip.DefaultCompression,
		BrotliLevel:  4,
		MinSize:      1024,
		CompressibleContentTypes: []string{
			"application/json",
			"application/yaml",
			"text/plain",
		},
		ExcludedPathPrefixes: []string{"/metrics", "/api/v1/tracking"},
	}
}

// Compression buffers the response until MinSize bytes are written or the
// handler returns, then encodes it when the client accepts an enabled
// encoding and the content type is compressible.
func Compression(cfg Config) gin.HandlerFunc {
	if cfg.GzipLevel == 0 {
		cfg.GzipLevel = gzip.DefaultCompression
	}
	if cfg.BrotliLevel <= 0 {
		cfg.BrotliLevel = DefaultConfig().BrotliLevel
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead || excluded(c.Request.URL.Path, cfg.ExcludedPathPrefixes) {
			c.Next()
			return
		}
		encoding := negotiate(c.GetHeader("Accept-Encoding"), cfg)
		if encoding == "" {
			c.Next()
			return
		}

		appendVary(c.Writer.Header(), "Accept-Encoding")
		w := &writer{ResponseWriter: c.Writer, encoding: encoding, cfg: cfg}
		c.Writer = w
		defer func() { c.Writer = w.ResponseWriter }()

		c.Next()
		if err := w.finish(); err != nil {
			_ = c.Error(err)
		}
	}
}

func excluded(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// negotiate picks the enabled encoding with the highest quality value.
// Brotli wins ties.
func negotiate(acceptEncoding string, cfg Config) string {
	if acceptEncoding == "" {
		return ""
	}
	qAny, hasAny := quality(acceptEncoding, "*")

	best, bestQ := "", 0.0
	if cfg.EnableBrotli {
		q, ok := quality(acceptEncoding, encodingBrotli)
		if !ok && hasAny {
			q, ok = qAny, true
		}
		if ok && q > 0 {
			best, bestQ = encodingBrotli, q
		}
	}
	if cfg.EnableGzip {
		q, ok := quality(acceptEncoding, encodingGzip)
		if !ok && hasAny {
			q, ok = qAny, true
		}
		if ok && q > bestQ {
			best = encodingGzip
		}
	}
	return best
}

func quality(acceptEncoding, encoding string) (float64, bool) {
	for _, part := range strings.Split(acceptEncoding, ",") {
		sections := strings.Split(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(sections[0]), encoding) {
			continue
		}
		q := 1.0
		for _, section := range sections[1:] {
			name, value, ok := strings.Cut(strings.TrimSpace(section), "=")
			if !ok || !strings.EqualFold(name, "q") {
				continue
			}
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				q = parsed
			}
		}
		return q, true
	}
	return 0, false
}

// writer holds back the status line and the first MinSize bytes so the
// encoding decision can look at the whole header set.
type writer struct {
	gin.ResponseWriter
	encoding string
	cfg      Config

	status  int
	buf     bytes.Buffer
	decided bool
	encoder io.WriteCloser
}

func (w *writer) WriteHeader(code int) {
	if w.decided {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.status = code
}

func (w *writer) WriteHeaderNow() {
	if !w.decided {
		_ = w.decide()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *writer) Write(p []byte) (int, error) {
	if w.decided {
		return w.out().Write(p)
	}
	w.buf.Write(p)
	if w.buf.Len() >= w.cfg.MinSize {
		if err := w.decide(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *writer) Status() int {
	if !w.decided && w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *writer) Written() bool {
	return w.decided || w.buf.Len() > 0
}

func (w *writer) Flush() {
	if !w.decided {
		_ = w.decide()
	}
	if f, ok := w.encoder.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *writer) out() io.Writer {
	if w.encoder != nil {
		return w.encoder
	}
	return w.ResponseWriter
}

func (w *writer) decide() error {
	w.decided = true
	if w.shouldCompress() {
		h := w.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", w.encoding)
		switch w.encoding {
		case encodingBrotli:
			w.encoder = brotli.NewWriterLevel(w.ResponseWriter, w.cfg.BrotliLevel)
		case encodingGzip:
			gz, err := gzip.NewWriterLevel(w.ResponseWriter, w.cfg.GzipLevel)
			if err != nil {
				return fmt.Errorf("create gzip writer: %w", err)
			}
			w.encoder = gz
		}
	}
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}
	w.ResponseWriter.WriteHeaderNow()
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.out().Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *writer) shouldCompress() bool {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	if status == http.StatusNoContent || status == http.StatusNotModified || status < 200 {
		return false
	}
	if w.Header().Get("Content-Encoding") != "" || w.buf.Len() < w.cfg.MinSize || w.buf.Len() == 0 {
		return false
	}
	contentType := strings.ToLower(w.Header().Get("Content-Type"))
	for _, prefix := range w.cfg.CompressibleContentTypes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func (w *writer) finish() error {
	if !w.decided {
		if err := w.decide(); err != nil {
			return err
		}
	}
	if w.encoder != nil {
		return w.encoder.Close()
	}
	return nil
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
