// Package requestsize limits request body sizes.
package requestsize

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/controller"
)

const limitKey = "requestsize.max_bytes"

// Middleware enforces a maximum request body size in bytes.
// A non-positive maxBytes disables the middleware.
func Middleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		// Fail fast when Content-Length is declared and exceeds the limit.
		if c.Request.ContentLength > maxBytes {
			controller.Error(c, controller.NewPayloadTooLargeError(maxBytes))
			return
		}
		c.Set(limitKey, maxBytes)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// ReadBody reads the whole request body. Reading past the limit set by
// Middleware yields a 413 AppError.
func ReadBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		return body, nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return nil, controller.NewPayloadTooLargeError(maxBytesErr.Limit)
	}
	return nil, controller.NewValidationError("failed to read request body", nil)
}
