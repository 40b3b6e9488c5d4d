// Package requestid assigns every request an id that is echoed in the
// response and carried on the request context for logging.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

// RequestIDHeader is the HTTP header name for request ID.
const RequestIDHeader = "X-Request-ID"

// maxLength bounds ids accepted from clients.
const maxLength = 128

// RequestID keeps a client supplied X-Request-ID and generates a UUID
// otherwise. The id is set on the response header, the gin context and the
// request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxLength {
			requestID = uuid.NewString()
		}

		c.Set(logger.RequestIDField, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// Get returns the request id of c, or "" when the middleware did not run.
func Get(c *gin.Context) string {
	return c.GetString(logger.RequestIDField)
}
