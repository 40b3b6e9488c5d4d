// Package recovery turns handler panics into 500 responses.
package recovery

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/controller"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

// Recovery catches panics, logs them with the stack trace and answers 500
// unless the handler already started writing the response.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.WithContext(c.Request.Context()).Error("panic recovered",
				"panic", fmt.Sprint(r),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			controller.Error(c, controller.NewInternalError("", fmt.Errorf("panic: %v", r)))
		}()
		c.Next()
	}
}
