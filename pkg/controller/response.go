package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/observability/logger"
)

// SuccessResponse wraps response data in a consistent envelope.
type SuccessResponse struct {
	Data      any    `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

// Success sends data with HTTP 200.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

// Created sends data with HTTP 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

// NoContent sends HTTP 204 without a body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error maps err with MapError, records it on the gin context for the
// access log and aborts the chain.
func Error(c *gin.Context, err error) {
	status, body := MapError(c.Request.Context(), err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
