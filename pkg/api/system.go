package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/backoffice/pkg/version"
)

func (a *API) healthz(c *gin.Context) {
	result := a.deps.Health.Check(c.Request.Context())
	status := http.StatusOK
	if !result.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}

func (a *API) version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Current(a.cfg.ServiceName))
}
