// Package httpapi holds the gin handlers for the CRM API. Handlers parse
// input, call one service, and map error kinds to statuses.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"
	"retail-crm/internal/calls"
	"retail-crm/internal/campaigns"
	"retail-crm/internal/commerce"
	"retail-crm/internal/pipeline"
	"retail-crm/internal/prospects"
	"retail-crm/internal/reporting"
	"retail-crm/internal/tasks"
	"retail-crm/internal/team"
	"retail-crm/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Pinger reports datastore health.
type Pinger func(ctx context.Context) error

// Handlers groups HTTP handlers for dependency injection.
type Handlers struct {
	Prospects  *prospects.Service
	Pipeline   *pipeline.Service
	Activities *activities.Service
	Tasks      *tasks.Service
	Team       *team.Service
	Reporting  *reporting.Service
	Calls      *calls.Manager
	Webhooks   *calls.Ingestor
	Campaigns  *campaigns.Service
	Commerce   *commerce.Service

	// Optional.
	Ping Pinger
	// MaxWebhookBytes caps a webhook body; zero means 16 MiB.
	MaxWebhookBytes int64
}

// respondError maps an error kind to its status. Server-side failures are
// attached to the gin context so the request summary logs them, and the
// client gets msg instead of the error text.
func respondError(c *gin.Context, err error, msg string) {
	status := apperr.HTTPStatus(err)
	body := err.Error()
	switch {
	case status == http.StatusBadGateway:
		_ = c.Error(err)
	case status >= http.StatusInternalServerError:
		_ = c.Error(err)
		body = msg
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Invalid("invalid json"), "invalid json")
		return false
	}
	return true
}

func (h Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)}
	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("health check failed", "err", err)
			body["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
