package httpapi

import (
	"errors"
	"io"
	"net/http"

	"retail-crm/internal/apperr"
	"retail-crm/internal/calls"
	"retail-crm/internal/telephony"
	"retail-crm/pkg/logger"

	"github.com/gin-gonic/gin"
)

// defaultMaxWebhookBytes caps a provider delivery; transcripts can be long.
const defaultMaxWebhookBytes = 16 << 20

func (h Handlers) ListCalls(c *gin.Context) {
	f := calls.ListFilter{
		ProspectID:   c.Query("prospect_id"),
		Status:       calls.CallStatus(c.Query("status")),
		TeamMemberID: c.Query("team_member_id"),
	}
	out, err := h.Calls.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to fetch calls")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetCall returns the call, merged with provider details while it is still
// open. A provider outage serves the stored record with X-Call-Stale set.
func (h Handlers) GetCall(c *gin.Context) {
	res, err := h.Calls.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch call")
		return
	}
	if res.EnrichmentErr != nil {
		logger.FromGin(c).Warn("call details unavailable", "call_id", res.Call.ID, "err", res.EnrichmentErr)
		c.Header("X-Call-Stale", "true")
	}
	c.JSON(http.StatusOK, res.Call)
}

func (h Handlers) InitiateCall(c *gin.Context) {
	var in calls.InitiateInput
	if !bindJSON(c, &in) {
		return
	}
	if in.TeamMemberID == "" {
		in.TeamMemberID, _ = callerID(c)
	}
	call, err := h.Calls.Initiate(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to initiate call")
		return
	}
	c.JSON(http.StatusCreated, call)
}

func (h Handlers) EndCall(c *gin.Context) {
	call, err := h.Calls.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to end call")
		return
	}
	c.JSON(http.StatusOK, call)
}

// BlandWebhook ingests a provider delivery. Malformed or unknown-call
// events are acknowledged with 200 so the provider stops retrying them.
// A delivery already in progress gets 409 and an oversized body gets 413,
// so both are retried.
func (h Handlers) BlandWebhook(c *gin.Context) {
	log := logger.FromGin(c)
	limit := h.MaxWebhookBytes
	if limit <= 0 {
		limit = defaultMaxWebhookBytes
	}
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		// Oversized or interrupted deliveries are not acknowledged so the
		// provider retries them.
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Error("webhook body exceeds limit", "limit_bytes", tooLarge.Limit)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"received": false, "error": "payload too large"})
			return
		}
		log.Error("webhook body unreadable", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"received": false, "error": "unreadable body"})
		return
	}
	ev, err := telephony.DecodeWebhookEvent(raw)
	if err != nil {
		log.Warn("webhook payload malformed", "err", err)
		c.JSON(http.StatusOK, gin.H{"received": false, "error": "malformed payload"})
		return
	}

	res, err := h.Webhooks.Ingest(c.Request.Context(), ev, raw)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true, "result": res})
	case errors.Is(err, apperr.ErrInvalidRequest):
		log.Warn("webhook rejected", "err", err)
		c.JSON(http.StatusOK, gin.H{"received": false, "error": err.Error()})
	default:
		respondError(c, err, "Webhook processing failed")
	}
}
