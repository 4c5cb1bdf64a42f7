package httpapi

import (
	"strconv"

	"retail-crm/internal/apperr"
	"retail-crm/internal/auth"

	"github.com/gin-gonic/gin"
)

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid(key + " must be an integer")
	}
	return n, nil
}

// callerID is the verified team member id, present only when auth is on.
func callerID(c *gin.Context) (string, bool) {
	id, err := auth.UserID(c.Request.Context())
	return id, err == nil
}
