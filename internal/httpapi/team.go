package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListTeam(c *gin.Context) {
	out, err := h.Team.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch team")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetTeamMember(c *gin.Context) {
	m, err := h.Team.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch team member")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) TeamMemberStats(c *gin.Context) {
	st, err := h.Reporting.MemberStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch team member stats")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h Handlers) Dashboard(c *gin.Context) {
	d, err := h.Reporting.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}
