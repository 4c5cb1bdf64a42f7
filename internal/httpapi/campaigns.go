package httpapi

import (
	"net/http"

	"retail-crm/internal/campaigns"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListCampaigns(c *gin.Context) {
	out, err := h.Campaigns.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch campaigns")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetCampaign(c *gin.Context) {
	d, err := h.Campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch campaign")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h Handlers) CreateCampaign(c *gin.Context) {
	var in campaigns.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	if in.CreatedBy == nil {
		if id, ok := callerID(c); ok {
			in.CreatedBy = &id
		}
	}
	out, err := h.Campaigns.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to create campaign")
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) LaunchCampaign(c *gin.Context) {
	res, err := h.Campaigns.Launch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to launch campaign")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) PauseCampaign(c *gin.Context) {
	out, err := h.Campaigns.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to pause campaign")
		return
	}
	c.JSON(http.StatusOK, out)
}
