package httpapi

import (
	"net/http"

	"retail-crm/internal/activities"
	"retail-crm/internal/prospects"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListProspects(c *gin.Context) {
	f := prospects.Filter{
		Stage:      prospects.Stage(c.Query("stage")),
		StoreType:  prospects.StoreType(c.Query("store_type")),
		AssignedTo: c.Query("assigned_to"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		Ascending:  c.Query("sort_order") == "asc",
	}
	out, err := h.Prospects.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to fetch prospects")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetProspect(c *gin.Context) {
	p, err := h.Prospects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch prospect")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) CreateProspect(c *gin.Context) {
	var in prospects.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Prospects.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to create prospect")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) UpdateProspect(c *gin.Context) {
	var in prospects.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Prospects.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update prospect")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) DeleteProspect(c *gin.Context) {
	if err := h.Prospects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete prospect")
		return
	}
	c.Status(http.StatusNoContent)
}

type stageRequest struct {
	Stage         string `json:"stage"`
	PipelineStage string `json:"pipeline_stage"`
}

// MoveStage serves both PATCH /prospects/:id/stage and PATCH /pipeline/:id/move.
func (h Handlers) MoveStage(c *gin.Context) {
	var req stageRequest
	if !bindJSON(c, &req) {
		return
	}
	stage := req.Stage
	if stage == "" {
		stage = req.PipelineStage
	}
	p, err := h.Pipeline.MoveStage(c.Request.Context(), c.Param("id"), stage)
	if err != nil {
		respondError(c, err, "Failed to move prospect")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) PipelineBoard(c *gin.Context) {
	b, err := h.Pipeline.Board(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch pipeline")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h Handlers) RecentActivities(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err, "Failed to fetch activities")
		return
	}
	out, err := h.Activities.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch activities")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ProspectActivities(c *gin.Context) {
	out, err := h.Activities.ByProspect(c.Request.Context(), c.Param("prospectId"))
	if err != nil {
		respondError(c, err, "Failed to fetch activities")
		return
	}
	c.JSON(http.StatusOK, out)
}

type createActivityRequest struct {
	ProspectID   string          `json:"prospect_id"`
	TeamMemberID *string         `json:"team_member_id"`
	Type         activities.Type `json:"type"`
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	Metadata     map[string]any  `json:"metadata"`
}

func (h Handlers) CreateActivity(c *gin.Context) {
	var req createActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Activities.Record(c.Request.Context(), activities.Activity{
		ProspectID:   req.ProspectID,
		TeamMemberID: req.TeamMemberID,
		Type:         req.Type,
		Title:        req.Title,
		Description:  req.Description,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondError(c, err, "Failed to create activity")
		return
	}
	c.JSON(http.StatusCreated, a)
}
