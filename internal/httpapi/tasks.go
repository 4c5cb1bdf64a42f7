package httpapi

import (
	"net/http"

	"retail-crm/internal/tasks"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListTasks(c *gin.Context) {
	f := tasks.Filter{
		AssignedTo: c.Query("assigned_to"),
		Status:     tasks.Status(c.Query("status")),
		Priority:   tasks.Priority(c.Query("priority")),
		ProspectID: c.Query("prospect_id"),
	}
	out, err := h.Tasks.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetTask(c *gin.Context) {
	t, err := h.Tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h Handlers) CreateTask(c *gin.Context) {
	var in tasks.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.Tasks.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h Handlers) UpdateTask(c *gin.Context) {
	var in tasks.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.Tasks.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h Handlers) DeleteTask(c *gin.Context) {
	if err := h.Tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) CompleteTask(c *gin.Context) {
	t, err := h.Tasks.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to complete task")
		return
	}
	c.JSON(http.StatusOK, t)
}
