package main

import (
	"retail-crm/internal/httpapi"
	"retail-crm/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
// authMW is nil when bearer-token auth is disabled.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/health", h.Health)

	api := r.Group("/api")

	// Provider webhooks are never behind auth.
	api.POST("/webhooks/bland", h.BlandWebhook)

	protected := api.Group("")
	if authMW != nil {
		protected.Use(authMW)
	}

	prospects := protected.Group("/prospects")
	{
		prospects.GET("", h.ListProspects)
		prospects.POST("", h.CreateProspect)
		prospects.GET("/:id", h.GetProspect)
		prospects.PUT("/:id", h.UpdateProspect)
		prospects.DELETE("/:id", h.DeleteProspect)
		prospects.PATCH("/:id/stage", h.MoveStage)
	}

	pipeline := protected.Group("/pipeline")
	{
		pipeline.GET("", h.PipelineBoard)
		pipeline.PATCH("/:id/move", h.MoveStage)
	}

	activities := protected.Group("/activities")
	{
		activities.GET("/recent", h.RecentActivities)
		activities.GET("/prospect/:prospectId", h.ProspectActivities)
		activities.POST("", h.CreateActivity)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.PATCH("/:id/complete", h.CompleteTask)
	}

	team := protected.Group("/team")
	{
		team.GET("", h.ListTeam)
		team.GET("/:id", h.GetTeamMember)
		team.GET("/:id/stats", h.TeamMemberStats)
	}

	protected.GET("/dashboard", h.Dashboard)

	calls := protected.Group("/calls")
	{
		calls.GET("", h.ListCalls)
		calls.POST("", h.InitiateCall)
		calls.GET("/:id", h.GetCall)
		calls.POST("/:id/end", h.EndCall)
	}

	campaigns := protected.Group("/campaigns")
	{
		campaigns.GET("", h.ListCampaigns)
		campaigns.POST("", h.CreateCampaign)
		campaigns.GET("/:id", h.GetCampaign)

		// Dialing a batch is limited to managers once identities are verified.
		dial := campaigns.Group("")
		if authMW != nil {
			dial.Use(rbac.RequireAnyRole(rbac.RoleManager))
		}
		dial.POST("/:id/launch", h.LaunchCampaign)
		dial.POST("/:id/pause", h.PauseCampaign)
	}

	customers := protected.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}

	orders := protected.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/customer/:customerId", h.CustomerOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
	}
}
