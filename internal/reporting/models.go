package reporting

import (
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/tasks"
)

// Dashboard is the landing-page summary across the whole team.
type Dashboard struct {
	Pipeline         map[string]int        `json:"pipeline"`
	TotalProspects   int                   `json:"total_prospects"`
	TasksDueToday    int                   `json:"tasks_due_today"`
	OverdueTasks     int                   `json:"overdue_tasks"`
	PendingTasks     int                   `json:"pending_tasks"`
	CallsThisWeek    int                   `json:"calls_this_week"`
	RecentActivities []activities.Activity `json:"recent_activities"`
}

// MemberStats summarizes one team member's book of business.
type MemberStats struct {
	ProspectsByStage        map[string]int `json:"prospects_by_stage"`
	TotalProspects          int            `json:"total_prospects"`
	PendingTasks            int            `json:"pending_tasks"`
	CompletedTasksThisMonth int            `json:"completed_tasks_this_month"`
	CallsThisMonth          int            `json:"calls_this_month"`
}

// TaskQuery narrows a task count. Zero values do not filter.
type TaskQuery struct {
	AssignedTo     string
	Status         tasks.Status
	DueFrom        time.Time
	DueBefore      time.Time
	CompletedSince time.Time
}
