package tasks

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Task is a follow-up item, optionally tied to a prospect.
type Task struct {
	ID          string       `json:"id"`
	ProspectID  *string      `json:"prospect_id"`
	AssignedTo  *string      `json:"assigned_to"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	DueDate     *time.Time   `json:"due_date"`
	Priority    Priority     `json:"priority"`
	Status      Status       `json:"status"`
	CompletedAt *time.Time   `json:"completed_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Prospect    *ProspectRef `json:"prospects,omitempty"`
}

type ProspectRef struct {
	BusinessName string `json:"business_name"`
}

type CreateInput struct {
	ProspectID  *string    `json:"prospect_id"`
	AssignedTo  *string    `json:"assigned_to"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	ProspectID  *string    `json:"prospect_id"`
	AssignedTo  *string    `json:"assigned_to"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *Priority  `json:"priority"`
	Status      *Status    `json:"status"`

	// Set by the service when the task moves to completed.
	CompletedAt *time.Time `json:"-"`
}

type Filter struct {
	AssignedTo string
	Status     Status
	Priority   Priority
	ProspectID string
}
