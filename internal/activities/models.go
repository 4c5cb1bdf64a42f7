package activities

import "time"

// Activity is an immutable entry in a prospect's history.
//
// Activities are never updated or deleted. Writers are the pipeline (stage
// changes), calls (outbound and completed calls), tasks (completions) and
// users through the API (notes, emails).
type Activity struct {
	ID           string         `json:"id"`
	ProspectID   string         `json:"prospect_id"`
	TeamMemberID *string        `json:"team_member_id"`
	Type         Type           `json:"type"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`

	// Prospect is filled on recent-activity listings only.
	Prospect *ProspectRef `json:"prospects,omitempty"`
}

type ProspectRef struct {
	BusinessName string `json:"business_name"`
}

type Type string

const (
	TypeCall          Type = "call"
	TypeEmail         Type = "email"
	TypeNote          Type = "note"
	TypeStageChange   Type = "stage_change"
	TypeTaskCompleted Type = "task_completed"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCall, TypeEmail, TypeNote, TypeStageChange, TypeTaskCompleted:
		return true
	default:
		return false
	}
}

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)
