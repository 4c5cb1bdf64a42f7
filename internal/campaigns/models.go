package campaigns

import (
	"strings"
	"time"

	"retail-crm/internal/telephony"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

type MemberStatus string

const (
	MemberPending   MemberStatus = "pending"
	MemberQueued    MemberStatus = "queued"
	MemberCompleted MemberStatus = "completed"
	MemberFailed    MemberStatus = "failed"
	MemberSkipped   MemberStatus = "skipped"
)

// Campaign is a named batch of outbound calls.
type Campaign struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	PathwayID       *string   `json:"pathway_id"`
	Status          Status    `json:"status"`
	CreatedBy       *string   `json:"created_by"`
	TotalCalls      int       `json:"total_calls"`
	CompletedCalls  int       `json:"completed_calls"`
	SuccessfulCalls int       `json:"successful_calls"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Member pairs a campaign with one prospect.
type Member struct {
	ID         string       `json:"id"`
	CampaignID string       `json:"campaign_id"`
	ProspectID string       `json:"prospect_id"`
	Status     MemberStatus `json:"status"`
	CallID     *string      `json:"call_id"`
	CreatedAt  time.Time    `json:"created_at"`
	Prospect   *ProspectRef `json:"prospects"`
	Call       *CallRef     `json:"calls"`
}

type ProspectRef struct {
	BusinessName  string  `json:"business_name"`
	Phone         *string `json:"phone"`
	PipelineStage string  `json:"pipeline_stage"`
}

type CallRef struct {
	Status          string  `json:"status"`
	Outcome         *string `json:"outcome"`
	DurationSeconds *int    `json:"duration_seconds"`
}

func (m Member) callablePhone() (string, bool) {
	if m.Prospect == nil || m.Prospect.Phone == nil {
		return "", false
	}
	v := strings.TrimSpace(*m.Prospect.Phone)
	return v, v != ""
}

// Detail is a campaign with its members.
type Detail struct {
	Campaign
	Prospects []Member `json:"prospects"`
}

type CreateInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	PathwayID   *string  `json:"pathway_id"`
	CreatedBy   *string  `json:"created_by"`
	ProspectIDs []string `json:"prospect_ids"`
}

type LaunchResult struct {
	Message        string                  `json:"message"`
	CallsInitiated int                     `json:"calls_initiated"`
	BlandResponse  telephony.BatchResponse `json:"bland_response"`
}
