package calls

import (
	"encoding/json"
	"time"
)

// Call is one phone call placed through (or reported by) the provider.
//
// Calls are never deleted. BlandCallID is unique when present. Status only
// moves forward; see CallStatus.CanTransitionTo.
type Call struct {
	ID              string          `json:"id"`
	ProspectID      *string         `json:"prospect_id"`
	TeamMemberID    *string         `json:"team_member_id"`
	BlandCallID     *string         `json:"bland_call_id"`
	Direction       Direction       `json:"direction"`
	Status          CallStatus      `json:"status"`
	DurationSeconds *int            `json:"duration_seconds"`
	RecordingURL    *string         `json:"recording_url"`
	Transcript      json.RawMessage `json:"transcript"`
	Summary         *string         `json:"summary"`
	Notes           *string         `json:"notes"`
	Sentiment       *Sentiment      `json:"sentiment"`
	Outcome         *Outcome        `json:"outcome"`
	StartedAt       *time.Time      `json:"started_at"`
	EndedAt         *time.Time      `json:"ended_at"`
	CreatedAt       time.Time       `json:"created_at"`

	// Prospect is embedded on list and get responses.
	Prospect *ProspectRef `json:"prospects,omitempty"`
}

type ProspectRef struct {
	BusinessName string  `json:"business_name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email,omitempty"`
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no_answer"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Outcome string

const (
	OutcomeInterested    Outcome = "interested"
	OutcomeNotInterested Outcome = "not_interested"
	OutcomeCallback      Outcome = "callback"
	OutcomeVoicemail     Outcome = "voicemail"
	OutcomeNoAnswer      Outcome = "no_answer"
)

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	ProspectID   string
	Status       CallStatus
	TeamMemberID string
}
