package telephony

import (
	"context"
	"encoding/json"
	"time"
)

// Provider is the outbound calling gateway. Business logic depends on the
// narrow subsets it needs (see calls and campaigns); BlandClient implements
// the full set.
type Provider interface {
	PlaceCall(ctx context.Context, req CallRequest) (CallResponse, error)
	GetCallDetails(ctx context.Context, providerCallID string) (CallDetails, error)
	EndCall(ctx context.Context, providerCallID string) error
	PlaceBatchCalls(ctx context.Context, entries []BatchEntry, pathwayID, task string) (BatchResponse, error)
}

// CallRequest places one outbound call. Empty optional fields take the
// client's configured defaults.
type CallRequest struct {
	Phone         string
	PathwayID     string
	Task          string
	Voice         string
	FirstSentence string
	Metadata      map[string]any
	Webhook       string
}

type CallResponse struct {
	CallID  string `json:"call_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CallDetails is the provider's current view of a call. Only fields the
// provider has populated are set.
type CallDetails struct {
	Status                 string
	Transcript             json.RawMessage
	ConcatenatedTranscript string
	RecordingURL           *string
	Summary                *string
	CallLength             *float64
	Completed              bool
	EndTime                *time.Time
}

// HasEnrichment reports whether the provider returned anything worth merging.
func (d CallDetails) HasEnrichment() bool {
	return len(d.Transcript) > 0 || d.RecordingURL != nil || d.Summary != nil || d.CallLength != nil || d.Completed
}

type BatchEntry struct {
	Phone    string
	Metadata map[string]any
}

// BatchResponse is the provider's batch reply, passed through unchanged.
type BatchResponse json.RawMessage

func (b BatchResponse) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}
