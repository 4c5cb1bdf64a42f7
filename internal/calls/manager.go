package calls

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"
	"retail-crm/internal/prospects"
	"retail-crm/internal/telephony"

	"github.com/google/uuid"
)

// ProspectStore is the subset of the prospect service calls depend on.
type ProspectStore interface {
	Get(ctx context.Context, id string) (prospects.Prospect, error)
	TouchLastContacted(ctx context.Context, id string, at time.Time) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, a activities.Activity) (activities.Activity, error)
}

// Provider is the part of the calling gateway used for single calls.
type Provider interface {
	PlaceCall(ctx context.Context, req telephony.CallRequest) (telephony.CallResponse, error)
	GetCallDetails(ctx context.Context, providerCallID string) (telephony.CallDetails, error)
	EndCall(ctx context.Context, providerCallID string) error
}

// Manager runs the call lifecycle: initiate, refresh, end.
type Manager struct {
	calls      Repository
	prospects  ProspectStore
	activities ActivityRecorder
	provider   Provider
	clock      func() time.Time
	log        *slog.Logger
}

func NewManager(repo Repository, ps ProspectStore, acts ActivityRecorder, provider Provider, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		calls:      repo,
		prospects:  ps,
		activities: acts,
		provider:   provider,
		clock:      time.Now,
		log:        log.With("component", "calls"),
	}
}

type InitiateInput struct {
	ProspectID   string `json:"prospect_id"`
	TeamMemberID string `json:"team_member_id"`
	PathwayID    string `json:"pathway_id"`
}

// Initiate places an outbound call to a prospect and records it.
//
// The provider call is not rolled back when local writes fail afterwards;
// the error is returned and the webhook reconciles the remote call later.
func (m *Manager) Initiate(ctx context.Context, in InitiateInput) (Call, error) {
	if strings.TrimSpace(in.ProspectID) == "" {
		return Call{}, apperr.Invalid("prospect_id is required")
	}
	p, err := m.prospects.Get(ctx, in.ProspectID)
	if err != nil {
		return Call{}, apperr.Persistence(err)
	}
	phone, ok := p.CallablePhone()
	if !ok {
		return Call{}, apperr.Invalid("prospect has no phone number")
	}

	meta := map[string]any{
		"prospect_id":   p.ID,
		"business_name": p.BusinessName,
	}
	if in.TeamMemberID != "" {
		meta["team_member_id"] = in.TeamMemberID
	}
	resp, err := m.provider.PlaceCall(ctx, telephony.CallRequest{
		Phone:     phone,
		PathwayID: in.PathwayID,
		Metadata:  meta,
	})
	if err != nil {
		m.log.Error("place call failed", "prospect_id", p.ID, "err", err)
		return Call{}, apperr.Upstream(err)
	}

	now := m.clock().UTC()
	c := Call{
		ID:          uuid.NewString(),
		ProspectID:  &p.ID,
		BlandCallID: &resp.CallID,
		Direction:   DirectionOutbound,
		Status:      CallStatusQueued,
		StartedAt:   &now,
		CreatedAt:   now,
	}
	if in.TeamMemberID != "" {
		tm := in.TeamMemberID
		c.TeamMemberID = &tm
	}
	if err := m.calls.Create(ctx, c); err != nil {
		m.log.Error("call placed but not recorded", "bland_call_id", resp.CallID, "prospect_id", p.ID, "err", err)
		return Call{}, apperr.Persistence(err)
	}

	if _, err := m.activities.Record(ctx, activities.Activity{
		ProspectID:   p.ID,
		TeamMemberID: c.TeamMemberID,
		Type:         activities.TypeCall,
		Title:        "Outbound call to " + p.BusinessName,
		Metadata: map[string]any{
			"call_id":       c.ID,
			"bland_call_id": resp.CallID,
		},
	}); err != nil {
		return c, err
	}
	if err := m.prospects.TouchLastContacted(ctx, p.ID, now); err != nil {
		return c, apperr.Persistence(err)
	}

	m.log.Info("call initiated", "call_id", c.ID, "bland_call_id", resp.CallID, "prospect_id", p.ID)
	return c, nil
}

// RefreshResult is a call plus whether the provider was consulted.
// EnrichmentErr is set when the provider could not be reached and Call is
// the stored record as-is.
type RefreshResult struct {
	Call          Call
	Fresh         bool
	EnrichmentErr error
}

// Refresh returns the stored call, merging newer details from the provider
// while the call is not completed.
func (m *Manager) Refresh(ctx context.Context, id string) (RefreshResult, error) {
	c, err := m.calls.Get(ctx, id)
	if err != nil {
		return RefreshResult{}, apperr.Persistence(err)
	}
	if c.Status == CallStatusCompleted || c.BlandCallID == nil {
		return RefreshResult{Call: c}, nil
	}

	d, err := m.provider.GetCallDetails(ctx, *c.BlandCallID)
	if err != nil {
		m.log.Warn("call refresh skipped, provider unavailable", "call_id", c.ID, "err", err)
		return RefreshResult{Call: c, EnrichmentErr: err}, nil
	}
	if !d.HasEnrichment() {
		return RefreshResult{Call: c, Fresh: true}, nil
	}

	merged := mergeDetails(c, d)
	if err := m.calls.Update(ctx, merged); err != nil {
		return RefreshResult{}, apperr.Persistence(err)
	}
	return RefreshResult{Call: merged, Fresh: true}, nil
}

func mergeDetails(c Call, d telephony.CallDetails) Call {
	if len(d.Transcript) > 0 {
		c.Transcript = d.Transcript
	}
	if d.RecordingURL != nil {
		c.RecordingURL = d.RecordingURL
	}
	if d.Summary != nil {
		c.Summary = d.Summary
	}
	if d.CallLength != nil && *d.CallLength > 0 {
		secs := int(math.Round(*d.CallLength))
		c.DurationSeconds = &secs
	}
	if d.Completed {
		c.Status = ApplyStatus(c.Status, CallStatusCompleted)
		if d.EndTime != nil {
			end := *d.EndTime
			c.EndedAt = &end
		}
	}
	return c
}

// End asks the provider to hang up and marks the call completed. A call that
// already reached a terminal status keeps it.
func (m *Manager) End(ctx context.Context, id string) (Call, error) {
	c, err := m.calls.Get(ctx, id)
	if err != nil {
		return Call{}, apperr.Persistence(err)
	}
	if c.BlandCallID == nil || *c.BlandCallID == "" {
		return Call{}, apperr.NotFound(fmt.Sprintf("call %s has no provider call id", id))
	}
	if err := m.provider.EndCall(ctx, *c.BlandCallID); err != nil {
		return Call{}, apperr.Upstream(err)
	}

	wasTerminal := c.Status.Terminal()
	c.Status = ApplyStatus(c.Status, CallStatusCompleted)
	if !wasTerminal || c.EndedAt == nil {
		now := m.clock().UTC()
		c.EndedAt = &now
	}
	if err := m.calls.Update(ctx, c); err != nil {
		return Call{}, apperr.Persistence(err)
	}
	m.log.Info("call ended", "call_id", c.ID, "status", c.Status)
	return c, nil
}

func (m *Manager) List(ctx context.Context, f ListFilter) ([]Call, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("invalid call status")
	}
	out, err := m.calls.List(ctx, f)
	return out, apperr.Persistence(err)
}
