package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"
	"retail-crm/internal/telephony"
)

// StageAdvancer moves a prospect forward after an interested call.
type StageAdvancer interface {
	AdvanceOnInterest(ctx context.Context, prospectID string) (bool, error)
}

// Locker serializes work on a key across processes. Release only frees
// the lock while token still owns it, so a holder that outlived its TTL
// cannot free the next holder's lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// DeliveryLog archives raw webhook deliveries and reports how many earlier
// deliveries were seen for the same provider call.
type DeliveryLog interface {
	Record(ctx context.Context, providerCallID string, payload []byte, at time.Time) (prior int, err error)
}

type IngestorDeps struct {
	Calls      Repository
	Prospects  ProspectStore
	Activities ActivityRecorder
	Pipeline   StageAdvancer

	// Optional.
	Locker     Locker
	Deliveries DeliveryLog
	Logger     *slog.Logger
}

// Ingestor applies provider call status webhooks.
type Ingestor struct {
	calls      Repository
	prospects  ProspectStore
	activities ActivityRecorder
	pipeline   StageAdvancer
	locker     Locker
	deliveries DeliveryLog
	lockTTL    time.Duration
	clock      func() time.Time
	log        *slog.Logger
}

func NewIngestor(d IngestorDeps) *Ingestor {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{
		calls:      d.Calls,
		prospects:  d.Prospects,
		activities: d.Activities,
		pipeline:   d.Pipeline,
		locker:     d.Locker,
		deliveries: d.Deliveries,
		lockTTL:    30 * time.Second,
		clock:      time.Now,
		log:        log.With("component", "webhook"),
	}
}

// IngestResult describes what a delivery changed. Matched is false when the
// provider call id is unknown; nothing is written in that case.
type IngestResult struct {
	Matched         bool       `json:"matched"`
	CallID          string     `json:"call_id,omitempty"`
	Status          CallStatus `json:"status,omitempty"`
	Outcome         *Outcome   `json:"outcome,omitempty"`
	Advanced        bool       `json:"advanced"`
	PriorDeliveries int        `json:"prior_deliveries"`
}

// Ingest applies one webhook delivery. Deliveries are not deduplicated:
// a repeated delivery re-applies its fields and appends another activity.
// A delivery for an unknown call writes nothing, not even to the archive.
func (g *Ingestor) Ingest(ctx context.Context, ev telephony.WebhookEvent, raw []byte) (IngestResult, error) {
	if ev.CallID == "" {
		return IngestResult{}, apperr.Invalid("missing call_id")
	}
	now := g.clock().UTC()
	log := g.log.With("bland_call_id", ev.CallID)

	var res IngestResult
	if g.locker != nil {
		key := "webhook:call:" + ev.CallID
		token, ok, err := g.locker.Acquire(ctx, key, g.lockTTL)
		switch {
		case err != nil:
			log.Warn("webhook lock unavailable, continuing unlocked", "err", err)
		case !ok:
			return res, fmt.Errorf("%w: delivery for call %s already in progress", apperr.ErrConflict, ev.CallID)
		default:
			defer func() {
				if err := g.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn("webhook lock release failed", "err", err)
				}
			}()
		}
	}

	c, err := g.calls.GetByProviderID(ctx, ev.CallID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn("webhook for unknown call acknowledged")
			return res, nil
		}
		return res, apperr.Persistence(err)
	}
	res.Matched = true
	res.CallID = c.ID

	// Only deliveries for known calls are archived.
	if g.deliveries != nil {
		prior, err := g.deliveries.Record(ctx, ev.CallID, raw, now)
		if err != nil {
			log.Warn("webhook archive failed", "err", err)
		}
		res.PriorDeliveries = prior
		if prior > 0 {
			log.Warn("webhook redelivered", "prior_deliveries", prior)
		}
	}

	reported := StatusFromProvider(ev.Status)
	next := ApplyStatus(c.Status, reported)
	if next != reported {
		log.Info("stale status ignored", "call_id", c.ID, "current", c.Status, "reported", reported)
	}
	c.Status = next

	var duration *int
	if secs, ok := ev.DurationSeconds(); ok {
		duration = &secs
		c.DurationSeconds = &secs
	}
	if len(ev.Transcript) > 0 {
		c.Transcript = ev.Transcript
	}
	if ev.RecordingURL != "" {
		v := ev.RecordingURL
		c.RecordingURL = &v
	}
	var summary *string
	if ev.Summary != "" {
		v := ev.Summary
		summary = &v
		c.Summary = &v
	}
	ended := now
	if t, ok := ev.EndedAt(); ok {
		ended = t
	}
	c.EndedAt = &ended

	if cls, ok := ClassifyTranscript(ev.ConcatenatedTranscript); ok {
		sentiment, outcome := cls.Sentiment, cls.Outcome
		c.Sentiment = &sentiment
		c.Outcome = &outcome
		res.Outcome = &outcome
	}

	if err := g.calls.Update(ctx, c); err != nil {
		return res, apperr.Persistence(err)
	}
	res.Status = c.Status

	if c.ProspectID == nil {
		log.Info("webhook applied", "call_id", c.ID, "status", c.Status)
		return res, nil
	}
	prospectID := *c.ProspectID

	meta := map[string]any{
		"call_id":       c.ID,
		"bland_call_id": ev.CallID,
		"status":        string(c.Status),
	}
	if res.Outcome != nil {
		meta["outcome"] = string(*res.Outcome)
	}
	if duration != nil {
		meta["duration"] = *duration
	}
	if _, err := g.activities.Record(ctx, activities.Activity{
		ProspectID:   prospectID,
		TeamMemberID: c.TeamMemberID,
		Type:         activities.TypeCall,
		Title:        callTitle(c.Status, duration),
		Description:  summary,
		Metadata:     meta,
	}); err != nil {
		return res, err
	}

	if err := g.prospects.TouchLastContacted(ctx, prospectID, now); err != nil {
		return res, apperr.Persistence(err)
	}

	if res.Outcome != nil && *res.Outcome == OutcomeInterested {
		advanced, err := g.pipeline.AdvanceOnInterest(ctx, prospectID)
		if err != nil {
			return res, err
		}
		res.Advanced = advanced
	}

	log.Info("webhook applied",
		"call_id", c.ID,
		"prospect_id", prospectID,
		"status", c.Status,
		"advanced", res.Advanced,
	)
	return res, nil
}

func callTitle(status CallStatus, duration *int) string {
	if duration == nil {
		return fmt.Sprintf("Call %s: unknown duration", status)
	}
	return fmt.Sprintf("Call %s: %ds", status, *duration)
}
