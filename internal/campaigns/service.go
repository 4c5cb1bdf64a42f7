package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"retail-crm/internal/apperr"
	"retail-crm/internal/telephony"

	"github.com/google/uuid"
)

// Repository persists campaigns and their members.
type Repository interface {
	List(ctx context.Context) ([]Campaign, error)
	Get(ctx context.Context, id string) (Campaign, error)
	// Members lists a campaign's rows with prospect and call details.
	// An empty status matches every row.
	Members(ctx context.Context, campaignID string, status MemberStatus) ([]Member, error)
	// Create stores the campaign and one pending member per prospect id
	// atomically.
	Create(ctx context.Context, c Campaign, members []Member) (Campaign, error)
	SetStatus(ctx context.Context, id string, status Status, at time.Time) (Campaign, error)
	MarkMembers(ctx context.Context, memberIDs []string, status MemberStatus) error
}

// BatchDialer places many calls in one provider request.
type BatchDialer interface {
	PlaceBatchCalls(ctx context.Context, entries []telephony.BatchEntry, pathwayID, task string) (telephony.BatchResponse, error)
}

// Locker is the same token-owned lock the webhook ingestor uses.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type Service struct {
	repo   Repository
	dialer BatchDialer
	locker Locker
	clock  func() time.Time
	log    *slog.Logger
}

// NewService builds the campaign service. locker may be nil.
func NewService(repo Repository, dialer BatchDialer, locker Locker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		dialer: dialer,
		locker: locker,
		clock:  time.Now,
		log:    log.With("component", "campaigns"),
	}
}

func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	out, err := s.repo.List(ctx)
	return out, apperr.Persistence(err)
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, apperr.Persistence(err)
	}
	members, err := s.repo.Members(ctx, id, "")
	if err != nil {
		return Detail{}, apperr.Persistence(err)
	}
	return Detail{Campaign: c, Prospects: members}, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Campaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Campaign{}, apperr.Invalid("name is required")
	}

	now := s.clock().UTC()
	c := Campaign{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		PathwayID:   in.PathwayID,
		Status:      StatusDraft,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	seen := make(map[string]bool, len(in.ProspectIDs))
	members := make([]Member, 0, len(in.ProspectIDs))
	for _, pid := range in.ProspectIDs {
		pid = strings.TrimSpace(pid)
		if pid == "" || seen[pid] {
			continue
		}
		seen[pid] = true
		members = append(members, Member{
			ID:         uuid.NewString(),
			CampaignID: c.ID,
			ProspectID: pid,
			Status:     MemberPending,
			CreatedAt:  now,
		})
	}
	c.TotalCalls = len(members)

	out, err := s.repo.Create(ctx, c, members)
	return out, apperr.Persistence(err)
}

const launchLockTTL = time.Minute

// Launch dials every pending member that has a phone number in a single
// provider batch, then marks the campaign active and those members queued.
// Members without a phone stay pending.
func (s *Service) Launch(ctx context.Context, id string) (LaunchResult, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return LaunchResult{}, apperr.Persistence(err)
	}
	log := s.log.With("campaign_id", c.ID)

	if s.locker != nil {
		key := "campaign:launch:" + c.ID
		token, ok, err := s.locker.Acquire(ctx, key, launchLockTTL)
		switch {
		case err != nil:
			log.Warn("launch lock unavailable, continuing unlocked", "err", err)
		case !ok:
			return LaunchResult{}, fmt.Errorf("%w: campaign %s is already launching", apperr.ErrConflict, c.ID)
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					log.Warn("launch lock release failed", "err", err)
				}
			}()
		}
	}

	pending, err := s.repo.Members(ctx, c.ID, MemberPending)
	if err != nil {
		return LaunchResult{}, apperr.Persistence(err)
	}
	if len(pending) == 0 {
		return LaunchResult{}, apperr.Invalid("No pending prospects in campaign")
	}

	entries := make([]telephony.BatchEntry, 0, len(pending))
	ids := make([]string, 0, len(pending))
	for _, m := range pending {
		phone, ok := m.callablePhone()
		if !ok {
			continue
		}
		entries = append(entries, telephony.BatchEntry{
			Phone: phone,
			Metadata: map[string]any{
				"prospect_id":   m.ProspectID,
				"campaign_id":   c.ID,
				"business_name": m.Prospect.BusinessName,
			},
		})
		ids = append(ids, m.ID)
	}
	if len(entries) == 0 {
		return LaunchResult{}, apperr.Invalid("No prospects with phone numbers")
	}

	var pathway string
	if c.PathwayID != nil {
		pathway = *c.PathwayID
	}
	resp, err := s.dialer.PlaceBatchCalls(ctx, entries, pathway, "")
	if err != nil {
		log.Error("batch launch failed", "entries", len(entries), "err", err)
		return LaunchResult{}, apperr.Upstream(err)
	}
	log.Info("batch placed", "entries", len(entries), "skipped", len(pending)-len(entries), "bland_response", string(resp))

	if _, err := s.repo.SetStatus(ctx, c.ID, StatusActive, s.clock().UTC()); err != nil {
		log.Error("batch placed but campaign not activated", "err", err)
		return LaunchResult{}, apperr.Persistence(err)
	}
	if err := s.repo.MarkMembers(ctx, ids, MemberQueued); err != nil {
		log.Error("batch placed but members not queued", "err", err)
		return LaunchResult{}, apperr.Persistence(err)
	}

	return LaunchResult{
		Message:        "Campaign launched",
		CallsInitiated: len(entries),
		BlandResponse:  resp,
	}, nil
}

func (s *Service) Pause(ctx context.Context, id string) (Campaign, error) {
	c, err := s.repo.SetStatus(ctx, id, StatusPaused, s.clock().UTC())
	return c, apperr.Persistence(err)
}
