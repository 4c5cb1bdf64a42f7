package activities

import (
	"context"
	"errors"
	"strings"
	"time"

	"retail-crm/internal/apperr"

	"github.com/google/uuid"
)

// Repository is the persistence contract for activities. It is append-only.
type Repository interface {
	Append(ctx context.Context, a Activity) error
	Recent(ctx context.Context, limit int) ([]Activity, error)
	ByProspect(ctx context.Context, prospectID string) ([]Activity, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Record validates and appends an activity, assigning id and created_at when unset.
func (s *Service) Record(ctx context.Context, a Activity) (Activity, error) {
	if s.repo == nil {
		return Activity{}, errors.New("activities: repository not configured")
	}
	if a.ProspectID == "" {
		return Activity{}, apperr.Invalid("prospect_id is required")
	}
	if !a.Type.Valid() {
		return Activity{}, apperr.Invalid("invalid activity type")
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return Activity{}, apperr.Invalid("title is required")
	}
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.clock().UTC()
	}
	if err := s.repo.Append(ctx, a); err != nil {
		return Activity{}, apperr.Persistence(err)
	}
	return a, nil
}

// Recent lists the newest activities across all prospects. limit <= 0 means
// the default; larger values are capped.
func (s *Service) Recent(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	out, err := s.repo.Recent(ctx, limit)
	return out, apperr.Persistence(err)
}

func (s *Service) ByProspect(ctx context.Context, prospectID string) ([]Activity, error) {
	if prospectID == "" {
		return nil, apperr.Invalid("prospect_id is required")
	}
	out, err := s.repo.ByProspect(ctx, prospectID)
	return out, apperr.Persistence(err)
}
