package prospects

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"retail-crm/internal/apperr"

	"github.com/google/uuid"
)

// Repository is the persistence contract for prospects.
// Implementations return apperr.ErrNotFound for unknown ids.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Prospect, error)
	Get(ctx context.Context, id string) (Prospect, error)
	Create(ctx context.Context, p Prospect) (Prospect, error)
	Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Prospect, error)
	Delete(ctx context.Context, id string) error

	// SetStage always writes, even when the stage is unchanged.
	SetStage(ctx context.Context, id string, stage Stage, at time.Time) (Prospect, error)
	TouchLastContacted(ctx context.Context, id string, at time.Time) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
	log   *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, clock: time.Now, log: log}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Prospect, error) {
	if f.Stage != "" && !f.Stage.Valid() {
		return nil, apperr.Invalid("invalid pipeline stage")
	}
	if f.StoreType != "" && !f.StoreType.Valid() {
		return nil, apperr.Invalid("invalid store type")
	}
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if !validSortColumn(f.SortBy) {
		return nil, apperr.Invalid("unsupported sort_by " + f.SortBy)
	}
	f.Search = strings.TrimSpace(f.Search)

	out, err := s.repo.List(ctx, f)
	return out, apperr.Persistence(err)
}

func (s *Service) Get(ctx context.Context, id string) (Prospect, error) {
	p, err := s.repo.Get(ctx, id)
	return p, apperr.Persistence(err)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Prospect, error) {
	name := strings.TrimSpace(in.BusinessName)
	if name == "" {
		return Prospect{}, apperr.Invalid("business_name is required")
	}
	if in.StoreType == "" {
		in.StoreType = StoreTypeOther
	}
	if in.PipelineStage == "" {
		in.PipelineStage = StageLead
	}
	if in.Source == "" {
		in.Source = SourceManual
	}
	if err := validateEnums(&in.StoreType, &in.PipelineStage, &in.Source); err != nil {
		return Prospect{}, err
	}

	now := s.clock().UTC()
	p := Prospect{
		ID:                     uuid.NewString(),
		BusinessName:           name,
		ContactFirstName:       in.ContactFirstName,
		ContactLastName:        in.ContactLastName,
		Email:                  in.Email,
		Phone:                  in.Phone,
		Website:                in.Website,
		Address:                in.Address,
		City:                   in.City,
		State:                  in.State,
		Zip:                    in.Zip,
		StoreType:              in.StoreType,
		PipelineStage:          in.PipelineStage,
		AssignedTo:             in.AssignedTo,
		Source:                 in.Source,
		EstimatedMonthlyVolume: in.EstimatedMonthlyVolume,
		Notes:                  in.Notes,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	out, err := s.repo.Create(ctx, p)
	if err != nil {
		return Prospect{}, apperr.Persistence(err)
	}
	s.log.Debug("prospect created", "prospect_id", out.ID)
	return out, nil
}

// Update applies a partial update. A stage change made here is not logged as
// an activity; stage moves that should be logged go through the pipeline.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Prospect, error) {
	if in.BusinessName != nil {
		name := strings.TrimSpace(*in.BusinessName)
		if name == "" {
			return Prospect{}, apperr.Invalid("business_name cannot be empty")
		}
		in.BusinessName = &name
	}
	if err := validateEnums(in.StoreType, in.PipelineStage, in.Source); err != nil {
		return Prospect{}, err
	}
	out, err := s.repo.Update(ctx, id, in, s.clock().UTC())
	return out, apperr.Persistence(err)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return apperr.Persistence(s.repo.Delete(ctx, id))
}

func (s *Service) TouchLastContacted(ctx context.Context, id string, at time.Time) error {
	return apperr.Persistence(s.repo.TouchLastContacted(ctx, id, at.UTC()))
}

func validateEnums(storeType *StoreType, stage *Stage, source *Source) error {
	if storeType != nil && !storeType.Valid() {
		return apperr.Invalid("invalid store_type")
	}
	if stage != nil && !stage.Valid() {
		return apperr.Invalid("invalid pipeline stage")
	}
	if source != nil && !source.Valid() {
		return apperr.Invalid("invalid source")
	}
	return nil
}
