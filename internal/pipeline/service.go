package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"
	"retail-crm/internal/prospects"
)

// ProspectStore is the subset of the prospect repository the pipeline needs.
type ProspectStore interface {
	Get(ctx context.Context, id string) (prospects.Prospect, error)
	List(ctx context.Context, f prospects.Filter) ([]prospects.Prospect, error)
	SetStage(ctx context.Context, id string, stage prospects.Stage, at time.Time) (prospects.Prospect, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, a activities.Activity) (activities.Activity, error)
}

// Service owns every pipeline stage transition and the stage_change
// activities that describe them.
type Service struct {
	prospects  ProspectStore
	activities ActivityRecorder
	clock      func() time.Time
	log        *slog.Logger
}

func NewService(ps ProspectStore, acts ActivityRecorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{prospects: ps, activities: acts, clock: time.Now, log: log}
}

// Board groups every prospect by stage, most recently updated first.
type Board struct {
	Lead       []prospects.Prospect `json:"lead"`
	Contacted  []prospects.Prospect `json:"contacted"`
	Interested []prospects.Prospect `json:"interested"`
	Partner    []prospects.Prospect `json:"partner"`
}

func (s *Service) Board(ctx context.Context) (Board, error) {
	all, err := s.prospects.List(ctx, prospects.Filter{SortBy: "updated_at"})
	if err != nil {
		return Board{}, apperr.Persistence(err)
	}
	b := Board{
		Lead:       []prospects.Prospect{},
		Contacted:  []prospects.Prospect{},
		Interested: []prospects.Prospect{},
		Partner:    []prospects.Prospect{},
	}
	for _, p := range all {
		switch p.PipelineStage {
		case prospects.StageLead:
			b.Lead = append(b.Lead, p)
		case prospects.StageContacted:
			b.Contacted = append(b.Contacted, p)
		case prospects.StageInterested:
			b.Interested = append(b.Interested, p)
		case prospects.StagePartner:
			b.Partner = append(b.Partner, p)
		}
	}
	return b, nil
}

// MoveStage sets the prospect's stage. The write is always issued; a
// stage_change activity is recorded only when the stage actually changed.
func (s *Service) MoveStage(ctx context.Context, prospectID, stage string) (prospects.Prospect, error) {
	to := prospects.Stage(stage)
	if !to.Valid() {
		return prospects.Prospect{}, apperr.Invalid(fmt.Sprintf("invalid pipeline stage %q", stage))
	}

	current, err := s.prospects.Get(ctx, prospectID)
	if err != nil {
		return prospects.Prospect{}, apperr.Persistence(err)
	}

	updated, err := s.prospects.SetStage(ctx, prospectID, to, s.clock().UTC())
	if err != nil {
		return prospects.Prospect{}, apperr.Persistence(err)
	}

	from := current.PipelineStage
	if from == to {
		return updated, nil
	}

	_, err = s.activities.Record(ctx, activities.Activity{
		ProspectID: prospectID,
		Type:       activities.TypeStageChange,
		Title:      fmt.Sprintf("Moved %s from %s to %s", current.BusinessName, from, to),
		Metadata: map[string]any{
			"from_stage": string(from),
			"to_stage":   string(to),
		},
	})
	if err != nil {
		return updated, err
	}
	s.log.Info("prospect stage moved", "prospect_id", prospectID, "from_stage", from, "to_stage", to)
	return updated, nil
}

// AdvanceOnInterest moves a contacted prospect to interested after a call
// classified as interested. Prospects in any other stage are left alone.
func (s *Service) AdvanceOnInterest(ctx context.Context, prospectID string) (bool, error) {
	current, err := s.prospects.Get(ctx, prospectID)
	if err != nil {
		return false, apperr.Persistence(err)
	}
	if current.PipelineStage != prospects.StageContacted {
		return false, nil
	}

	if _, err := s.prospects.SetStage(ctx, prospectID, prospects.StageInterested, s.clock().UTC()); err != nil {
		return false, apperr.Persistence(err)
	}
	_, err = s.activities.Record(ctx, activities.Activity{
		ProspectID: prospectID,
		Type:       activities.TypeStageChange,
		Title:      "Auto-advanced to Interested based on call outcome",
		Metadata: map[string]any{
			"from_stage": string(prospects.StageContacted),
			"to_stage":   string(prospects.StageInterested),
			"trigger":    "call_outcome",
		},
	})
	if err != nil {
		return true, err
	}
	s.log.Info("prospect auto-advanced", "prospect_id", prospectID, "to_stage", prospects.StageInterested)
	return true, nil
}
