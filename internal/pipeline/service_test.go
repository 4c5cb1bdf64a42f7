package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/apperr"
	"retail-crm/internal/prospects"
)

type fixture struct {
	svc  *Service
	repo *prospects.MemoryRepo
	acts *activities.MemoryRepo
}

func newFixture(seed ...prospects.Prospect) fixture {
	repo := prospects.NewMemoryRepo(seed...)
	acts := activities.NewMemoryRepo()
	svc := NewService(repo, activities.NewService(acts), nil)
	svc.clock = func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, repo: repo, acts: acts}
}

func TestMoveStage_RejectsNonCanonicalStage(t *testing.T) {
	f := newFixture(prospects.Prospect{ID: "p1", BusinessName: "Shop", PipelineStage: prospects.StageLead})

	for _, s := range []string{"", "Lead", "won", "contacted "} {
		if _, err := f.svc.MoveStage(context.Background(), "p1", s); !errors.Is(err, apperr.ErrInvalidRequest) {
			t.Fatalf("stage %q: expected invalid request, got %v", s, err)
		}
	}
	if f.repo.StageWrites() != 0 {
		t.Fatalf("expected no writes, got %d", f.repo.StageWrites())
	}
}

func TestMoveStage_UnknownProspect(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.MoveStage(context.Background(), "missing", "partner"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMoveStage_SameStageWritesWithoutActivity(t *testing.T) {
	f := newFixture(prospects.Prospect{ID: "p1", BusinessName: "Shop", PipelineStage: prospects.StageContacted})

	p, err := f.svc.MoveStage(context.Background(), "p1", "contacted")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if p.PipelineStage != prospects.StageContacted {
		t.Fatalf("unexpected stage %s", p.PipelineStage)
	}
	if f.repo.StageWrites() != 1 {
		t.Fatalf("expected write issued, got %d", f.repo.StageWrites())
	}
	if n := len(f.acts.Events()); n != 0 {
		t.Fatalf("expected no activity, got %d", n)
	}
}

func TestMoveStage_ChangeRecordsOneActivity(t *testing.T) {
	f := newFixture(prospects.Prospect{ID: "p1", BusinessName: "Shop", PipelineStage: prospects.StageLead})

	if _, err := f.svc.MoveStage(context.Background(), "p1", "partner"); err != nil {
		t.Fatalf("move: %v", err)
	}
	evs := f.acts.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(evs))
	}
	a := evs[0]
	if a.Type != activities.TypeStageChange || a.Title != "Moved Shop from lead to partner" {
		t.Fatalf("unexpected activity: %+v", a)
	}
	if a.Metadata["from_stage"] != "lead" || a.Metadata["to_stage"] != "partner" {
		t.Fatalf("unexpected metadata: %v", a.Metadata)
	}
}

func TestAdvanceOnInterest_OnlyFromContacted(t *testing.T) {
	f := newFixture(
		prospects.Prospect{ID: "lead", BusinessName: "A", PipelineStage: prospects.StageLead},
		prospects.Prospect{ID: "contacted", BusinessName: "B", PipelineStage: prospects.StageContacted},
	)
	ctx := context.Background()

	advanced, err := f.svc.AdvanceOnInterest(ctx, "lead")
	if err != nil || advanced {
		t.Fatalf("expected no advance from lead, got %v %v", advanced, err)
	}

	advanced, err = f.svc.AdvanceOnInterest(ctx, "contacted")
	if err != nil || !advanced {
		t.Fatalf("expected advance from contacted, got %v %v", advanced, err)
	}
	p, _ := f.repo.Get(ctx, "contacted")
	if p.PipelineStage != prospects.StageInterested {
		t.Fatalf("expected interested, got %s", p.PipelineStage)
	}
	evs := f.acts.Events()
	if len(evs) != 1 || evs[0].Metadata["trigger"] != "call_outcome" {
		t.Fatalf("unexpected activities: %+v", evs)
	}
}

func TestBoard_GroupsByStage(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(
		prospects.Prospect{ID: "1", PipelineStage: prospects.StageLead, UpdatedAt: t0},
		prospects.Prospect{ID: "2", PipelineStage: prospects.StageLead, UpdatedAt: t0.Add(time.Hour)},
		prospects.Prospect{ID: "3", PipelineStage: prospects.StagePartner, UpdatedAt: t0},
	)
	b, err := f.svc.Board(context.Background())
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(b.Lead) != 2 || b.Lead[0].ID != "2" {
		t.Fatalf("expected leads newest first, got %+v", b.Lead)
	}
	if len(b.Partner) != 1 || b.Contacted == nil || len(b.Interested) != 0 {
		t.Fatalf("unexpected board: %+v", b)
	}
}
