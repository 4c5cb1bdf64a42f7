package prospects

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-crm/internal/apperr"
)

func strPtr(s string) *string { return &s }

func newTestService(seed ...Prospect) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo(seed...)
	svc := NewService(repo, nil)
	svc.clock = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateInput{BusinessName: "  Main St Pharmacy "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.BusinessName != "Main St Pharmacy" {
		t.Fatalf("expected trimmed name, got %q", p.BusinessName)
	}
	if p.PipelineStage != StageLead || p.StoreType != StoreTypeOther || p.Source != SourceManual {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps")
	}
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for missing name, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{BusinessName: "X", PipelineStage: "won"}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for bad stage, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{BusinessName: "X", StoreType: "bakery"}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for bad store type, got %v", err)
	}
}

func TestUpdate_ValidatesStage(t *testing.T) {
	svc, _ := newTestService(Prospect{ID: "p1", BusinessName: "A", PipelineStage: StageLead})
	bad := Stage("closed")
	if _, err := svc.Update(context.Background(), "p1", UpdateInput{PipelineStage: &bad}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	good := StageContacted
	p, err := svc.Update(context.Background(), "p1", UpdateInput{PipelineStage: &good, City: strPtr("Austin")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.PipelineStage != StageContacted || p.City == nil || *p.City != "Austin" {
		t.Fatalf("unexpected prospect: %+v", p)
	}
}

func TestUpdate_UnknownProspect(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Update(context.Background(), "nope", UpdateInput{Notes: strPtr("x")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_FiltersAndSorts(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(
		Prospect{ID: "1", BusinessName: "Alpha Gym", StoreType: StoreTypeGym, PipelineStage: StageLead, City: strPtr("Denver"), CreatedAt: t0},
		Prospect{ID: "2", BusinessName: "Beta Foods", StoreType: StoreTypeGrocery, PipelineStage: StageLead, CreatedAt: t0.Add(time.Hour)},
		Prospect{ID: "3", BusinessName: "Gamma Gym", StoreType: StoreTypeGym, PipelineStage: StageContacted, CreatedAt: t0.Add(2 * time.Hour)},
	)
	ctx := context.Background()

	got, err := svc.List(ctx, Filter{StoreType: StoreTypeGym})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "3" {
		t.Fatalf("expected gyms newest first, got %+v", got)
	}

	got, _ = svc.List(ctx, Filter{Search: "denver"})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected search on city, got %+v", got)
	}

	got, _ = svc.List(ctx, Filter{SortBy: "business_name", Ascending: true})
	if got[0].BusinessName != "Alpha Gym" {
		t.Fatalf("expected ascending by name, got %+v", got)
	}

	if _, err := svc.List(ctx, Filter{SortBy: "id; DROP TABLE prospects"}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected unsupported sort column to be rejected, got %v", err)
	}
}

func TestCallablePhone(t *testing.T) {
	if _, ok := (Prospect{}).CallablePhone(); ok {
		t.Fatalf("nil phone is not callable")
	}
	if _, ok := (Prospect{Phone: strPtr("   ")}).CallablePhone(); ok {
		t.Fatalf("blank phone is not callable")
	}
	if v, ok := (Prospect{Phone: strPtr(" +15550100 ")}).CallablePhone(); !ok || v != "+15550100" {
		t.Fatalf("expected trimmed phone, got %q", v)
	}
}
