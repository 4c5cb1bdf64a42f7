package activities

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-crm/internal/apperr"
)

func TestRecord_ValidatesInput(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Record(ctx, Activity{Type: TypeNote, Title: "x"}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for missing prospect, got %v", err)
	}
	if _, err := svc.Record(ctx, Activity{ProspectID: "p", Type: "meeting", Title: "x"}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for bad type, got %v", err)
	}
	if _, err := svc.Record(ctx, Activity{ProspectID: "p", Type: TypeNote, Title: "  "}); !errors.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for blank title, got %v", err)
	}
}

func TestRecord_AssignsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	now := time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	a, err := svc.Record(context.Background(), Activity{ProspectID: "p", Type: TypeNote, Title: "Left samples"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if a.ID == "" || !a.CreatedAt.Equal(now) || a.Metadata == nil {
		t.Fatalf("unexpected activity: %+v", a)
	}
	if len(repo.Events()) != 1 {
		t.Fatalf("expected 1 stored activity")
	}
}

func TestRecent_ClampsLimitAndEmbedsName(t *testing.T) {
	repo := NewMemoryRepo()
	repo.SetBusinessName("p1", "Corner Gym")
	svc := NewService(repo)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		_, err := svc.Record(context.Background(), Activity{
			ProspectID: "p1",
			Type:       TypeNote,
			Title:      "note",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := svc.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != DefaultRecentLimit {
		t.Fatalf("expected default limit, got %d", len(got))
	}
	if !got[0].CreatedAt.Equal(base.Add(119 * time.Minute)) {
		t.Fatalf("expected newest first, got %s", got[0].CreatedAt)
	}
	if got[0].Prospect == nil || got[0].Prospect.BusinessName != "Corner Gym" {
		t.Fatalf("expected embedded business name")
	}

	got, _ = svc.Recent(context.Background(), 500)
	if len(got) != MaxRecentLimit {
		t.Fatalf("expected capped limit, got %d", len(got))
	}
}

func TestByProspect_FiltersProspect(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	_, _ = svc.Record(ctx, Activity{ProspectID: "a", Type: TypeCall, Title: "call"})
	_, _ = svc.Record(ctx, Activity{ProspectID: "b", Type: TypeEmail, Title: "email"})

	got, err := svc.ByProspect(ctx, "b")
	if err != nil {
		t.Fatalf("by prospect: %v", err)
	}
	if len(got) != 1 || got[0].Type != TypeEmail {
		t.Fatalf("unexpected activities: %+v", got)
	}
}
