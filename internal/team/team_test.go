package team

import (
	"context"
	"errors"
	"testing"

	"retail-crm/internal/apperr"
)

func TestList_ActiveMembersByName(t *testing.T) {
	svc := NewService(NewMemoryRepo(
		Member{ID: "1", FullName: "Zoe Park", Role: RoleRep, IsActive: true},
		Member{ID: "2", FullName: "Ana Ruiz", Role: RoleManager, IsActive: true},
		Member{ID: "3", FullName: "Bob Gone", Role: RoleRep, IsActive: false},
	))

	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].FullName != "Ana Ruiz" || out[1].FullName != "Zoe Park" {
		t.Fatalf("unexpected members: %+v", out)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Get(context.Background(), "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
