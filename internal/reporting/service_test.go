package reporting

import (
	"context"
	"testing"
	"time"

	"retail-crm/internal/activities"
	"retail-crm/internal/calls"
	"retail-crm/internal/prospects"
	"retail-crm/internal/tasks"
)

// Wednesday.
var now = time.Date(2025, 5, 7, 15, 0, 0, 0, time.UTC)

func at(day, hour int) *time.Time {
	t := time.Date(2025, 5, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func ptr(s string) *string { return &s }

func newTestService(repo *MemoryRepo) (*Service, *activities.MemoryRepo) {
	acts := activities.NewMemoryRepo()
	svc := NewService(repo, activities.NewService(acts))
	svc.clock = func() time.Time { return now }
	return svc, acts
}

func TestBoundaries(t *testing.T) {
	if got := startOfWeek(now); !got.Equal(time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week to start Sunday May 4, got %v", got)
	}
	sunday := time.Date(2025, 5, 4, 9, 0, 0, 0, time.UTC)
	if got := startOfWeek(sunday); !got.Equal(time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected Sunday to start its own week, got %v", got)
	}
	if got := startOfMonth(now); !got.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start %v", got)
	}
}

func TestDashboard(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Prospects = []prospects.Prospect{
		{ID: "p1", PipelineStage: prospects.StageLead},
		{ID: "p2", PipelineStage: prospects.StageLead},
		{ID: "p3", PipelineStage: prospects.StagePartner},
	}
	repo.Tasks = []tasks.Task{
		{ID: "today", Status: tasks.StatusPending, DueDate: at(7, 18)},
		{ID: "overdue", Status: tasks.StatusPending, DueDate: at(5, 9)},
		{ID: "future", Status: tasks.StatusPending, DueDate: at(9, 9)},
		{ID: "undated", Status: tasks.StatusPending},
		{ID: "done-today", Status: tasks.StatusCompleted, DueDate: at(7, 9)},
	}
	repo.Calls = []calls.Call{
		{ID: "c1", CreatedAt: *at(4, 1)},
		{ID: "c2", CreatedAt: *at(6, 12)},
		{ID: "last-week", CreatedAt: *at(3, 23)},
	}
	svc, acts := newTestService(repo)
	for i := 0; i < 12; i++ {
		_ = acts.Append(context.Background(), activities.Activity{ID: string(rune('a' + i)), ProspectID: "p1", Type: activities.TypeNote, Title: "n", CreatedAt: now.Add(time.Duration(i) * time.Minute)})
	}

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	want := map[string]int{"lead": 2, "contacted": 0, "interested": 0, "partner": 1}
	for k, v := range want {
		got, ok := d.Pipeline[k]
		if !ok || got != v {
			t.Fatalf("pipeline[%s]: expected %d, got %d (present=%v)", k, v, got, ok)
		}
	}
	if d.TotalProspects != 3 {
		t.Fatalf("expected 3 prospects, got %d", d.TotalProspects)
	}
	if d.TasksDueToday != 1 || d.OverdueTasks != 1 || d.PendingTasks != 4 {
		t.Fatalf("unexpected task counts: today=%d overdue=%d pending=%d", d.TasksDueToday, d.OverdueTasks, d.PendingTasks)
	}
	if d.CallsThisWeek != 2 {
		t.Fatalf("expected 2 calls this week, got %d", d.CallsThisWeek)
	}
	if len(d.RecentActivities) != 10 {
		t.Fatalf("expected 10 recent activities, got %d", len(d.RecentActivities))
	}
}

func TestDashboard_EmptyPipelineHasAllStages(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepo())
	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(d.Pipeline) != 4 || d.TotalProspects != 0 {
		t.Fatalf("expected four zeroed stages, got %v", d.Pipeline)
	}
}

func TestMemberStats(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Prospects = []prospects.Prospect{
		{ID: "p1", PipelineStage: prospects.StageContacted, AssignedTo: ptr("tm-1")},
		{ID: "p2", PipelineStage: prospects.StageContacted, AssignedTo: ptr("tm-1")},
		{ID: "p3", PipelineStage: prospects.StageLead, AssignedTo: ptr("tm-2")},
	}
	repo.Tasks = []tasks.Task{
		{ID: "t1", Status: tasks.StatusPending, AssignedTo: ptr("tm-1")},
		{ID: "t2", Status: tasks.StatusCompleted, AssignedTo: ptr("tm-1"), CompletedAt: at(2, 10)},
		{ID: "t3", Status: tasks.StatusCompleted, AssignedTo: ptr("tm-1"), CompletedAt: &time.Time{}},
		{ID: "t4", Status: tasks.StatusPending, AssignedTo: ptr("tm-2")},
	}
	repo.Calls = []calls.Call{
		{ID: "c1", TeamMemberID: ptr("tm-1"), CreatedAt: *at(1, 0)},
		{ID: "c2", TeamMemberID: ptr("tm-2"), CreatedAt: *at(6, 0)},
	}
	svc, _ := newTestService(repo)

	st, err := svc.MemberStats(context.Background(), "tm-1")
	if err != nil {
		t.Fatalf("member stats: %v", err)
	}
	if st.TotalProspects != 2 || st.ProspectsByStage["contacted"] != 2 || len(st.ProspectsByStage) != 1 {
		t.Fatalf("unexpected prospect stats: %+v", st)
	}
	if st.PendingTasks != 1 || st.CompletedTasksThisMonth != 1 || st.CallsThisMonth != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
